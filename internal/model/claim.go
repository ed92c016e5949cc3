package model

import "strings"

// Allegation is a claim the case narrative states outright
type Allegation struct {
	ID                string           `json:"id"`
	Claim             string           `json:"claim"`
	Summary           string           `json:"summary"`
	Category          ClaimCategory    `json:"category"`
	EvidenceMentioned []string         `json:"evidenceMentioned"` // Free-text, not evidence ids
	TexasCaseExamples []CaseExample    `json:"texasCaseExamples"`
	Status            AllegationStatus `json:"status"`
}

// UnstatedClaim is a claim the narrative supports but never makes explicitly
type UnstatedClaim struct {
	ID                string        `json:"id"`
	Claim             string        `json:"claim"`
	Reasoning         string        `json:"reasoning"`
	Category          ClaimCategory `json:"category"`
	EvidenceMentioned []string      `json:"evidenceMentioned"`
	TexasCaseExamples []CaseExample `json:"texasCaseExamples"`
}

// CaseExample is a reference case the provider offered as an analogue
type CaseExample struct {
	CaseName  string `json:"caseName"`
	Citation  string `json:"citation"`
	Relevance string `json:"relevance"`
}

// ClaimCategory is the legal theory a claim falls under
type ClaimCategory string

const (
	CategoryDiscrimination      ClaimCategory = "discrimination"
	CategoryRetaliation         ClaimCategory = "retaliation"
	CategoryHarassment          ClaimCategory = "harassment"
	CategoryWageAndHour         ClaimCategory = "wage_and_hour"
	CategoryWrongfulTermination ClaimCategory = "wrongful_termination"
	CategoryContract            ClaimCategory = "contract"
	CategoryOther               ClaimCategory = "other"
)

var claimCategories = map[ClaimCategory]bool{
	CategoryDiscrimination:      true,
	CategoryRetaliation:         true,
	CategoryHarassment:          true,
	CategoryWageAndHour:         true,
	CategoryWrongfulTermination: true,
	CategoryContract:            true,
	CategoryOther:               true,
}

// ParseClaimCategory maps free text onto a known category, defaulting to other
func ParseClaimCategory(s string) ClaimCategory {
	c := ClaimCategory(normalizeEnum(s))
	if claimCategories[c] {
		return c
	}
	return CategoryOther
}

// AllegationStatus is the user's working state for an allegation
type AllegationStatus string

const (
	StatusDraft         AllegationStatus = "draft"
	StatusInvestigating AllegationStatus = "investigating"
	StatusValidated     AllegationStatus = "validated"
	StatusReady         AllegationStatus = "ready"
)

// ParseAllegationStatus maps free text onto a known status, defaulting to draft
func ParseAllegationStatus(s string) AllegationStatus {
	switch AllegationStatus(normalizeEnum(s)) {
	case StatusInvestigating:
		return StatusInvestigating
	case StatusValidated:
		return StatusValidated
	case StatusReady:
		return StatusReady
	default:
		return StatusDraft
	}
}

// ClaimKey is the merge key for AI-generated entities that carry no stable id across runs
func ClaimKey(claim string) string {
	return strings.ToLower(strings.Join(strings.Fields(claim), " "))
}

func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return s
}
