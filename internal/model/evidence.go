package model

// EvidenceItem is a single piece of evidence placed on the board
type EvidenceItem struct {
	ID                  string           `json:"id"`
	Content             string           `json:"content"`               // Short label shown on the card
	Description         string           `json:"description"`           // Longer free-text description
	Type                EvidenceType     `json:"type"`                  // email, document, statement, ...
	Date                string           `json:"date"`                  // As entered by the user, not parsed
	Tags                []string         `json:"tags"`                  // Set semantics, order preserved
	LinkedAllegationIDs []string         `json:"linkedAllegationIds"`   // Allegation ids this item supports
	ValidationStatus    ValidationStatus `json:"validationStatus"`      // pending, verified, needs_more, insufficient
	Attachments         []Attachment     `json:"attachments,omitempty"` // File descriptors only, never file bodies
}

// Attachment describes a file attached to an evidence item or instance
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

// EvidenceType classifies the form of an evidence item
type EvidenceType string

const (
	EvidenceTypeEmail        EvidenceType = "email"
	EvidenceTypeDocument     EvidenceType = "document"
	EvidenceTypeStatement    EvidenceType = "statement"
	EvidenceTypeWitness      EvidenceType = "witness"
	EvidenceTypePhoto        EvidenceType = "photo"
	EvidenceTypeSpreadsheet  EvidenceType = "spreadsheet"
	EvidenceTypePresentation EvidenceType = "presentation"
	EvidenceTypeAudio        EvidenceType = "audio"
	EvidenceTypeVideo        EvidenceType = "video"
	EvidenceTypeOther        EvidenceType = "other"
)

var evidenceTypes = map[EvidenceType]bool{
	EvidenceTypeEmail:        true,
	EvidenceTypeDocument:     true,
	EvidenceTypeStatement:    true,
	EvidenceTypeWitness:      true,
	EvidenceTypePhoto:        true,
	EvidenceTypeSpreadsheet:  true,
	EvidenceTypePresentation: true,
	EvidenceTypeAudio:        true,
	EvidenceTypeVideo:        true,
	EvidenceTypeOther:        true,
}

// ParseEvidenceType maps free text onto a known evidence type, defaulting to other
func ParseEvidenceType(s string) EvidenceType {
	t := EvidenceType(normalizeEnum(s))
	if evidenceTypes[t] {
		return t
	}
	return EvidenceTypeOther
}

// ValidationStatus tracks how far an evidence item has been verified
type ValidationStatus string

const (
	ValidationPending      ValidationStatus = "pending"
	ValidationVerified     ValidationStatus = "verified"
	ValidationNeedsMore    ValidationStatus = "needs_more"
	ValidationInsufficient ValidationStatus = "insufficient"
)

// ParseValidationStatus maps free text onto a known status, defaulting to pending
func ParseValidationStatus(s string) ValidationStatus {
	switch ValidationStatus(normalizeEnum(s)) {
	case ValidationVerified:
		return ValidationVerified
	case ValidationNeedsMore:
		return ValidationNeedsMore
	case ValidationInsufficient:
		return ValidationInsufficient
	default:
		return ValidationPending
	}
}

// Column is one lane of the evidence board
type Column struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	EvidenceIDs []string `json:"evidenceIds"` // Ordered, no duplicates
}

// UncategorizedColumnID is the column that always exists and receives orphaned evidence
const UncategorizedColumnID = "uncategorized"

// BoardState is the column-based grouping of evidence items
type BoardState struct {
	Evidence    map[string]EvidenceItem `json:"evidence"`
	Columns     map[string]Column       `json:"columns"`
	ColumnOrder []string                `json:"columnOrder"`
}

// DefaultBoard returns an empty board holding only the uncategorized column
func DefaultBoard() BoardState {
	return BoardState{
		Evidence: map[string]EvidenceItem{},
		Columns: map[string]Column{
			UncategorizedColumnID: {
				ID:          UncategorizedColumnID,
				Title:       "Uncategorized",
				EvidenceIDs: []string{},
			},
		},
		ColumnOrder: []string{UncategorizedColumnID},
	}
}
