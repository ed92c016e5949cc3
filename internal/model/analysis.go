package model

// AnalysisResult is the normalized aggregate produced from one provider response
type AnalysisResult struct {
	StatedAllegations        []Allegation             `json:"statedAllegations"`
	UnstatedClaims           []UnstatedClaim          `json:"unstatedClaims"`
	ResponseStrategies       []ResponseStrategy       `json:"responseStrategies"`
	CounterArguments         []CounterArgument        `json:"counterArguments"`
	InvestigatoryQuestions   InvestigatoryQuestions   `json:"investigatoryQuestions"`
	GoodFaithConferenceGuide GoodFaithConferenceGuide `json:"goodFaithConferenceGuide"`
	Board                    *BoardState              `json:"evidenceBoard,omitempty"`
}

// ResponseStrategy is the plan for addressing one allegation
type ResponseStrategy struct {
	Claim                string             `json:"claim"` // Allegation text this strategy addresses
	Strategy             string             `json:"strategy"`
	SuggestedActionSteps []string           `json:"suggestedActionSteps"`
	EvidenceToGather     []EvidenceToGather `json:"evidenceToGather"`
	Instances            []Instance         `json:"instances"` // User-authored, survives re-analysis
}

// EvidenceToGather is a gap the strategy wants filled
type EvidenceToGather struct {
	Item              string   `json:"item"`
	PotentialSource   string   `json:"potentialSource"`
	Rationale         string   `json:"rationale"`
	LinkedEvidenceIDs []string `json:"linkedEvidenceIds"` // Board evidence that fills this gap
}

// Instance is a user-documented example supporting a strategy
type Instance struct {
	ID          string       `json:"id"`
	Notes       string       `json:"notes"`
	Attachments []Attachment `json:"attachments"`
}

// CounterArgument is a likely defense and the prepared answer to it
type CounterArgument struct {
	ID       string `json:"id"`
	Argument string `json:"argument"`
	Rebuttal string `json:"rebuttal"`
}

// InvestigatoryQuestions groups the follow-up questions by audience
type InvestigatoryQuestions struct {
	ForClaimant   []string `json:"forClaimant"`
	ForWitnesses  []string `json:"forWitnesses"`
	ForRespondent []string `json:"forRespondent"`
}

// GoodFaithConferenceGuide prepares the pre-motion discovery conference
type GoodFaithConferenceGuide struct {
	Summary          string            `json:"summary"`
	TalkingPoints    []string          `json:"talkingPoints"`
	DocumentRequests []DocumentRequest `json:"documentRequests"`
}

// DocumentRequest is one discovery request to raise at the conference
type DocumentRequest struct {
	ID        string                `json:"id"`
	Request   string                `json:"request"`
	Rationale string                `json:"rationale"`
	Status    DocumentRequestStatus `json:"status"`
}

// DocumentRequestStatus tracks the opposing side's answer to a request
type DocumentRequestStatus string

const (
	RequestPending  DocumentRequestStatus = "pending"
	RequestProduced DocumentRequestStatus = "produced"
	RequestRefused  DocumentRequestStatus = "refused"
)

// ParseDocumentRequestStatus maps free text onto a known status, defaulting to pending
func ParseDocumentRequestStatus(s string) DocumentRequestStatus {
	switch DocumentRequestStatus(normalizeEnum(s)) {
	case RequestProduced:
		return RequestProduced
	case RequestRefused:
		return RequestRefused
	default:
		return RequestPending
	}
}

// EmptyAnalysis returns a result with every collection present and empty
func EmptyAnalysis() *AnalysisResult {
	return &AnalysisResult{
		StatedAllegations:  []Allegation{},
		UnstatedClaims:     []UnstatedClaim{},
		ResponseStrategies: []ResponseStrategy{},
		CounterArguments:   []CounterArgument{},
		InvestigatoryQuestions: InvestigatoryQuestions{
			ForClaimant:   []string{},
			ForWitnesses:  []string{},
			ForRespondent: []string{},
		},
		GoodFaithConferenceGuide: GoodFaithConferenceGuide{
			TalkingPoints:    []string{},
			DocumentRequests: []DocumentRequest{},
		},
	}
}
