package model

import "time"

// CaseData is the top-level persisted unit for one legal matter
type CaseData struct {
	Analysis     *AnalysisResult        `json:"analysis"`
	Inputs       CaseInputs             `json:"inputs"`
	SectionNotes map[string]SectionNote `json:"sectionNotes"`
	Conversation []ChatMessage          `json:"conversation"`
}

// CaseInputs holds the raw text the user typed in
type CaseInputs struct {
	Narrative        string `json:"narrative"`
	OpposingPosition string `json:"opposingPosition,omitempty"`
	DesiredOutcome   string `json:"desiredOutcome,omitempty"`
}

// SectionNote is the user's suggestion/notes record for one analysis section
type SectionNote struct {
	Suggestion string    `json:"suggestion,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ChatMessage is one turn of the conversation with the provider
type ChatMessage struct {
	Role    string    `json:"role"` // user, assistant
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// MaxConversation caps the stored conversation history
const MaxConversation = 50

// DefaultCase returns an empty case with no analysis yet
func DefaultCase() CaseData {
	return CaseData{
		SectionNotes: map[string]SectionNote{},
		Conversation: []ChatMessage{},
	}
}
