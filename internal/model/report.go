package model

// Score represents the transparent case-readiness breakdown
type Score struct {
	Index      int      `json:"index"`      // Overall readiness index (0-100)
	Confidence string   `json:"confidence"` // "low", "medium", "high"
	Signals    []Signal `json:"signals"`    // Diagnostic signals with transparent data
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"` // Formula inputs, never hidden
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalAllegationCoverage SignalType = "allegation_coverage" // Allegations with linked evidence
	SignalVerification       SignalType = "verification"        // Verified share of board evidence
	SignalGapFill            SignalType = "gap_fill"            // Strategy gaps with linked evidence
	SignalReadiness          SignalType = "readiness"           // Allegations marked validated/ready
	SignalUnlinkedEvidence   SignalType = "unlinked_evidence"   // Evidence tied to no allegation
	SignalNoAnalysis         SignalType = "no_analysis"         // Nothing to score yet
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// CheckReport summarizes how one saved provider response repaired and normalized
type CheckReport struct {
	Source      string   `json:"source"`
	Parsed      bool     `json:"parsed"`
	Applied     []string `json:"applied,omitempty"`  // Repair passes that changed the text
	Warnings    []string `json:"warnings,omitempty"` // Normalization warnings
	Allegations int      `json:"allegations"`
	Claims      int      `json:"unstatedClaims"`
	Strategies  int      `json:"responseStrategies"`
	Error       string   `json:"error,omitempty"`
}
