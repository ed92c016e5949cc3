package score

import (
	"fmt"

	"github.com/ppiankov/casefile/internal/casemodel"
	"github.com/ppiankov/casefile/internal/model"
)

// Scorer calculates the readiness index and its diagnostic signals.
// The index is advisory and says nothing about the merits of the case.
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate scores how prepared the case is from the analysis and the board
func (s *Scorer) Calculate(m casemodel.Model) model.Score {
	if m.Case.Analysis == nil {
		return model.Score{
			Index:      0,
			Confidence: "low",
			Signals: []model.Signal{{
				Type:        model.SignalNoAnalysis,
				Severity:    model.SeverityCritical,
				Description: "No analysis yet",
				Data:        map[string]interface{}{"evidence": len(m.Board.Evidence)},
			}},
		}
	}

	a := m.Case.Analysis
	var signals []model.Signal

	// 1. Allegation coverage (0-40 points)
	coverageScore, coverageSignal := s.calculateCoverage(a.StatedAllegations, m.Board.Evidence)
	signals = append(signals, coverageSignal)

	// 2. Evidence verification (0-25 points)
	verifyScore, verifySignal := s.calculateVerification(m.Board.Evidence)
	signals = append(signals, verifySignal)

	// 3. Gap fill (0-20 points)
	gapScore, gapSignal := s.calculateGapFill(a.ResponseStrategies)
	signals = append(signals, gapSignal)

	// 4. Allegation readiness (0-15 points)
	readyScore, readySignal := s.calculateReadiness(a.StatedAllegations)
	signals = append(signals, readySignal)

	// 5. Unlinked evidence (no points)
	if sig := s.detectUnlinked(m.Board.Evidence); sig.Type != "" {
		signals = append(signals, sig)
	}

	total := coverageScore + verifyScore + gapScore + readyScore

	return model.Score{
		Index:      total,
		Confidence: s.determineConfidence(total, len(m.Board.Evidence)),
		Signals:    signals,
	}
}

func (s *Scorer) calculateCoverage(allegations []model.Allegation, evidence map[string]model.EvidenceItem) (int, model.Signal) {
	if len(allegations) == 0 {
		return 0, model.Signal{
			Type:        model.SignalAllegationCoverage,
			Severity:    model.SeverityCritical,
			Description: "No stated allegations",
			Data:        map[string]interface{}{"allegations": 0, "evidence": len(evidence)},
		}
	}

	supported := make(map[string]bool)
	for _, item := range evidence {
		for _, id := range item.LinkedAllegationIDs {
			supported[id] = true
		}
	}

	covered := 0
	var uncovered []string
	for _, al := range allegations {
		if supported[al.ID] {
			covered++
		} else {
			uncovered = append(uncovered, al.Claim)
		}
	}

	ratio := float64(covered) / float64(len(allegations))
	score := int(ratio * 40)

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityCritical
	} else if ratio < 1.0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalAllegationCoverage,
		Severity:    severity,
		Description: fmt.Sprintf("Allegations with linked evidence: %d/%d", covered, len(allegations)),
		Data: map[string]interface{}{
			"allegations": len(allegations),
			"covered":     covered,
			"uncovered":   uncovered,
			"ratio":       ratio,
			"score":       score,
			"formula":     "(covered / allegations) * 40",
		},
	}
}

func (s *Scorer) calculateVerification(evidence map[string]model.EvidenceItem) (int, model.Signal) {
	if len(evidence) == 0 {
		return 0, model.Signal{
			Type:        model.SignalVerification,
			Severity:    model.SeverityWarning,
			Description: "No evidence on the board",
			Data:        map[string]interface{}{"evidence": 0},
		}
	}

	counts := make(map[model.ValidationStatus]int)
	for _, item := range evidence {
		counts[item.ValidationStatus]++
	}

	verified := counts[model.ValidationVerified]
	ratio := float64(verified) / float64(len(evidence))
	score := int(ratio * 25)

	severity := model.SeverityInfo
	if counts[model.ValidationInsufficient] > 0 || ratio < 0.5 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:     model.SignalVerification,
		Severity: severity,
		Description: fmt.Sprintf("Verification: %d verified, %d pending, %d need more, %d insufficient",
			verified, counts[model.ValidationPending], counts[model.ValidationNeedsMore], counts[model.ValidationInsufficient]),
		Data: map[string]interface{}{
			"verified":     verified,
			"pending":      counts[model.ValidationPending],
			"needs_more":   counts[model.ValidationNeedsMore],
			"insufficient": counts[model.ValidationInsufficient],
			"total":        len(evidence),
			"score":        score,
			"formula":      "(verified / total) * 25",
		},
	}
}

func (s *Scorer) calculateGapFill(strategies []model.ResponseStrategy) (int, model.Signal) {
	gaps, filled := 0, 0
	for _, st := range strategies {
		for _, g := range st.EvidenceToGather {
			gaps++
			if len(g.LinkedEvidenceIDs) > 0 {
				filled++
			}
		}
	}

	if gaps == 0 {
		return 10, model.Signal{
			Type:        model.SignalGapFill,
			Severity:    model.SeverityInfo,
			Description: "No evidence gaps identified (assuming moderate)",
			Data:        map[string]interface{}{"gaps": 0, "score": 10},
		}
	}

	ratio := float64(filled) / float64(gaps)
	score := int(ratio * 20)

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalGapFill,
		Severity:    severity,
		Description: fmt.Sprintf("Evidence gaps filled: %d/%d", filled, gaps),
		Data: map[string]interface{}{
			"gaps":    gaps,
			"filled":  filled,
			"ratio":   ratio,
			"score":   score,
			"formula": "(filled / gaps) * 20",
		},
	}
}

func (s *Scorer) calculateReadiness(allegations []model.Allegation) (int, model.Signal) {
	if len(allegations) == 0 {
		return 0, model.Signal{
			Type:        model.SignalReadiness,
			Severity:    model.SeverityWarning,
			Description: "No allegations to prepare",
			Data:        map[string]interface{}{"allegations": 0},
		}
	}

	counts := make(map[model.AllegationStatus]int)
	for _, al := range allegations {
		counts[al.Status]++
	}
	done := counts[model.StatusValidated] + counts[model.StatusReady]

	ratio := float64(done) / float64(len(allegations))
	score := int(ratio * 15)

	severity := model.SeverityInfo
	if done == 0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalReadiness,
		Severity:    severity,
		Description: fmt.Sprintf("Allegations validated or ready: %d/%d", done, len(allegations)),
		Data: map[string]interface{}{
			"draft":         counts[model.StatusDraft],
			"investigating": counts[model.StatusInvestigating],
			"validated":     counts[model.StatusValidated],
			"ready":         counts[model.StatusReady],
			"score":         score,
			"formula":       "((validated + ready) / allegations) * 15",
		},
	}
}

// detectUnlinked flags board evidence that supports no allegation
func (s *Scorer) detectUnlinked(evidence map[string]model.EvidenceItem) model.Signal {
	unlinked := 0
	for _, item := range evidence {
		if len(item.LinkedAllegationIDs) == 0 {
			unlinked++
		}
	}
	if unlinked == 0 {
		return model.Signal{}
	}

	return model.Signal{
		Type:        model.SignalUnlinkedEvidence,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("%d evidence item(s) linked to no allegation", unlinked),
		Data: map[string]interface{}{
			"unlinked": unlinked,
			"total":    len(evidence),
		},
	}
}

func (s *Scorer) determineConfidence(score int, evidenceCount int) string {
	if evidenceCount < 3 {
		return "low"
	}

	if score >= 80 {
		return "high"
	} else if score >= 60 {
		return "medium"
	}
	return "low"
}
