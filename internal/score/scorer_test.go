package score

import (
	"testing"

	"github.com/ppiankov/casefile/internal/casemodel"
	"github.com/ppiankov/casefile/internal/model"
)

func caseWith(allegations []model.Allegation, evidence []model.EvidenceItem, strategies []model.ResponseStrategy) casemodel.Model {
	m := casemodel.New()
	a := model.EmptyAnalysis()
	a.StatedAllegations = allegations
	a.ResponseStrategies = strategies
	m.Case.Analysis = a
	for _, e := range evidence {
		m.Board.Evidence[e.ID] = e
	}
	return m
}

func findSignal(t *testing.T, s model.Score, typ model.SignalType) model.Signal {
	t.Helper()
	for _, sig := range s.Signals {
		if sig.Type == typ {
			return sig
		}
	}
	t.Fatalf("signal %s not found in %+v", typ, s.Signals)
	return model.Signal{}
}

func TestScorer_NoAnalysis(t *testing.T) {
	result := NewScorer().Calculate(casemodel.New())

	if result.Index != 0 || result.Confidence != "low" {
		t.Errorf("expected index 0 and low confidence, got %d %s", result.Index, result.Confidence)
	}
	if len(result.Signals) != 1 || result.Signals[0].Type != model.SignalNoAnalysis {
		t.Errorf("expected a single no_analysis signal, got %+v", result.Signals)
	}
}

func TestScorer_FullyPrepared(t *testing.T) {
	m := caseWith(
		[]model.Allegation{
			{ID: "a1", Claim: "Retaliation", Status: model.StatusReady},
			{ID: "a2", Claim: "Unpaid overtime", Status: model.StatusValidated},
		},
		[]model.EvidenceItem{
			{ID: "e1", LinkedAllegationIDs: []string{"a1"}, ValidationStatus: model.ValidationVerified},
			{ID: "e2", LinkedAllegationIDs: []string{"a2"}, ValidationStatus: model.ValidationVerified},
			{ID: "e3", LinkedAllegationIDs: []string{"a1", "a2"}, ValidationStatus: model.ValidationVerified},
		},
		[]model.ResponseStrategy{{
			Claim:            "Retaliation",
			EvidenceToGather: []model.EvidenceToGather{{Item: "HR email", LinkedEvidenceIDs: []string{"e1"}}},
		}},
	)

	result := NewScorer().Calculate(m)

	if result.Index != 100 {
		t.Errorf("expected index 100, got %d", result.Index)
	}
	if result.Confidence != "high" {
		t.Errorf("expected high confidence, got %s", result.Confidence)
	}
	for _, sig := range result.Signals {
		if sig.Type == model.SignalUnlinkedEvidence {
			t.Error("expected no unlinked evidence signal")
		}
	}
}

func TestScorer_PartialCase(t *testing.T) {
	m := caseWith(
		[]model.Allegation{
			{ID: "a1", Claim: "Retaliation", Status: model.StatusInvestigating},
			{ID: "a2", Claim: "Harassment", Status: model.StatusDraft},
		},
		[]model.EvidenceItem{
			{ID: "e1", LinkedAllegationIDs: []string{"a1"}, ValidationStatus: model.ValidationVerified},
			{ID: "e2", ValidationStatus: model.ValidationPending},
			{ID: "e3", ValidationStatus: model.ValidationInsufficient},
			{ID: "e4", ValidationStatus: model.ValidationNeedsMore},
		},
		[]model.ResponseStrategy{{
			Claim: "Retaliation",
			EvidenceToGather: []model.EvidenceToGather{
				{Item: "HR email", LinkedEvidenceIDs: []string{"e1"}},
				{Item: "Witness statement"},
			},
		}},
	)

	result := NewScorer().Calculate(m)

	// coverage 1/2*40=20, verification 1/4*25=6, gaps 1/2*20=10, readiness 0
	if result.Index != 36 {
		t.Errorf("expected index 36, got %d", result.Index)
	}
	if result.Confidence != "low" {
		t.Errorf("expected low confidence, got %s", result.Confidence)
	}

	coverage := findSignal(t, result, model.SignalAllegationCoverage)
	if coverage.Severity != model.SeverityWarning {
		t.Errorf("expected warning coverage severity, got %s", coverage.Severity)
	}
	if uncovered := coverage.Data["uncovered"].([]string); len(uncovered) != 1 || uncovered[0] != "Harassment" {
		t.Errorf("unexpected uncovered list %v", uncovered)
	}

	verification := findSignal(t, result, model.SignalVerification)
	if verification.Severity != model.SeverityWarning || verification.Data["insufficient"] != 1 {
		t.Errorf("unexpected verification signal %+v", verification)
	}

	unlinked := findSignal(t, result, model.SignalUnlinkedEvidence)
	if unlinked.Data["unlinked"] != 3 {
		t.Errorf("expected 3 unlinked items, got %v", unlinked.Data["unlinked"])
	}
}

func TestScorer_EmptyAnalysis(t *testing.T) {
	result := NewScorer().Calculate(caseWith(nil, nil, nil))

	// Only the assumed-moderate gap score applies
	if result.Index != 10 {
		t.Errorf("expected index 10, got %d", result.Index)
	}
	if sig := findSignal(t, result, model.SignalAllegationCoverage); sig.Severity != model.SeverityCritical {
		t.Errorf("expected critical coverage severity, got %s", sig.Severity)
	}
	findSignal(t, result, model.SignalGapFill)
	findSignal(t, result, model.SignalReadiness)
}

func TestScorer_IndexBounds(t *testing.T) {
	statuses := []model.AllegationStatus{model.StatusDraft, model.StatusInvestigating, model.StatusValidated, model.StatusReady}
	for i, st := range statuses {
		m := caseWith(
			[]model.Allegation{{ID: "a", Status: st}},
			[]model.EvidenceItem{{ID: "e", LinkedAllegationIDs: []string{"a"}, ValidationStatus: model.ValidationVerified}},
			nil,
		)
		got := NewScorer().Calculate(m).Index
		if got < 0 || got > 100 {
			t.Errorf("case %d: index %d out of range", i, got)
		}
	}
}
