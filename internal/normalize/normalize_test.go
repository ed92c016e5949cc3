package normalize

import (
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/repair"
)

func parse(t *testing.T, text string) any {
	t.Helper()
	res, err := repair.Parse(text)
	if err != nil {
		t.Fatalf("repair.Parse failed: %v", err)
	}
	return res.Value
}

func TestNormalize_Scenario(t *testing.T) {
	v := parse(t, "Here is the analysis:\n```json\n{statedAllegations: [{claim: \"Retaliation\" summary: \"...\"}]}\n```")

	out, warnings, err := Normalize(v)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if len(out.StatedAllegations) != 1 {
		t.Fatalf("expected one allegation, got %d", len(out.StatedAllegations))
	}
	a := out.StatedAllegations[0]
	if a.Claim != "Retaliation" || a.Summary != "..." {
		t.Errorf("unexpected allegation %+v", a)
	}
	if a.ID == "" {
		t.Error("expected generated id")
	}
	if a.Category != model.CategoryOther || a.Status != model.StatusDraft {
		t.Errorf("expected defaults, got category=%q status=%q", a.Category, a.Status)
	}
	if a.EvidenceMentioned == nil || a.TexasCaseExamples == nil {
		t.Error("expected nested collections to be present")
	}
	if out.UnstatedClaims == nil || out.ResponseStrategies == nil || out.CounterArguments == nil {
		t.Error("expected every top-level collection present")
	}
	if out.InvestigatoryQuestions.ForWitnesses == nil || out.GoodFaithConferenceGuide.DocumentRequests == nil {
		t.Error("expected nested groups present")
	}
	if out.Board != nil {
		t.Error("expected no board without a snapshot")
	}
}

func TestNormalize_EmptyOrUnrecognized(t *testing.T) {
	inputs := []any{
		nil,
		"text",
		[]any{map[string]any{"claim": "x"}},
		map[string]any{},
		map[string]any{"foo": 1, "bar": []any{}},
		map[string]any{"analysis": "nope"},
	}
	for _, in := range inputs {
		out, _, err := Normalize(in)
		if !errors.Is(err, ErrEmptyOrUnrecognizedShape) {
			t.Errorf("expected ErrEmptyOrUnrecognizedShape for %#v, got %v", in, err)
		}
		if out != nil {
			t.Errorf("expected nil result for %#v", in)
		}
	}
}

func TestNormalize_AliasesAndEnvelope(t *testing.T) {
	v := map[string]any{
		"analysis": map[string]any{
			"allegations":     []any{map[string]any{"claim": "Harassment", "category": "Harassment"}},
			"potentialClaims": []any{map[string]any{"claim": "Defamation"}},
			"strategies":      map[string]any{"claim": "Harassment", "strategy": "document"},
			"questions":       map[string]any{"forClaimant": []any{"When?"}},
			"conferenceGuide": map[string]any{"summary": "meet", "documentRequests": []any{map[string]any{"request": "emails", "status": "Produced"}}},
		},
	}
	out, warnings, err := Normalize(v)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings %v", warnings)
	}
	if len(out.StatedAllegations) != 1 || out.StatedAllegations[0].Category != model.CategoryHarassment {
		t.Errorf("unexpected allegations %+v", out.StatedAllegations)
	}
	if len(out.UnstatedClaims) != 1 {
		t.Errorf("expected one unstated claim, got %d", len(out.UnstatedClaims))
	}
	if len(out.ResponseStrategies) != 1 || out.ResponseStrategies[0].Strategy != "document" {
		t.Errorf("expected lone object wrapped into a list, got %+v", out.ResponseStrategies)
	}
	if got := out.InvestigatoryQuestions.ForClaimant; len(got) != 1 || got[0] != "When?" {
		t.Errorf("unexpected questions %v", got)
	}
	reqs := out.GoodFaithConferenceGuide.DocumentRequests
	if len(reqs) != 1 || reqs[0].Status != model.RequestProduced || reqs[0].ID == "" {
		t.Errorf("unexpected document requests %+v", reqs)
	}
}

func TestNormalize_WrongShapesDroppedWithWarnings(t *testing.T) {
	v := parse(t, `{
		"statedAllegations": [
			"just a string",
			{"id": 7, "claim": {"nested": true}, "evidenceMentioned": ["a", 2, {"x": 1}], "status": "READY"}
		],
		"counterArguments": 42,
		"investigatoryQuestions": ["not", "an", "object"]
	}`)

	out, warnings, err := Normalize(v)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(out.StatedAllegations) != 1 {
		t.Fatalf("expected the string entry dropped, got %d allegations", len(out.StatedAllegations))
	}
	a := out.StatedAllegations[0]
	if a.ID != "7" {
		t.Errorf("expected numeric id stringified, got %q", a.ID)
	}
	if a.Claim != "" {
		t.Errorf("expected object claim dropped, got %q", a.Claim)
	}
	if len(a.EvidenceMentioned) != 2 || a.EvidenceMentioned[1] != "2" {
		t.Errorf("expected scalars kept as text, got %v", a.EvidenceMentioned)
	}
	if a.Status != model.StatusReady {
		t.Errorf("expected status coerced to ready, got %q", a.Status)
	}
	if len(out.CounterArguments) != 0 || out.InvestigatoryQuestions.ForClaimant == nil {
		t.Error("expected dropped sections to stay empty but present")
	}

	paths := map[string]bool{}
	for _, w := range warnings {
		paths[w.Path] = true
		if ev := w.Event(); ev.Kind != model.FailurePartialNormalization {
			t.Errorf("unexpected event kind %q", ev.Kind)
		}
	}
	for _, want := range []string{
		"statedAllegations[0]",
		"statedAllegations[1].claim",
		"statedAllegations[1].evidenceMentioned[2]",
		"counterArguments",
		"investigatoryQuestions",
	} {
		if !paths[want] {
			t.Errorf("expected warning at %s, got %v", want, warnings)
		}
	}
}

func TestNormalize_DuplicateIDsReplaced(t *testing.T) {
	v := map[string]any{
		"counterArguments": []any{
			map[string]any{"id": "c", "argument": "one"},
			map[string]any{"id": "c", "argument": "two"},
		},
	}
	out, warnings, err := Normalize(v)
	if err != nil {
		t.Fatal(err)
	}
	if out.CounterArguments[0].ID == out.CounterArguments[1].ID {
		t.Error("expected duplicate id replaced")
	}
	if len(warnings) != 1 {
		t.Errorf("expected one warning, got %v", warnings)
	}
}

func TestNormalize_BoardSnapshot(t *testing.T) {
	v := parse(t, `{
		"evidenceBoard": {
			"evidence": {
				"e1": {"content": "email", "type": "Email", "validationStatus": "bogus", "attachments": [{"name": "a.pdf", "size": "12"}]},
				"e2": {"id": "e2", "content": "photo"}
			},
			"columns": [
				{"id": "c1", "title": "Emails", "evidenceIds": ["e1", "missing"]}
			],
			"columnOrder": ["c1"]
		}
	}`)

	out, _, err := Normalize(v)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	b := out.Board
	if b == nil {
		t.Fatal("expected board")
	}
	e1 := b.Evidence["e1"]
	if e1.ID != "e1" || e1.Type != model.EvidenceTypeEmail || e1.ValidationStatus != model.ValidationPending {
		t.Errorf("unexpected evidence %+v", e1)
	}
	if len(e1.Attachments) != 1 || e1.Attachments[0].Size != 12 {
		t.Errorf("unexpected attachments %+v", e1.Attachments)
	}
	if got := b.Columns["c1"].EvidenceIDs; len(got) != 1 || got[0] != "e1" {
		t.Errorf("expected dangling id removed, got %v", got)
	}
	if got := b.Columns[model.UncategorizedColumnID].EvidenceIDs; len(got) != 1 || got[0] != "e2" {
		t.Errorf("expected unplaced evidence in uncategorized, got %v", got)
	}
}

func TestNormalize_Total(t *testing.T) {
	// Every section with a hostile value must still normalize
	hostile := []any{nil, true, 3.5, "x", []any{nil, 1, "s"}, map[string]any{"k": []any{}}}
	for _, h := range hostile {
		v := map[string]any{}
		for canonical := range sections {
			v[canonical] = h
		}
		if _, _, err := Normalize(v); err != nil {
			t.Errorf("Normalize failed for %#v: %v", h, err)
		}
	}
}

func TestNormalize_LoneScalarBecomesList(t *testing.T) {
	v := parse(t, `{
		"statedAllegations": [{"claim": "Retaliation", "evidenceMentioned": "an email from HR"}],
		"responseStrategies": [{
			"claim": "Retaliation",
			"suggestedActionSteps": "call HR",
			"evidenceToGather": [{"item": "HR email", "linkedEvidenceIds": "e1"}]
		}],
		"investigatoryQuestions": {"forWitnesses": 42}
	}`)

	out, warnings, err := Normalize(v)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if got := out.StatedAllegations[0].EvidenceMentioned; len(got) != 1 || got[0] != "an email from HR" {
		t.Errorf("unexpected evidenceMentioned %v", got)
	}
	s := out.ResponseStrategies[0]
	if len(s.SuggestedActionSteps) != 1 || s.SuggestedActionSteps[0] != "call HR" {
		t.Errorf("unexpected suggestedActionSteps %v", s.SuggestedActionSteps)
	}
	if got := s.EvidenceToGather[0].LinkedEvidenceIDs; len(got) != 1 || got[0] != "e1" {
		t.Errorf("unexpected linkedEvidenceIds %v", got)
	}
	if got := out.InvestigatoryQuestions.ForWitnesses; len(got) != 1 || got[0] != "42" {
		t.Errorf("unexpected forWitnesses %v", got)
	}
}

func TestNormalize_ClaimIDsUniqueAcrossSections(t *testing.T) {
	v := map[string]any{
		"statedAllegations": []any{map[string]any{"id": "1", "claim": "Retaliation"}},
		"unstatedClaims":    []any{map[string]any{"id": "1", "claim": "Defamation"}},
	}
	out, warnings, err := Normalize(v)
	if err != nil {
		t.Fatal(err)
	}
	if out.StatedAllegations[0].ID != "1" {
		t.Errorf("expected allegation to keep id 1, got %q", out.StatedAllegations[0].ID)
	}
	if out.UnstatedClaims[0].ID == "1" {
		t.Error("expected unstated claim id replaced")
	}
	if len(warnings) != 1 || warnings[0].Path != "unstatedClaims[0].id" {
		t.Errorf("expected one warning at unstatedClaims[0].id, got %v", warnings)
	}
}

func TestNormalize_AttachmentSizeRange(t *testing.T) {
	tests := []struct {
		name     string
		size     string
		want     int64
		warnings int
	}{
		{"integer", `2048`, 2048, 0},
		{"text", `"512"`, 512, 0},
		{"fraction", `12.7`, 12, 0},
		{"overflow", `1e30`, 0, 1},
		{"negative", `-5`, 0, 1},
		{"negative fraction", `-0.5`, 0, 1},
		{"not a number", `"big"`, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := parse(t, `{"evidenceBoard": {"evidence": {"e1": {"content": "stub", "attachments": [{"name": "a.pdf", "size": `+tt.size+`}]}}}}`)
			out, warnings, err := Normalize(v)
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			got := out.Board.Evidence["e1"].Attachments
			if len(got) != 1 || got[0].Size != tt.want {
				t.Errorf("expected size %d, got %+v", tt.want, got)
			}
			sizeWarnings := 0
			for _, w := range warnings {
				if strings.HasSuffix(w.Path, ".size") {
					sizeWarnings++
				}
			}
			if sizeWarnings != tt.warnings {
				t.Errorf("expected %d size warnings, got %v", tt.warnings, warnings)
			}
		})
	}
}
