// Package normalize maps an arbitrary parsed value onto the case analysis
// schema. It never fails on individual fields: missing collections become
// empty, unknown enum values fall back to defaults, and anything unusable is
// dropped with a warning.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/casefile/internal/casemodel"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/util"
)

// ErrEmptyOrUnrecognizedShape means the value is not an object or carries no known section
var ErrEmptyOrUnrecognizedShape = errors.New("payload is empty or carries no recognized analysis section")

// Warning records one field that was dropped or coerced
type Warning struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	return w.Path + ": " + w.Reason
}

// Event converts the warning for delivery to the UI layer
func (w Warning) Event() model.Event {
	section := w.Path
	if i := strings.IndexAny(section, ".["); i >= 0 {
		section = section[:i]
	}
	return model.Event{
		Kind:    model.FailurePartialNormalization,
		Section: section,
		Message: w.String(),
	}
}

// sections lists the recognized top-level keys, canonical name first, then aliases
var sections = map[string][]string{
	"statedAllegations":        {"statedAllegations", "allegations"},
	"unstatedClaims":           {"unstatedClaims", "potentialClaims"},
	"responseStrategies":       {"responseStrategies", "strategies"},
	"counterArguments":         {"counterArguments"},
	"investigatoryQuestions":   {"investigatoryQuestions", "questions"},
	"goodFaithConferenceGuide": {"goodFaithConferenceGuide", "conferenceGuide"},
	"evidenceBoard":            {"evidenceBoard", "boardState"},
}

// Normalize builds an AnalysisResult from v. The result is usable whenever
// err is nil; warnings list what was dropped on the way.
func Normalize(v any) (*model.AnalysisResult, []Warning, error) {
	root, ok := v.(map[string]any)
	if !ok {
		return nil, nil, fmt.Errorf("%w: top level is %s", ErrEmptyOrUnrecognizedShape, describe(v))
	}
	if !recognized(root) {
		// Some providers wrap the payload in a single envelope key
		inner, ok := root["analysis"].(map[string]any)
		if !ok || !recognized(inner) {
			return nil, nil, ErrEmptyOrUnrecognizedShape
		}
		root = inner
	}

	n := &normalizer{}
	out := model.EmptyAnalysis()

	if raw, key, ok := lookup(root, "statedAllegations"); ok {
		for i, item := range n.list(key, raw) {
			if a, ok := n.allegation(fmt.Sprintf("%s[%d]", key, i), item); ok {
				out.StatedAllegations = append(out.StatedAllegations, a)
			}
		}
	}
	if raw, key, ok := lookup(root, "unstatedClaims"); ok {
		for i, item := range n.list(key, raw) {
			if uc, ok := n.unstatedClaim(fmt.Sprintf("%s[%d]", key, i), item); ok {
				out.UnstatedClaims = append(out.UnstatedClaims, uc)
			}
		}
	}
	if raw, key, ok := lookup(root, "responseStrategies"); ok {
		for i, item := range n.list(key, raw) {
			if s, ok := n.strategy(fmt.Sprintf("%s[%d]", key, i), item); ok {
				out.ResponseStrategies = append(out.ResponseStrategies, s)
			}
		}
	}
	if raw, key, ok := lookup(root, "counterArguments"); ok {
		for i, item := range n.list(key, raw) {
			if ca, ok := n.counterArgument(fmt.Sprintf("%s[%d]", key, i), item); ok {
				out.CounterArguments = append(out.CounterArguments, ca)
			}
		}
	}
	if raw, key, ok := lookup(root, "investigatoryQuestions"); ok {
		if obj, ok := n.object(key, raw); ok {
			out.InvestigatoryQuestions = model.InvestigatoryQuestions{
				ForClaimant:   n.strings(key+".forClaimant", obj["forClaimant"]),
				ForWitnesses:  n.strings(key+".forWitnesses", obj["forWitnesses"]),
				ForRespondent: n.strings(key+".forRespondent", obj["forRespondent"]),
			}
		}
	}
	if raw, key, ok := lookup(root, "goodFaithConferenceGuide"); ok {
		if obj, ok := n.object(key, raw); ok {
			out.GoodFaithConferenceGuide = n.conferenceGuide(key, obj)
		}
	}
	if raw, key, ok := lookup(root, "evidenceBoard"); ok {
		if obj, ok := n.object(key, raw); ok {
			board := n.board(key, obj)
			out.Board = &board
		}
	}

	// Allegations and unstated claims share an id space
	claimIDs := map[string]bool{}
	uniqueIDs(n, "statedAllegations", out.StatedAllegations, claimIDs, func(a *model.Allegation) *string { return &a.ID })
	uniqueIDs(n, "unstatedClaims", out.UnstatedClaims, claimIDs, func(uc *model.UnstatedClaim) *string { return &uc.ID })
	uniqueIDs(n, "counterArguments", out.CounterArguments, map[string]bool{}, func(ca *model.CounterArgument) *string { return &ca.ID })
	uniqueIDs(n, "goodFaithConferenceGuide.documentRequests", out.GoodFaithConferenceGuide.DocumentRequests,
		map[string]bool{}, func(r *model.DocumentRequest) *string { return &r.ID })

	return out, n.warnings, nil
}

// uniqueIDs replaces ids already present in seen with fresh ones
func uniqueIDs[T any](n *normalizer, path string, list []T, seen map[string]bool, id func(*T) *string) {
	for i := range list {
		p := id(&list[i])
		if seen[*p] {
			n.warn(fmt.Sprintf("%s[%d].id", path, i), "duplicate id %q replaced", *p)
			*p = util.NewID("")
		}
		seen[*p] = true
	}
}

type normalizer struct {
	warnings []Warning
}

func (n *normalizer) warn(path, format string, args ...any) {
	n.warnings = append(n.warnings, Warning{Path: path, Reason: fmt.Sprintf(format, args...)})
}

func (n *normalizer) allegation(path string, v any) (model.Allegation, bool) {
	obj, ok := n.object(path, v)
	if !ok {
		return model.Allegation{}, false
	}
	return model.Allegation{
		ID:                n.id(path+".id", obj["id"]),
		Claim:             n.text(path+".claim", obj["claim"]),
		Summary:           n.text(path+".summary", obj["summary"]),
		Category:          model.ParseClaimCategory(n.text(path+".category", obj["category"])),
		EvidenceMentioned: n.strings(path+".evidenceMentioned", obj["evidenceMentioned"]),
		TexasCaseExamples: n.caseExamples(path+".texasCaseExamples", obj["texasCaseExamples"]),
		Status:            model.ParseAllegationStatus(n.text(path+".status", obj["status"])),
	}, true
}

func (n *normalizer) unstatedClaim(path string, v any) (model.UnstatedClaim, bool) {
	obj, ok := n.object(path, v)
	if !ok {
		return model.UnstatedClaim{}, false
	}
	return model.UnstatedClaim{
		ID:                n.id(path+".id", obj["id"]),
		Claim:             n.text(path+".claim", obj["claim"]),
		Reasoning:         n.text(path+".reasoning", obj["reasoning"]),
		Category:          model.ParseClaimCategory(n.text(path+".category", obj["category"])),
		EvidenceMentioned: n.strings(path+".evidenceMentioned", obj["evidenceMentioned"]),
		TexasCaseExamples: n.caseExamples(path+".texasCaseExamples", obj["texasCaseExamples"]),
	}, true
}

func (n *normalizer) caseExamples(path string, v any) []model.CaseExample {
	out := []model.CaseExample{}
	for i, item := range n.list(path, v) {
		p := fmt.Sprintf("%s[%d]", path, i)
		obj, ok := n.object(p, item)
		if !ok {
			continue
		}
		out = append(out, model.CaseExample{
			CaseName:  n.text(p+".caseName", obj["caseName"]),
			Citation:  n.text(p+".citation", obj["citation"]),
			Relevance: n.text(p+".relevance", obj["relevance"]),
		})
	}
	return out
}

func (n *normalizer) strategy(path string, v any) (model.ResponseStrategy, bool) {
	obj, ok := n.object(path, v)
	if !ok {
		return model.ResponseStrategy{}, false
	}
	s := model.ResponseStrategy{
		Claim:                n.text(path+".claim", obj["claim"]),
		Strategy:             n.text(path+".strategy", obj["strategy"]),
		SuggestedActionSteps: n.strings(path+".suggestedActionSteps", obj["suggestedActionSteps"]),
		EvidenceToGather:     []model.EvidenceToGather{},
		Instances:            []model.Instance{},
	}

	gapsPath := path + ".evidenceToGather"
	for i, item := range n.list(gapsPath, obj["evidenceToGather"]) {
		p := fmt.Sprintf("%s[%d]", gapsPath, i)
		gap, ok := n.object(p, item)
		if !ok {
			continue
		}
		s.EvidenceToGather = append(s.EvidenceToGather, model.EvidenceToGather{
			Item:              n.text(p+".item", gap["item"]),
			PotentialSource:   n.text(p+".potentialSource", gap["potentialSource"]),
			Rationale:         n.text(p+".rationale", gap["rationale"]),
			LinkedEvidenceIDs: n.strings(p+".linkedEvidenceIds", gap["linkedEvidenceIds"]),
		})
	}

	instPath := path + ".instances"
	for i, item := range n.list(instPath, obj["instances"]) {
		p := fmt.Sprintf("%s[%d]", instPath, i)
		inst, ok := n.object(p, item)
		if !ok {
			continue
		}
		s.Instances = append(s.Instances, model.Instance{
			ID:          n.id(p+".id", inst["id"]),
			Notes:       n.text(p+".notes", inst["notes"]),
			Attachments: n.attachments(p+".attachments", inst["attachments"]),
		})
	}
	return s, true
}

func (n *normalizer) counterArgument(path string, v any) (model.CounterArgument, bool) {
	obj, ok := n.object(path, v)
	if !ok {
		return model.CounterArgument{}, false
	}
	return model.CounterArgument{
		ID:       n.id(path+".id", obj["id"]),
		Argument: n.text(path+".argument", obj["argument"]),
		Rebuttal: n.text(path+".rebuttal", obj["rebuttal"]),
	}, true
}

func (n *normalizer) conferenceGuide(path string, obj map[string]any) model.GoodFaithConferenceGuide {
	g := model.GoodFaithConferenceGuide{
		Summary:          n.text(path+".summary", obj["summary"]),
		TalkingPoints:    n.strings(path+".talkingPoints", obj["talkingPoints"]),
		DocumentRequests: []model.DocumentRequest{},
	}
	reqPath := path + ".documentRequests"
	for i, item := range n.list(reqPath, obj["documentRequests"]) {
		p := fmt.Sprintf("%s[%d]", reqPath, i)
		req, ok := n.object(p, item)
		if !ok {
			continue
		}
		g.DocumentRequests = append(g.DocumentRequests, model.DocumentRequest{
			ID:        n.id(p+".id", req["id"]),
			Request:   n.text(p+".request", req["request"]),
			Rationale: n.text(p+".rationale", req["rationale"]),
			Status:    model.ParseDocumentRequestStatus(n.text(p+".status", req["status"])),
		})
	}
	return g
}

// board accepts evidence and columns either keyed by id or as lists, then
// restores the board invariants.
func (n *normalizer) board(path string, obj map[string]any) model.BoardState {
	b := model.BoardState{
		Evidence: map[string]model.EvidenceItem{},
		Columns:  map[string]model.Column{},
	}

	for _, e := range n.entries(path+".evidence", obj["evidence"]) {
		item, ok := n.evidenceItem(e.path, e.value)
		if !ok {
			continue
		}
		if item.ID == "" {
			item.ID = e.key
		}
		if item.ID == "" {
			item.ID = util.NewID("")
		}
		b.Evidence[item.ID] = item
	}

	for _, e := range n.entries(path+".columns", obj["columns"]) {
		col, ok := n.object(e.path, e.value)
		if !ok {
			continue
		}
		id := n.text(e.path+".id", col["id"])
		if id == "" {
			id = e.key
		}
		if id == "" {
			id = util.NewID("col")
		}
		b.Columns[id] = model.Column{
			ID:          id,
			Title:       n.text(e.path+".title", col["title"]),
			EvidenceIDs: n.strings(e.path+".evidenceIds", col["evidenceIds"]),
		}
	}

	b.ColumnOrder = n.strings(path+".columnOrder", obj["columnOrder"])

	repaired, fixes := casemodel.RepairBoard(b)
	for _, fix := range fixes {
		n.warn(path, "%s", fix)
	}
	return repaired
}

func (n *normalizer) evidenceItem(path string, v any) (model.EvidenceItem, bool) {
	obj, ok := n.object(path, v)
	if !ok {
		return model.EvidenceItem{}, false
	}
	return model.EvidenceItem{
		ID:                  n.text(path+".id", obj["id"]),
		Content:             n.text(path+".content", obj["content"]),
		Description:         n.text(path+".description", obj["description"]),
		Type:                model.ParseEvidenceType(n.text(path+".type", obj["type"])),
		Date:                n.text(path+".date", obj["date"]),
		Tags:                n.strings(path+".tags", obj["tags"]),
		LinkedAllegationIDs: n.strings(path+".linkedAllegationIds", obj["linkedAllegationIds"]),
		ValidationStatus:    model.ParseValidationStatus(n.text(path+".validationStatus", obj["validationStatus"])),
		Attachments:         n.attachments(path+".attachments", obj["attachments"]),
	}, true
}

func (n *normalizer) attachments(path string, v any) []model.Attachment {
	out := []model.Attachment{}
	for i, item := range n.list(path, v) {
		p := fmt.Sprintf("%s[%d]", path, i)
		obj, ok := n.object(p, item)
		if !ok {
			continue
		}
		out = append(out, model.Attachment{
			Name:     n.text(p+".name", obj["name"]),
			MimeType: n.text(p+".mimeType", obj["mimeType"]),
			Size:     n.size(p+".size", obj["size"]),
		})
	}
	return out
}

type entry struct {
	key   string
	path  string
	value any
}

// entries walks an id-keyed object in key order, or a list in index order
func (n *normalizer) entries(path string, v any) []entry {
	if obj, ok := v.(map[string]any); ok {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]entry, 0, len(keys))
		for _, k := range keys {
			out = append(out, entry{key: k, path: path + "." + k, value: obj[k]})
		}
		return out
	}
	list := n.list(path, v)
	out := make([]entry, 0, len(list))
	for i, item := range list {
		out = append(out, entry{path: fmt.Sprintf("%s[%d]", path, i), value: item})
	}
	return out
}

// list returns v as a sequence; a lone object becomes a one-element sequence
func (n *normalizer) list(path string, v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	case map[string]any:
		return []any{t}
	default:
		n.warn(path, "expected a list, got %s", describe(v))
		return nil
	}
}

func (n *normalizer) object(path string, v any) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		n.warn(path, "expected an object, got %s", describe(v))
	}
	return obj, ok
}

// strings returns a non-nil list of text values, stringifying scalars.
// A lone scalar is read as a one-element list.
func (n *normalizer) strings(path string, v any) []string {
	out := []string{}
	switch v.(type) {
	case string, json.Number, float64, bool:
		// A lone value is a one-element list
		v = []any{v}
	}
	for i, item := range n.list(path, v) {
		p := fmt.Sprintf("%s[%d]", path, i)
		if _, isObj := item.(map[string]any); isObj {
			n.warn(p, "expected text, got object")
			continue
		}
		if s := n.text(p, item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// text stringifies scalars; collections are dropped with a warning
func (n *normalizer) text(path string, v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		n.warn(path, "expected text, got %s", describe(v))
		return ""
	}
}

// size reads a byte count; negative or out-of-range values become 0 with a warning
func (n *normalizer) size(path string, v any) int64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return n.nonNegative(path, i)
		}
		parsed, err := t.Float64()
		if err != nil {
			n.warn(path, "expected a number, got %s", describe(v))
			return 0
		}
		f = parsed
	case float64:
		f = t
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			n.warn(path, "expected a number, got %s", describe(v))
			return 0
		}
		return n.nonNegative(path, i)
	default:
		n.warn(path, "expected a number, got %s", describe(v))
		return 0
	}

	// float64(math.MaxInt64) rounds up to 2^63, so >= rejects everything int64 cannot hold
	if math.IsNaN(f) || f < 0 || f >= math.MaxInt64 {
		n.warn(path, "size %g out of range", f)
		return 0
	}
	return int64(f)
}

func (n *normalizer) nonNegative(path string, i int64) int64 {
	if i < 0 {
		n.warn(path, "size %d out of range", i)
		return 0
	}
	return i
}

// id returns the stringified id, or a fresh one when absent
func (n *normalizer) id(path string, v any) string {
	if s := strings.TrimSpace(n.text(path, v)); s != "" {
		return s
	}
	return util.NewID("")
}

func recognized(root map[string]any) bool {
	for canonical := range sections {
		if _, _, ok := lookup(root, canonical); ok {
			return true
		}
	}
	return false
}

// lookup finds a section under its canonical key or the first alias present
func lookup(root map[string]any, canonical string) (any, string, bool) {
	for _, key := range sections[canonical] {
		if v, ok := root[key]; ok {
			return v, key, true
		}
	}
	return nil, "", false
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "list"
	case string:
		return "text"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
