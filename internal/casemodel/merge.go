package casemodel

import (
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/util"
)

// ApplyAnalysis stores a normalized analysis. The first analysis is kept as
// is; later ones are merged so user-authored state survives. The result's
// board snapshot seeds the board only while the board holds no evidence.
func (m Model) ApplyAnalysis(result *model.AnalysisResult) (Model, []model.Event, error) {
	if result == nil {
		return m, nil, ErrNoAnalysis
	}

	next := m.Clone()
	incoming := cloneAnalysis(result)
	snapshot := incoming.Board
	incoming.Board = nil

	if next.Case.Analysis == nil {
		next.Case.Analysis = incoming
	} else {
		next.Case.Analysis = Merge(next.Case.Analysis, incoming)
	}

	// Seed only an empty board; user evidence always wins over a snapshot
	if snapshot != nil && len(next.Board.Evidence) == 0 {
		board, _ := RepairBoard(*snapshot)
		next.Board = board
	}

	events := next.pruneReferences()
	return next, events, nil
}

// Merge combines a fresh analysis with the stored one, matching entries by
// normalized claim text. Provider-authored fields come from next; ids,
// statuses, instances and gap links come from prev. Entries only prev has
// are dropped. A provider id that names a stored entry it was not matched
// with is replaced, so links never move to a different claim. Neither
// argument is modified.
func Merge(prev, next *model.AnalysisResult) *model.AnalysisResult {
	if next == nil {
		return cloneAnalysis(prev)
	}
	out := cloneAnalysis(next)
	if prev == nil {
		return out
	}

	// Allegations and unstated claims share one id space (promotion moves ids across)
	claims := newIDLedger()
	for _, a := range prev.StatedAllegations {
		claims.reserve(a.ID)
	}
	for _, uc := range prev.UnstatedClaims {
		claims.reserve(uc.ID)
	}

	oldAllegations := make(map[string]model.Allegation, len(prev.StatedAllegations))
	for _, a := range prev.StatedAllegations {
		key := model.ClaimKey(a.Claim)
		if _, dup := oldAllegations[key]; !dup {
			oldAllegations[key] = a
		}
	}
	allegationMatched := make([]bool, len(out.StatedAllegations))
	for i := range out.StatedAllegations {
		a := &out.StatedAllegations[i]
		key := model.ClaimKey(a.Claim)
		if old, ok := oldAllegations[key]; ok {
			a.ID = old.ID
			a.Status = old.Status
			allegationMatched[i] = true
			delete(oldAllegations, key)
		}
	}

	oldClaims := make(map[string]string, len(prev.UnstatedClaims))
	for _, uc := range prev.UnstatedClaims {
		key := model.ClaimKey(uc.Claim)
		if _, dup := oldClaims[key]; !dup {
			oldClaims[key] = uc.ID
		}
	}
	claimMatched := make([]bool, len(out.UnstatedClaims))
	for i := range out.UnstatedClaims {
		uc := &out.UnstatedClaims[i]
		key := model.ClaimKey(uc.Claim)
		if id, ok := oldClaims[key]; ok {
			uc.ID = id
			claimMatched[i] = true
			delete(oldClaims, key)
		}
	}

	// Matched entries claim their stored ids before any fresh entry is checked
	settle(claims, out.StatedAllegations, allegationMatched, true, func(a *model.Allegation) *string { return &a.ID })
	settle(claims, out.UnstatedClaims, claimMatched, true, func(uc *model.UnstatedClaim) *string { return &uc.ID })
	settle(claims, out.StatedAllegations, allegationMatched, false, func(a *model.Allegation) *string { return &a.ID })
	settle(claims, out.UnstatedClaims, claimMatched, false, func(uc *model.UnstatedClaim) *string { return &uc.ID })

	// Strategies keep user instances and gap links
	oldStrategies := make(map[string]model.ResponseStrategy, len(prev.ResponseStrategies))
	for _, s := range prev.ResponseStrategies {
		key := model.ClaimKey(s.Claim)
		if _, dup := oldStrategies[key]; !dup {
			oldStrategies[key] = s
		}
	}
	for i := range out.ResponseStrategies {
		s := &out.ResponseStrategies[i]
		key := model.ClaimKey(s.Claim)
		old, ok := oldStrategies[key]
		if !ok {
			continue
		}
		delete(oldStrategies, key)
		s.Instances = mergeInstances(old.Instances, s.Instances)
		mergeGaps(old.EvidenceToGather, s.EvidenceToGather)
	}

	args := newIDLedger()
	oldArgs := make(map[string]string, len(prev.CounterArguments))
	for _, ca := range prev.CounterArguments {
		args.reserve(ca.ID)
		key := model.ClaimKey(ca.Argument)
		if _, dup := oldArgs[key]; !dup {
			oldArgs[key] = ca.ID
		}
	}
	argMatched := make([]bool, len(out.CounterArguments))
	for i := range out.CounterArguments {
		ca := &out.CounterArguments[i]
		key := model.ClaimKey(ca.Argument)
		if id, ok := oldArgs[key]; ok {
			ca.ID = id
			argMatched[i] = true
			delete(oldArgs, key)
		}
	}
	settle(args, out.CounterArguments, argMatched, true, func(ca *model.CounterArgument) *string { return &ca.ID })
	settle(args, out.CounterArguments, argMatched, false, func(ca *model.CounterArgument) *string { return &ca.ID })

	requests := newIDLedger()
	oldRequests := make(map[string]model.DocumentRequest, len(prev.GoodFaithConferenceGuide.DocumentRequests))
	for _, r := range prev.GoodFaithConferenceGuide.DocumentRequests {
		requests.reserve(r.ID)
		key := model.ClaimKey(r.Request)
		if _, dup := oldRequests[key]; !dup {
			oldRequests[key] = r
		}
	}
	outRequests := out.GoodFaithConferenceGuide.DocumentRequests
	requestMatched := make([]bool, len(outRequests))
	for i := range outRequests {
		r := &outRequests[i]
		key := model.ClaimKey(r.Request)
		if old, ok := oldRequests[key]; ok {
			r.ID = old.ID
			r.Status = old.Status
			requestMatched[i] = true
			delete(oldRequests, key)
		}
	}
	settle(requests, outRequests, requestMatched, true, func(r *model.DocumentRequest) *string { return &r.ID })
	settle(requests, outRequests, requestMatched, false, func(r *model.DocumentRequest) *string { return &r.ID })

	return out
}

// idLedger tracks which ids a merge has handed out. Reserved ids belong to
// stored entries and are only available to the entry matched with them.
type idLedger struct {
	reserved map[string]bool
	used     map[string]bool
}

func newIDLedger() *idLedger {
	return &idLedger{reserved: map[string]bool{}, used: map[string]bool{}}
}

func (l *idLedger) reserve(id string) {
	if id != "" {
		l.reserved[id] = true
	}
}

// keep lets a matched entry hold its stored id unless another entry already does
func (l *idLedger) keep(p *string) {
	if *p == "" || l.used[*p] {
		*p = util.NewID("")
	}
	l.used[*p] = true
}

// assign gives an unmatched entry a fresh id when its own is empty, taken or reserved
func (l *idLedger) assign(p *string) {
	if *p == "" || l.used[*p] || l.reserved[*p] {
		*p = util.NewID("")
	}
	l.used[*p] = true
}

// settle runs keep over matched entries or assign over unmatched ones
func settle[T any](l *idLedger, list []T, matched []bool, wantMatched bool, id func(*T) *string) {
	for i := range list {
		if matched[i] != wantMatched {
			continue
		}
		if wantMatched {
			l.keep(id(&list[i]))
		} else {
			l.assign(id(&list[i]))
		}
	}
}

// mergeInstances keeps every stored instance and appends fresh ones with unseen ids
func mergeInstances(prev, next []model.Instance) []model.Instance {
	out := make([]model.Instance, 0, len(prev)+len(next))
	seen := make(map[string]bool, len(prev))
	for _, inst := range prev {
		inst.Attachments = cloneSlice(inst.Attachments)
		out = append(out, inst)
		seen[inst.ID] = true
	}
	for _, inst := range next {
		if !seen[inst.ID] {
			out = append(out, inst)
			seen[inst.ID] = true
		}
	}
	return out
}

// mergeGaps carries stored evidence links onto gaps with the same item text
func mergeGaps(prev, next []model.EvidenceToGather) {
	links := make(map[string][]string, len(prev))
	for _, g := range prev {
		key := model.ClaimKey(g.Item)
		links[key] = append(links[key], g.LinkedEvidenceIDs...)
	}
	for i := range next {
		key := model.ClaimKey(next[i].Item)
		old, ok := links[key]
		if !ok {
			continue
		}
		next[i].LinkedEvidenceIDs = dedupeStrings(append(cloneSlice(old), next[i].LinkedEvidenceIDs...))
		delete(links, key)
	}
}
