// Package casemodel owns the cross-referenced case model: evidence, allegations,
// strategies and the evidence board. Every operation takes a valid model and
// returns a new valid model; the receiver is never mutated.
package casemodel

import (
	"errors"
	"fmt"

	"github.com/ppiankov/casefile/internal/model"
)

var (
	ErrUnknownEvidence      = errors.New("unknown evidence item")
	ErrUnknownColumn        = errors.New("unknown column")
	ErrUncategorizedColumn  = errors.New("the uncategorized column cannot be deleted")
	ErrUnknownAllegation    = errors.New("unknown allegation")
	ErrUnknownUnstatedClaim = errors.New("unknown unstated claim")
	ErrUnknownInstance      = errors.New("unknown instance")
	ErrNoAnalysis           = errors.New("no analysis loaded")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrInvalidColumnOrder   = errors.New("column order must be a permutation of existing columns")
	ErrEmptyKey             = errors.New("section key is required")
)

// Model is the in-memory case: persisted case data plus the evidence board
type Model struct {
	Case  model.CaseData
	Board model.BoardState
}

// New returns an empty, valid model
func New() Model {
	return Model{
		Case:  model.DefaultCase(),
		Board: model.DefaultBoard(),
	}
}

// Reconcile restores every invariant on a model built from untrusted parts
// (a loaded store entry, a seeded board). Removed references are reported as events.
func (m Model) Reconcile() (Model, []model.Event) {
	next := m.Clone()
	board, _ := RepairBoard(next.Board)
	next.Board = board
	if next.Case.SectionNotes == nil {
		next.Case.SectionNotes = map[string]model.SectionNote{}
	}
	if next.Case.Conversation == nil {
		next.Case.Conversation = []model.ChatMessage{}
	}
	events := next.pruneReferences()
	return next, events
}

// pruneReferences drops evidence->allegation and gap->evidence links that no
// longer resolve. It mutates the receiver and must only run on a clone.
func (m *Model) pruneReferences() []model.Event {
	var events []model.Event

	// Evidence -> allegation links
	allegations := m.allegationIDs()
	for id, item := range m.Board.Evidence {
		kept := make([]string, 0, len(item.LinkedAllegationIDs))
		for _, aid := range item.LinkedAllegationIDs {
			if allegations[aid] {
				kept = append(kept, aid)
				continue
			}
			events = append(events, danglingCleared("evidence", "allegation link removed", map[string]string{
				"evidenceId":   id,
				"allegationId": aid,
			}))
		}
		item.LinkedAllegationIDs = kept
		m.Board.Evidence[id] = item
	}

	if m.Case.Analysis == nil {
		return events
	}
	// Strategy gap -> evidence links
	for si := range m.Case.Analysis.ResponseStrategies {
		strategy := &m.Case.Analysis.ResponseStrategies[si]
		for gi := range strategy.EvidenceToGather {
			gap := &strategy.EvidenceToGather[gi]
			kept := make([]string, 0, len(gap.LinkedEvidenceIDs))
			for _, eid := range gap.LinkedEvidenceIDs {
				if _, ok := m.Board.Evidence[eid]; ok {
					kept = append(kept, eid)
					continue
				}
				events = append(events, danglingCleared("responseStrategies", "gap evidence link removed", map[string]string{
					"strategyIndex": fmt.Sprint(si),
					"gapIndex":      fmt.Sprint(gi),
					"evidenceId":    eid,
				}))
			}
			gap.LinkedEvidenceIDs = kept
		}
	}
	return events
}

// Validate reports every invariant violation; a valid model returns nil
func (m Model) Validate() []error {
	var errs []error
	b := m.Board

	uncategorized, ok := b.Columns[model.UncategorizedColumnID]
	if !ok || uncategorized.ID != model.UncategorizedColumnID {
		errs = append(errs, errors.New("uncategorized column missing"))
	}

	inOrder := make(map[string]bool, len(b.ColumnOrder))
	for _, id := range b.ColumnOrder {
		if inOrder[id] {
			errs = append(errs, fmt.Errorf("column %s repeated in column order", id))
		}
		inOrder[id] = true
		if _, ok := b.Columns[id]; !ok {
			errs = append(errs, fmt.Errorf("column order references unknown column %s", id))
		}
	}
	for id := range b.Columns {
		if !inOrder[id] {
			errs = append(errs, fmt.Errorf("column %s missing from column order", id))
		}
	}

	placed := make(map[string]string, len(b.Evidence))
	for colID, col := range b.Columns {
		for _, eid := range col.EvidenceIDs {
			if prev, dup := placed[eid]; dup {
				errs = append(errs, fmt.Errorf("evidence %s appears in columns %s and %s", eid, prev, colID))
			}
			placed[eid] = colID
			if _, ok := b.Evidence[eid]; !ok {
				errs = append(errs, fmt.Errorf("column %s references unknown evidence %s", colID, eid))
			}
		}
	}

	allegations := m.allegationIDs()
	for id, item := range b.Evidence {
		if _, ok := placed[id]; !ok {
			errs = append(errs, fmt.Errorf("evidence %s is not in any column", id))
		}
		for _, aid := range item.LinkedAllegationIDs {
			if !allegations[aid] {
				errs = append(errs, fmt.Errorf("evidence %s links unknown allegation %s", id, aid))
			}
		}
	}

	if m.Case.Analysis != nil {
		for si, s := range m.Case.Analysis.ResponseStrategies {
			for gi, gap := range s.EvidenceToGather {
				for _, eid := range gap.LinkedEvidenceIDs {
					if _, ok := b.Evidence[eid]; !ok {
						errs = append(errs, fmt.Errorf("strategy %d gap %d links unknown evidence %s", si, gi, eid))
					}
				}
			}
		}
	}
	return errs
}

func (m Model) allegationIDs() map[string]bool {
	ids := map[string]bool{}
	if m.Case.Analysis == nil {
		return ids
	}
	for _, a := range m.Case.Analysis.StatedAllegations {
		ids[a.ID] = true
	}
	return ids
}

func (m Model) requireAnalysis() error {
	if m.Case.Analysis == nil {
		return ErrNoAnalysis
	}
	return nil
}

func danglingCleared(section, msg string, data map[string]string) model.Event {
	return model.Event{
		Kind:    model.FailureDanglingCleared,
		Section: section,
		Message: msg,
		Data:    data,
	}
}
