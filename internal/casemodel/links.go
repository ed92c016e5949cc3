package casemodel

import (
	"fmt"

	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/util"
)

// LinkEvidenceToAllegation replaces the item's allegation links; unknown allegations are dropped
func (m Model) LinkEvidenceToAllegation(evidenceID string, allegationIDs []string) (Model, error) {
	if _, ok := m.Board.Evidence[evidenceID]; !ok {
		return m, fmt.Errorf("%w: %s", ErrUnknownEvidence, evidenceID)
	}
	next := m.Clone()
	item := next.Board.Evidence[evidenceID]
	item.LinkedAllegationIDs = allegationIDs
	next.Board.Evidence[evidenceID] = sanitizeEvidence(item, next.allegationIDs())
	return next, nil
}

// SetGapEvidence replaces the evidence filling one strategy gap. Ids that do
// not name a board item are dropped without error.
func (m Model) SetGapEvidence(strategyIndex, gapIndex int, ids []string) (Model, error) {
	if err := m.requireAnalysis(); err != nil {
		return m, err
	}
	strategies := m.Case.Analysis.ResponseStrategies
	if strategyIndex < 0 || strategyIndex >= len(strategies) {
		return m, fmt.Errorf("%w: strategy %d", ErrIndexOutOfRange, strategyIndex)
	}
	if gapIndex < 0 || gapIndex >= len(strategies[strategyIndex].EvidenceToGather) {
		return m, fmt.Errorf("%w: gap %d", ErrIndexOutOfRange, gapIndex)
	}

	kept := make([]string, 0, len(ids))
	for _, id := range dedupeStrings(ids) {
		if _, ok := m.Board.Evidence[id]; ok {
			kept = append(kept, id)
		}
	}

	next := m.Clone()
	next.Case.Analysis.ResponseStrategies[strategyIndex].EvidenceToGather[gapIndex].LinkedEvidenceIDs = kept
	return next, nil
}

// DeleteAllegation removes a stated allegation and unlinks it from every evidence item
func (m Model) DeleteAllegation(id string) (Model, []model.Event, error) {
	if err := m.requireAnalysis(); err != nil {
		return m, nil, err
	}
	idx := allegationIndex(m.Case.Analysis.StatedAllegations, id)
	if idx < 0 {
		return m, nil, fmt.Errorf("%w: %s", ErrUnknownAllegation, id)
	}

	next := m.Clone()
	list := next.Case.Analysis.StatedAllegations
	next.Case.Analysis.StatedAllegations = append(list[:idx:idx], list[idx+1:]...)
	events := next.pruneReferences()
	return next, events, nil
}

// SetAllegationStatus moves an allegation through draft, investigating, validated and ready
func (m Model) SetAllegationStatus(id, status string) (Model, error) {
	if err := m.requireAnalysis(); err != nil {
		return m, err
	}
	idx := allegationIndex(m.Case.Analysis.StatedAllegations, id)
	if idx < 0 {
		return m, fmt.Errorf("%w: %s", ErrUnknownAllegation, id)
	}
	next := m.Clone()
	next.Case.Analysis.StatedAllegations[idx].Status = model.ParseAllegationStatus(status)
	return next, nil
}

// PromoteUnstatedClaim turns a potential claim into a stated allegation with
// the same id, or a fresh one when a stated allegation already holds it.
// The board is not touched.
func (m Model) PromoteUnstatedClaim(id string) (Model, model.Allegation, error) {
	if err := m.requireAnalysis(); err != nil {
		return m, model.Allegation{}, err
	}
	idx := -1
	for i, uc := range m.Case.Analysis.UnstatedClaims {
		if uc.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return m, model.Allegation{}, fmt.Errorf("%w: %s", ErrUnknownUnstatedClaim, id)
	}

	next := m.Clone()
	uc := next.Case.Analysis.UnstatedClaims[idx]

	// Keep the id unless a stated allegation already uses it
	promotedID := uc.ID
	if promotedID == "" || allegationIndex(next.Case.Analysis.StatedAllegations, promotedID) >= 0 {
		promotedID = util.NewID("")
	}
	promoted := model.Allegation{
		ID:                promotedID,
		Claim:             uc.Claim,
		Summary:           uc.Reasoning,
		Category:          uc.Category,
		EvidenceMentioned: uc.EvidenceMentioned,
		TexasCaseExamples: uc.TexasCaseExamples,
		Status:            model.StatusDraft,
	}
	claims := next.Case.Analysis.UnstatedClaims
	next.Case.Analysis.UnstatedClaims = append(claims[:idx:idx], claims[idx+1:]...)
	next.Case.Analysis.StatedAllegations = append(next.Case.Analysis.StatedAllegations, promoted)
	return next, promoted, nil
}

func allegationIndex(list []model.Allegation, id string) int {
	for i, a := range list {
		if a.ID == id {
			return i
		}
	}
	return -1
}
