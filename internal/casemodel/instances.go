package casemodel

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/util"
)

// AddInstance documents a new example under a response strategy
func (m Model) AddInstance(strategyIndex int, notes string, attachments []model.Attachment) (Model, model.Instance, error) {
	if err := m.checkStrategy(strategyIndex); err != nil {
		return m, model.Instance{}, err
	}
	inst := model.Instance{
		ID:          util.NewID(""),
		Notes:       notes,
		Attachments: cloneSlice(attachments),
	}
	if inst.Attachments == nil {
		inst.Attachments = []model.Attachment{}
	}

	next := m.Clone()
	s := &next.Case.Analysis.ResponseStrategies[strategyIndex]
	s.Instances = append(s.Instances, inst)
	return next, inst, nil
}

// UpdateInstance replaces the notes of an instance; attachments change only when non-nil
func (m Model) UpdateInstance(strategyIndex int, id, notes string, attachments []model.Attachment) (Model, error) {
	if err := m.checkStrategy(strategyIndex); err != nil {
		return m, err
	}
	idx := instanceIndex(m.Case.Analysis.ResponseStrategies[strategyIndex].Instances, id)
	if idx < 0 {
		return m, fmt.Errorf("%w: %s", ErrUnknownInstance, id)
	}

	next := m.Clone()
	inst := &next.Case.Analysis.ResponseStrategies[strategyIndex].Instances[idx]
	inst.Notes = notes
	if attachments != nil {
		inst.Attachments = cloneSlice(attachments)
	}
	return next, nil
}

// DeleteInstance removes an instance from a strategy
func (m Model) DeleteInstance(strategyIndex int, id string) (Model, error) {
	if err := m.checkStrategy(strategyIndex); err != nil {
		return m, err
	}
	idx := instanceIndex(m.Case.Analysis.ResponseStrategies[strategyIndex].Instances, id)
	if idx < 0 {
		return m, fmt.Errorf("%w: %s", ErrUnknownInstance, id)
	}

	next := m.Clone()
	s := &next.Case.Analysis.ResponseStrategies[strategyIndex]
	s.Instances = append(s.Instances[:idx:idx], s.Instances[idx+1:]...)
	return next, nil
}

// SetSectionNotes stores the user's suggestion and notes for one analysis section
func (m Model) SetSectionNotes(key string, note model.SectionNote, now time.Time) (Model, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return m, ErrEmptyKey
	}
	next := m.Clone()
	if next.Case.SectionNotes == nil {
		next.Case.SectionNotes = map[string]model.SectionNote{}
	}
	note.UpdatedAt = now.UTC()
	next.Case.SectionNotes[key] = note
	return next, nil
}

// SetInputs replaces the raw narrative fields
func (m Model) SetInputs(inputs model.CaseInputs) (Model, error) {
	next := m.Clone()
	next.Case.Inputs = inputs
	return next, nil
}

// AppendConversation records chat turns, keeping only the most recent ones
func (m Model) AppendConversation(msgs ...model.ChatMessage) Model {
	next := m.Clone()
	conv := append(next.Case.Conversation, msgs...)
	if len(conv) > model.MaxConversation {
		conv = append([]model.ChatMessage(nil), conv[len(conv)-model.MaxConversation:]...)
	}
	next.Case.Conversation = conv
	return next
}

func (m Model) checkStrategy(i int) error {
	if err := m.requireAnalysis(); err != nil {
		return err
	}
	if i < 0 || i >= len(m.Case.Analysis.ResponseStrategies) {
		return fmt.Errorf("%w: strategy %d", ErrIndexOutOfRange, i)
	}
	return nil
}

func instanceIndex(list []model.Instance, id string) int {
	for i, inst := range list {
		if inst.ID == id {
			return i
		}
	}
	return -1
}
