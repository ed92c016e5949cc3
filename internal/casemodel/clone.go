package casemodel

import "github.com/ppiankov/casefile/internal/model"

// Clone returns a deep copy that shares no slices or maps with m
func (m Model) Clone() Model {
	return Model{
		Case:  cloneCase(m.Case),
		Board: cloneBoard(m.Board),
	}
}

func cloneCase(c model.CaseData) model.CaseData {
	cp := c
	cp.Analysis = cloneAnalysis(c.Analysis)
	if c.SectionNotes != nil {
		cp.SectionNotes = make(map[string]model.SectionNote, len(c.SectionNotes))
		for k, v := range c.SectionNotes {
			cp.SectionNotes[k] = v
		}
	}
	cp.Conversation = cloneSlice(c.Conversation)
	return cp
}

func cloneBoard(b model.BoardState) model.BoardState {
	cp := model.BoardState{ColumnOrder: cloneSlice(b.ColumnOrder)}
	if b.Evidence != nil {
		cp.Evidence = make(map[string]model.EvidenceItem, len(b.Evidence))
		for k, v := range b.Evidence {
			cp.Evidence[k] = cloneEvidence(v)
		}
	}
	if b.Columns != nil {
		cp.Columns = make(map[string]model.Column, len(b.Columns))
		for k, v := range b.Columns {
			v.EvidenceIDs = cloneSlice(v.EvidenceIDs)
			cp.Columns[k] = v
		}
	}
	return cp
}

func cloneEvidence(e model.EvidenceItem) model.EvidenceItem {
	e.Tags = cloneSlice(e.Tags)
	e.LinkedAllegationIDs = cloneSlice(e.LinkedAllegationIDs)
	e.Attachments = cloneSlice(e.Attachments)
	return e
}

func cloneAnalysis(a *model.AnalysisResult) *model.AnalysisResult {
	if a == nil {
		return nil
	}
	cp := *a

	cp.StatedAllegations = make([]model.Allegation, len(a.StatedAllegations))
	for i, al := range a.StatedAllegations {
		al.EvidenceMentioned = cloneSlice(al.EvidenceMentioned)
		al.TexasCaseExamples = cloneSlice(al.TexasCaseExamples)
		cp.StatedAllegations[i] = al
	}

	cp.UnstatedClaims = make([]model.UnstatedClaim, len(a.UnstatedClaims))
	for i, uc := range a.UnstatedClaims {
		uc.EvidenceMentioned = cloneSlice(uc.EvidenceMentioned)
		uc.TexasCaseExamples = cloneSlice(uc.TexasCaseExamples)
		cp.UnstatedClaims[i] = uc
	}

	cp.ResponseStrategies = make([]model.ResponseStrategy, len(a.ResponseStrategies))
	for i, s := range a.ResponseStrategies {
		cp.ResponseStrategies[i] = cloneStrategy(s)
	}

	cp.CounterArguments = cloneSlice(a.CounterArguments)
	cp.InvestigatoryQuestions = model.InvestigatoryQuestions{
		ForClaimant:   cloneSlice(a.InvestigatoryQuestions.ForClaimant),
		ForWitnesses:  cloneSlice(a.InvestigatoryQuestions.ForWitnesses),
		ForRespondent: cloneSlice(a.InvestigatoryQuestions.ForRespondent),
	}
	cp.GoodFaithConferenceGuide.TalkingPoints = cloneSlice(a.GoodFaithConferenceGuide.TalkingPoints)
	cp.GoodFaithConferenceGuide.DocumentRequests = cloneSlice(a.GoodFaithConferenceGuide.DocumentRequests)

	if a.Board != nil {
		b := cloneBoard(*a.Board)
		cp.Board = &b
	}
	return &cp
}

func cloneStrategy(s model.ResponseStrategy) model.ResponseStrategy {
	s.SuggestedActionSteps = cloneSlice(s.SuggestedActionSteps)
	gaps := make([]model.EvidenceToGather, len(s.EvidenceToGather))
	for i, g := range s.EvidenceToGather {
		g.LinkedEvidenceIDs = cloneSlice(g.LinkedEvidenceIDs)
		gaps[i] = g
	}
	s.EvidenceToGather = gaps
	instances := make([]model.Instance, len(s.Instances))
	for i, inst := range s.Instances {
		inst.Attachments = cloneSlice(inst.Attachments)
		instances[i] = inst
	}
	s.Instances = instances
	return s
}

// cloneSlice copies s, keeping nil as nil and empty as empty
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
