package casemodel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/util"
)

// EvidencePatch holds the fields to change on an evidence item; nil means unchanged
type EvidencePatch struct {
	Content             *string
	Description         *string
	Type                *string
	Date                *string
	Tags                *[]string
	ValidationStatus    *string
	LinkedAllegationIDs *[]string
	Attachments         *[]model.Attachment
}

// AddEvidence stores item under a fresh id and appends it to columnID (uncategorized when empty)
func (m Model) AddEvidence(item model.EvidenceItem, columnID string) (Model, model.EvidenceItem, error) {
	if columnID == "" {
		columnID = model.UncategorizedColumnID
	}
	if _, ok := m.Board.Columns[columnID]; !ok {
		return m, model.EvidenceItem{}, fmt.Errorf("%w: %s", ErrUnknownColumn, columnID)
	}

	next := m.Clone()
	item.ID = util.NewID("")
	item = sanitizeEvidence(item, next.allegationIDs())
	next.Board.Evidence[item.ID] = item

	col := next.Board.Columns[columnID]
	col.EvidenceIDs = append(col.EvidenceIDs, item.ID)
	next.Board.Columns[columnID] = col
	return next, item, nil
}

// UpdateEvidence applies patch to the item; its id and column placement never change
func (m Model) UpdateEvidence(id string, patch EvidencePatch) (Model, error) {
	if _, ok := m.Board.Evidence[id]; !ok {
		return m, fmt.Errorf("%w: %s", ErrUnknownEvidence, id)
	}

	next := m.Clone()
	item := next.Board.Evidence[id]
	if patch.Content != nil {
		item.Content = *patch.Content
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Type != nil {
		item.Type = model.EvidenceType(*patch.Type)
	}
	if patch.Date != nil {
		item.Date = *patch.Date
	}
	if patch.Tags != nil {
		item.Tags = *patch.Tags
	}
	if patch.ValidationStatus != nil {
		item.ValidationStatus = model.ValidationStatus(*patch.ValidationStatus)
	}
	if patch.LinkedAllegationIDs != nil {
		item.LinkedAllegationIDs = *patch.LinkedAllegationIDs
	}
	if patch.Attachments != nil {
		item.Attachments = *patch.Attachments
	}
	next.Board.Evidence[id] = sanitizeEvidence(item, next.allegationIDs())
	return next, nil
}

// DeleteEvidence removes the item and every reference to it
func (m Model) DeleteEvidence(id string) (Model, []model.Event, error) {
	if _, ok := m.Board.Evidence[id]; !ok {
		return m, nil, fmt.Errorf("%w: %s", ErrUnknownEvidence, id)
	}

	// Remove from the board, then from every link that pointed at it
	next := m.Clone()
	delete(next.Board.Evidence, id)
	for colID, col := range next.Board.Columns {
		if i := indexOf(col.EvidenceIDs, id); i >= 0 {
			col.EvidenceIDs = removeAt(col.EvidenceIDs, i)
			next.Board.Columns[colID] = col
		}
	}
	events := next.pruneReferences()
	return next, events, nil
}

// MoveEvidence moves the item to toColumn at index (clamped); same-column moves reorder
func (m Model) MoveEvidence(id, toColumn string, index int) (Model, error) {
	if _, ok := m.Board.Evidence[id]; !ok {
		return m, fmt.Errorf("%w: %s", ErrUnknownEvidence, id)
	}
	if _, ok := m.Board.Columns[toColumn]; !ok {
		return m, fmt.Errorf("%w: %s", ErrUnknownColumn, toColumn)
	}

	next := m.Clone()
	for colID, col := range next.Board.Columns {
		if i := indexOf(col.EvidenceIDs, id); i >= 0 {
			col.EvidenceIDs = removeAt(col.EvidenceIDs, i)
			next.Board.Columns[colID] = col
			break
		}
	}

	dest := next.Board.Columns[toColumn]
	dest.EvidenceIDs = insertAt(dest.EvidenceIDs, index, id)
	next.Board.Columns[toColumn] = dest
	return next, nil
}

// AddColumn appends a new column to the board
func (m Model) AddColumn(title string) (Model, model.Column, error) {
	next := m.Clone()
	col := model.Column{
		ID:          util.NewID("col"),
		Title:       columnTitle(title),
		EvidenceIDs: []string{},
	}
	next.Board.Columns[col.ID] = col
	next.Board.ColumnOrder = append(next.Board.ColumnOrder, col.ID)
	return next, col, nil
}

// RenameColumn changes only the column title
func (m Model) RenameColumn(id, title string) (Model, error) {
	if _, ok := m.Board.Columns[id]; !ok {
		return m, fmt.Errorf("%w: %s", ErrUnknownColumn, id)
	}
	next := m.Clone()
	col := next.Board.Columns[id]
	col.Title = columnTitle(title)
	next.Board.Columns[id] = col
	return next, nil
}

// DeleteColumn removes a column, appending its evidence to uncategorized
func (m Model) DeleteColumn(id string) (Model, error) {
	if id == model.UncategorizedColumnID {
		return m, ErrUncategorizedColumn
	}
	if _, ok := m.Board.Columns[id]; !ok {
		return m, fmt.Errorf("%w: %s", ErrUnknownColumn, id)
	}

	// Spill evidence first so nothing is unplaced while the column goes away
	next := m.Clone()
	doomed := next.Board.Columns[id]
	uncategorized := next.Board.Columns[model.UncategorizedColumnID]
	uncategorized.EvidenceIDs = append(uncategorized.EvidenceIDs, doomed.EvidenceIDs...)
	next.Board.Columns[model.UncategorizedColumnID] = uncategorized

	delete(next.Board.Columns, id)
	if i := indexOf(next.Board.ColumnOrder, id); i >= 0 {
		next.Board.ColumnOrder = removeAt(next.Board.ColumnOrder, i)
	}
	return next, nil
}

// ReorderColumns replaces the column order; order must be a permutation of the current columns
func (m Model) ReorderColumns(order []string) (Model, error) {
	if len(order) != len(m.Board.Columns) {
		return m, ErrInvalidColumnOrder
	}
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if _, ok := m.Board.Columns[id]; !ok || seen[id] {
			return m, fmt.Errorf("%w: %s", ErrInvalidColumnOrder, id)
		}
		seen[id] = true
	}
	next := m.Clone()
	next.Board.ColumnOrder = append([]string(nil), order...)
	return next, nil
}

// ColumnOf returns the id of the column holding evidence id
func (m Model) ColumnOf(id string) (string, bool) {
	for _, colID := range m.Board.ColumnOrder {
		if indexOf(m.Board.Columns[colID].EvidenceIDs, id) >= 0 {
			return colID, true
		}
	}
	return "", false
}

// RepairBoard restores board invariants on untrusted input and describes each fix
func RepairBoard(b model.BoardState) (model.BoardState, []string) {
	var fixes []string
	out := model.BoardState{
		Evidence: map[string]model.EvidenceItem{},
		Columns:  map[string]model.Column{},
	}

	// Evidence: map key is the id
	for key, item := range b.Evidence {
		if key == "" {
			fixes = append(fixes, "dropped evidence with empty id")
			continue
		}
		if item.ID != key {
			item.ID = key
		}
		out.Evidence[key] = sanitizeEvidence(item, nil)
	}

	for key, col := range b.Columns {
		if key == "" {
			fixes = append(fixes, "dropped column with empty id")
			continue
		}
		col.ID = key
		col.Title = columnTitle(col.Title)
		out.Columns[key] = col
	}
	if _, ok := out.Columns[model.UncategorizedColumnID]; !ok {
		out.Columns[model.UncategorizedColumnID] = model.DefaultBoard().Columns[model.UncategorizedColumnID]
		fixes = append(fixes, "restored uncategorized column")
	}

	// Column order: known columns once each, then the missing ones
	seenCol := map[string]bool{}
	for _, id := range b.ColumnOrder {
		if _, ok := out.Columns[id]; !ok || seenCol[id] {
			fixes = append(fixes, fmt.Sprintf("dropped column %q from column order", id))
			continue
		}
		seenCol[id] = true
		out.ColumnOrder = append(out.ColumnOrder, id)
	}
	missingCols := make([]string, 0)
	for id := range out.Columns {
		if !seenCol[id] {
			missingCols = append(missingCols, id)
		}
	}
	sort.Strings(missingCols)
	for _, id := range missingCols {
		// uncategorized leads when it had to be restored
		if id == model.UncategorizedColumnID {
			out.ColumnOrder = append([]string{id}, out.ColumnOrder...)
		} else {
			out.ColumnOrder = append(out.ColumnOrder, id)
		}
		if id != model.UncategorizedColumnID || len(b.ColumnOrder) > 0 {
			fixes = append(fixes, fmt.Sprintf("added column %q to column order", id))
		}
	}

	// Placement: every evidence id in exactly one column
	placed := map[string]bool{}
	for _, colID := range out.ColumnOrder {
		col := out.Columns[colID]
		ids := make([]string, 0, len(col.EvidenceIDs))
		for _, eid := range col.EvidenceIDs {
			if _, ok := out.Evidence[eid]; !ok || placed[eid] {
				fixes = append(fixes, fmt.Sprintf("dropped evidence %q from column %q", eid, colID))
				continue
			}
			placed[eid] = true
			ids = append(ids, eid)
		}
		col.EvidenceIDs = ids
		out.Columns[colID] = col
	}

	var orphans []string
	for id := range out.Evidence {
		if !placed[id] {
			orphans = append(orphans, id)
		}
	}
	if len(orphans) > 0 {
		sort.Strings(orphans)
		col := out.Columns[model.UncategorizedColumnID]
		col.EvidenceIDs = append(col.EvidenceIDs, orphans...)
		out.Columns[model.UncategorizedColumnID] = col
		fixes = append(fixes, fmt.Sprintf("placed %d unplaced evidence items in uncategorized", len(orphans)))
	}
	return out, fixes
}

// sanitizeEvidence coerces enums and sets; links are filtered when allegations is non-nil
func sanitizeEvidence(item model.EvidenceItem, allegations map[string]bool) model.EvidenceItem {
	item.Type = model.ParseEvidenceType(string(item.Type))
	item.ValidationStatus = model.ParseValidationStatus(string(item.ValidationStatus))
	item.Tags = dedupeStrings(item.Tags)

	links := dedupeStrings(item.LinkedAllegationIDs)
	if allegations != nil {
		kept := links[:0]
		for _, id := range links {
			if allegations[id] {
				kept = append(kept, id)
			}
		}
		links = kept
	}
	item.LinkedAllegationIDs = links

	if item.Attachments == nil {
		item.Attachments = []model.Attachment{}
	}
	return item
}

func columnTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Untitled"
	}
	return title
}

// dedupeStrings trims, drops empties and duplicates, and never returns nil
func dedupeStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func indexOf(values []string, id string) int {
	for i, v := range values {
		if v == id {
			return i
		}
	}
	return -1
}

func removeAt(values []string, i int) []string {
	out := make([]string, 0, len(values)-1)
	out = append(out, values[:i]...)
	return append(out, values[i+1:]...)
}

func insertAt(values []string, i int, id string) []string {
	if i < 0 {
		i = 0
	}
	if i > len(values) {
		i = len(values)
	}
	out := make([]string, 0, len(values)+1)
	out = append(out, values[:i]...)
	out = append(out, id)
	return append(out, values[i:]...)
}
