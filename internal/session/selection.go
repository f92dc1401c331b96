// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"errors"
	"slices"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

// ErrUnknownRecord is returned when an ID does not name a cached record.
var ErrUnknownRecord = errors.New("unknown record")

// Selection is the set of record IDs the user marked for export.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Toggle adds id when absent and removes it when present. It returns whether
// id is selected afterwards.
func (s *Selection) Toggle(id string) bool {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.ids[id]
	return ok
}

// Remove drops id from the selection.
func (s *Selection) Remove(id string) {
	delete(s.ids, id)
}

// Len returns the number of selected IDs.
func (s *Selection) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	clear(s.ids)
}

// IDs returns the selected IDs in lexical order.
func (s *Selection) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Resolve returns the selected records in cache order. IDs that no longer
// name a cached record are skipped.
func (s *Selection) Resolve(c *Cache) []types.Record {
	var out []types.Record
	for _, r := range c.Records() {
		if s.Has(r.ID) {
			out = append(out, r)
		}
	}
	return out
}
