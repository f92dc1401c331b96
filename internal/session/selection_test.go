// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/scholar-digest/pkg/types"
)

func TestToggleTwiceRestores(t *testing.T) {
	s := NewSelection()
	s.Toggle("keep")
	before := s.IDs()

	assert.True(t, s.Toggle("x"))
	assert.True(t, s.Has("x"))
	assert.False(t, s.Toggle("x"))
	assert.False(t, s.Has("x"))

	assert.Equal(t, before, s.IDs())
}

func TestSelectionClearAndRemove(t *testing.T) {
	s := NewSelection()
	s.Toggle("a")
	s.Toggle("b")
	s.Remove("a")
	assert.Equal(t, []string{"b"}, s.IDs())

	s.Clear()
	assert.Zero(t, s.Len())
}

func TestResolveFollowsCacheOrder(t *testing.T) {
	c := NewCache([]types.Record{
		rec("a", "A", 2018),
		rec("b", "B", 2021),
		rec("c", "C", 2015),
	})
	s := NewSelection()
	s.Toggle("c")
	s.Toggle("a")
	s.Toggle("gone")

	got := s.Resolve(c)
	assert.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, "C", got[1].Title)
}

func TestSameTitleRecordsSelectIndependently(t *testing.T) {
	c := NewCache([]types.Record{{Title: "Twin"}, {Title: "Twin"}})
	s := NewSelection()
	s.Toggle("#1")

	got := s.Resolve(c)
	assert.Len(t, got, 1)
	assert.Equal(t, "#1", got[0].ID)
}
