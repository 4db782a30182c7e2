package vscroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func records(start int, keys ...any) []record {
	recs := make([]record, len(keys))
	for i, key := range keys {
		recs[i] = record{index: start + i, key: key}
	}
	return recs
}

func TestDiffRecords(t *testing.T) {
	tests := []struct {
		name    string
		prev    []record
		next    []record
		sources []int
		removed []int
		changes diffChanges
	}{
		{
			name:    "empty",
			sources: []int{},
		},
		{
			name:    "unchanged",
			prev:    records(0, "a", "b", "c"),
			next:    records(0, "a", "b", "c"),
			sources: []int{0, 1, 2},
		},
		{
			name:    "insert all",
			next:    records(0, "a", "b"),
			sources: []int{-1, -1},
			changes: diffChanges{Inserted: 2},
		},
		{
			name:    "remove all",
			prev:    records(0, "a", "b"),
			sources: []int{},
			removed: []int{0, 1},
			changes: diffChanges{Removed: 2},
		},
		{
			name:    "scroll forward",
			prev:    records(0, 0, 1, 2, 3),
			next:    records(2, 2, 3, 4, 5),
			sources: []int{2, 3, -1, -1},
			removed: []int{0, 1},
			changes: diffChanges{Inserted: 2, Removed: 2},
		},
		{
			name:    "swap",
			prev:    records(0, "a", "b"),
			next:    records(0, "b", "a"),
			sources: []int{1, 0},
			changes: diffChanges{Moved: 2},
		},
		{
			name:    "insert at front shifts items",
			prev:    records(0, "a", "b"),
			next:    records(0, "x", "a", "b"),
			sources: []int{-1, 0, 1},
			changes: diffChanges{Inserted: 1, Moved: 2},
		},
		{
			name:    "duplicates keep their position",
			prev:    records(0, 1, 2, 1),
			next:    records(0, 1, 3, 1),
			sources: []int{0, -1, 2},
			removed: []int{1},
			changes: diffChanges{Inserted: 1, Removed: 1},
		},
		{
			name:    "duplicates match the earliest unused record",
			prev:    records(0, 1, 3, 1),
			next:    records(0, 3, 1, 1),
			sources: []int{1, 0, 2},
			changes: diffChanges{Moved: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sources, removed, changes := diffRecords(tt.prev, tt.next)
			assert.Equal(t, tt.sources, sources)
			assert.Equal(t, tt.removed, removed)
			assert.Equal(t, tt.changes, changes)
		})
	}
}

func TestIdentityKey(t *testing.T) {
	assert.Equal(t, "a", identityKey[string](nil, 3, "a"))
	assert.Equal(t, positionKey{index: 3}, identityKey[[]int](nil, 3, []int{1}))
	assert.Equal(t, 7, identityKey(func(_ int, s []int) any { return s[0] }, 3, []int{7}))
	assert.Nil(t, identityKey[any](nil, 0, nil))

	type tagged struct {
		Name  string
		Extra any
	}
	assert.Equal(t, positionKey{index: 2}, identityKey[tagged](nil, 2, tagged{Name: "a", Extra: []int{1}}))
	assert.Equal(t, tagged{Name: "a", Extra: 1}, identityKey[tagged](nil, 2, tagged{Name: "a", Extra: 1}))
}
