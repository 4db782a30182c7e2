package vscroll

import "reflect"

// record is one rendered item as seen by the differ: its absolute data index
// and identity key.
type record struct {
	index int
	key   any
}

// positionKey replaces identities that cannot be compared, which makes such
// items match by position only.
type positionKey struct {
	index int
}

// identityKey returns the key used to match item across snapshots. The
// comparability check looks at the dynamic value, so a struct whose interface
// field holds a slice falls back to its position as well.
func identityKey[T any](trackBy TrackByFunc[T], index int, item T) any {
	var key any = item
	if trackBy != nil {
		key = trackBy(index, item)
	}
	if key != nil && !reflect.ValueOf(key).Comparable() {
		return positionKey{index: index}
	}
	return key
}

// diffChanges summarizes the operations needed to turn one rendered slice
// into the next.
type diffChanges struct {
	Inserted int
	Removed  int
	Moved    int
}

// diffRecords matches next against prev. For every record of next, sources
// holds the position of the matched record of prev or -1 if it has to be
// inserted. removed lists the positions of prev that were not matched.
//
// Records are first matched at the same data index and identity, then to the
// earliest unmatched previous record with the same identity. Equal items at
// different indices therefore keep the views they had at their index.
func diffRecords(prev, next []record) (sources []int, removed []int, changes diffChanges) {
	sources = make([]int, len(next))
	used := make([]bool, len(prev))

	byIndex := make(map[int]int, len(prev))
	for i, rec := range prev {
		byIndex[rec.index] = i
	}
	for j, rec := range next {
		sources[j] = -1
		if i, ok := byIndex[rec.index]; ok && prev[i].key == rec.key {
			sources[j] = i
			used[i] = true
		}
	}

	byKey := make(map[any][]int, len(prev))
	for i, rec := range prev {
		if !used[i] {
			byKey[rec.key] = append(byKey[rec.key], i)
		}
	}
	for j, rec := range next {
		if sources[j] >= 0 {
			continue
		}
		candidates := byKey[rec.key]
		if len(candidates) == 0 {
			changes.Inserted++
			continue
		}
		i := candidates[0]
		byKey[rec.key] = candidates[1:]
		sources[j] = i
		used[i] = true
		changes.Moved++
	}

	for i := range prev {
		if !used[i] {
			removed = append(removed, i)
		}
	}
	changes.Removed = len(removed)
	return sources, removed, changes
}
