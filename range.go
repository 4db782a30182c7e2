package vscroll

import "fmt"

// Range is a half-open interval [Start, End) of data indices.
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	return max(r.End-r.Start, 0)
}

// Contains reports whether index lies within the range.
func (r Range) Contains(index int) bool {
	return index >= r.Start && index < r.End
}

// ContainsRange reports whether other lies entirely within the range. An
// empty range is contained by every range.
func (r Range) ContainsRange(other Range) bool {
	if other.Start >= other.End {
		return true
	}
	return other.Start >= r.Start && other.End <= r.End
}

// Clamp limits the range to [0, length) keeping Start <= End.
func (r Range) Clamp(length int) Range {
	length = max(length, 0)
	end := min(max(r.End, 0), length)
	start := min(max(r.Start, 0), end)
	return Range{Start: start, End: end}
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

func rangesEqual(a, b Range) bool {
	return a.Start == b.Start && a.End == b.End
}
