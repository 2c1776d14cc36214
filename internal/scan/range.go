// Package scan maps the persistence search over ranges of integers. It covers
// bulk scans of a half-open range and the incremental record-persistence
// sequence, and delegates per-integer work to a swappable Backend.
package scan

import (
	"fmt"
	"iter"
	"math/bits"

	"sloan/internal/persistence"
)

// Range is the half-open interval [Start, End).
type Range struct {
	Start uint64
	End   uint64
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Len returns the number of integers in the range.
func (r Range) Len() uint64 {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Validate rejects empty and inverted ranges.
func (r Range) Validate() error {
	if r.Start >= r.End {
		return &persistence.InvalidRangeError{Start: r.Start, End: r.End}
	}
	return nil
}

// Split yields consecutive sub-ranges of at most size integers covering r in
// ascending order. A size of 0 yields r whole.
func (r Range) Split(size uint64) iter.Seq[Range] {
	return func(yield func(Range) bool) {
		if r.Len() == 0 {
			return
		}
		if size == 0 || size >= r.Len() {
			yield(r)
			return
		}
		for start := r.Start; start < r.End; {
			end := r.End
			if r.End-start > size {
				end = start + size
			}
			if !yield(Range{Start: start, End: end}) {
				return
			}
			start = end
		}
	}
}

// blockAfter returns the size-wide block starting at start, failing instead of
// wrapping past the top of uint64.
func blockAfter(start, size uint64) (Range, error) {
	end, carry := bits.Add64(start, size, 0)
	if carry != 0 {
		return Range{}, fmt.Errorf("block starting at %d with size %d: %w", start, size, persistence.ErrOverflow)
	}
	return Range{Start: start, End: end}, nil
}
