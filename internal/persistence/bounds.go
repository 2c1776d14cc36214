package persistence

import (
	"fmt"
	"math/bits"
)

// FindBase returns a candidate base in which n might have persistence p:
// ceil(n / (p+1)). It does not check that n is above Cutoff(p), so for small n
// the answer may be wrong. The search does not use it; the trajectory
// command reports it on request.
func FindBase(n uint64, p int) (uint64, error) {
	if p < 0 {
		return 0, fmt.Errorf("persistence %d must not be negative", p)
	}
	d := uint64(p) + 1
	base := n / d
	if n%d != 0 {
		base++
	}
	return base, nil
}

// Cutoff returns (p+1)*((p+1)! - 1). Every n above it has persistence at least p
// in some base. It returns ErrOverflow once the value leaves uint64.
func Cutoff(p int) (uint64, error) {
	if p < 0 {
		return 0, fmt.Errorf("persistence %d must not be negative", p)
	}
	fact := uint64(1)
	for k := uint64(2); k <= uint64(p)+1; k++ {
		hi, lo := bits.Mul64(fact, k)
		if hi != 0 {
			return 0, fmt.Errorf("cutoff for persistence %d: %w", p, ErrOverflow)
		}
		fact = lo
	}
	hi, lo := bits.Mul64(uint64(p)+1, fact-1)
	if hi != 0 {
		return 0, fmt.Errorf("cutoff for persistence %d: %w", p, ErrOverflow)
	}
	return lo, nil
}
