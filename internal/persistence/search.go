package persistence

import "math/bits"

// Result is the maximal persistence of Integer across bases and the first base
// (scanning upward from 2) that reaches it.
type Result struct {
	Integer     uint64
	Persistence int
	Base        uint64
}

// Search scans bases 2, 3, ... and returns the highest persistence of x and the
// smallest base achieving it.
//
// A number of the form kd in base b has persistence at most k, so once
// base*max >= x no remaining base can beat max and the scan stops.
// Every x has persistence at least 1 in base 2 by convention, so x < 2
// returns (1, 2).
func Search(x uint64) Result {
	maxPer, maxBase := 1, uint64(2)
	for base := uint64(2); below(base, maxPer, x); base++ {
		if per := Persistence(x, base); per > maxPer {
			maxPer, maxBase = per, base
		}
	}
	return Result{Integer: x, Persistence: maxPer, Base: maxBase}
}

// SearchAbove is the record-beating variant of Search. It only reports a base
// whose persistence is strictly greater than floor, and ok is false when no base
// beats floor. A floor of 0 or less places no constraint and behaves as Search.
func SearchAbove(x uint64, floor int) (Result, bool) {
	if floor <= 0 {
		return Search(x), true
	}
	maxPer, maxBase := 0, uint64(2)
	for base := uint64(2); below(base, max(floor, maxPer), x); base++ {
		per := Persistence(x, base)
		if per > floor && per > maxPer {
			maxPer, maxBase = per, base
		}
	}
	if maxPer <= floor {
		return Result{}, false
	}
	return Result{Integer: x, Persistence: maxPer, Base: maxBase}, true
}

// below reports base*per < x without wrapping. A product past 64 bits is
// larger than any x.
func below(base uint64, per int, x uint64) bool {
	hi, lo := bits.Mul64(base, uint64(per))
	return hi == 0 && lo < x
}
