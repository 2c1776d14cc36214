// Package persistence implements the Sloan map (the product of a number's digits)
// and the search for the base in which a number has the highest multiplicative
// persistence.
package persistence

// DigitProduct applies the Sloan map once: the product of the digits of v in base.
// The empty product is 1, so DigitProduct(0, base) == 1. The product never exceeds v.
func DigitProduct(v, base uint64) uint64 {
	out := uint64(1)
	for v > 0 {
		out *= v % base
		v /= base
	}
	return out
}

// Digits returns the digits of v in base, most significant first.
func Digits(v, base uint64) []uint64 {
	var out []uint64
	for v > 0 {
		out = append(out, v%base)
		v /= base
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Persistence counts how many times the Sloan map must be applied to bring v
// below base. It is 0 when v < base already. A zero digit collapses the product
// to 0, which ends the count on the following check.
func Persistence(v, base uint64) int {
	steps := 0
	for v >= base {
		v = DigitProduct(v, base)
		steps++
	}
	return steps
}
