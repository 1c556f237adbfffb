package blocksize

import "math/bits"

func isPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// floorPowerOfTwo returns the largest power of two <= v. v must be positive.
func floorPowerOfTwo(v int) int {
	return 1 << (bits.Len(uint(v)) - 1)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	return a / gcd(a, b) * b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func alignUp(v, align int) int {
	if r := v % align; r != 0 {
		return v + align - r
	}
	return v
}

func alignDown(v, align int) int {
	return v - v%align
}

// mulSaturate returns v*m, or limit when the product would exceed it.
func mulSaturate(v, m, limit int) int {
	if m <= 0 {
		return v
	}
	if v > limit/m {
		return limit
	}
	return v * m
}
