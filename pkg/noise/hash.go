package noise

// Hash2 mixes a seed and a 2D lattice coordinate into a well-distributed
// 64-bit value (splitmix64 finalizer). Stable across platforms and releases.
func Hash2(seed int64, x, z int64) uint64 {
	h := uint64(seed)
	h ^= uint64(x) * 0x9e3779b97f4a7c15
	h ^= uint64(z) * 0xc2b2ae3d27d4eb4f
	h += 0x9e3779b97f4a7c15
	h = (h ^ (h >> 30)) * 0xbf58476d1ce4e5b9
	h = (h ^ (h >> 27)) * 0x94d049bb133111eb
	return h ^ (h >> 31)
}

// Unit maps a hash to [0, 1).
func Unit(h uint64) float64 {
	return float64(h>>11) / (1 << 53)
}

// FloorDiv divides rounding towards negative infinity.
func FloorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
