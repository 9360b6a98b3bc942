package scoring

// The sequencer produces the reproducible per-session item order. The same
// seed must yield the same permutation at collection time and at scoring
// time, so positional answers can be re-associated with item ids without ever
// persisting the shuffled order.

// Per-lane multipliers for the seed hash. Distinct odd constants keep the
// four lanes decorrelated so near-identical seeds diverge within a few
// characters.
const (
	laneMulA = 0x9E3779B1
	laneMulB = 0x85EBCA77
	laneMulC = 0xC2B2AE3D
	laneMulD = 0x27D4EB2F
)

// Lane initializers, used as-is for the empty seed. An empty seed is valid:
// it still drives a fixed, non-identity permutation.
const (
	laneInitA = 0x6A09E667
	laneInitB = 0xBB67AE85
	laneInitC = 0x3C6EF372
	laneInitD = 0xA54FF53A
)

// seedLanes derives four 32-bit generator lanes from a seed string. The hash
// is order-sensitive and position-weighted: each byte is scaled by its
// 1-based position before mixing, and every lane folds in its right
// neighbour, so "ab" and "ba" split immediately.
func seedLanes(seed string) (a, b, c, d uint32) {
	a, b, c, d = laneInitA, laneInitB, laneInitC, laneInitD
	for i := 0; i < len(seed); i++ {
		k := uint32(seed[i]) * uint32(i+1)
		a = (a ^ k) * laneMulA
		b = (b ^ k) * laneMulB
		c = (c ^ k) * laneMulC
		d = (d ^ k) * laneMulD
		a ^= b >> 13
		b ^= c >> 11
		c ^= d >> 17
		d ^= a >> 7
	}
	// Final avalanche, then force every lane odd. An all-zero state is a
	// fixed point of xorshift; odd lanes rule it out entirely.
	a = (a ^ (a >> 16)) | 1
	b = (b ^ (b >> 16)) | 1
	c = (c ^ (c >> 16)) | 1
	d = (d ^ (d >> 16)) | 1
	return a, b, c, d
}

// xorshift128 is Marsaglia's 128-bit xorshift generator. It is deliberately
// not cryptographic; it only has to be cheap, portable and fully determined
// by its seed.
type xorshift128 struct {
	x, y, z, w uint32
}

func (r *xorshift128) next() uint32 {
	t := r.x ^ (r.x << 11)
	r.x, r.y, r.z = r.y, r.z, r.w
	r.w = (r.w ^ (r.w >> 19)) ^ (t ^ (t >> 8))
	return r.w
}

// Permute returns a new slice holding items reordered by a Fisher-Yates
// shuffle driven entirely by the seed. It is a pure function: identical
// inputs give byte-identical order on every call, with no dependence on
// ambient randomness. The input slice is never modified.
func Permute[T any](items []T, seed string) []T {
	out := make([]T, len(items))
	copy(out, items)
	if len(out) < 2 {
		return out
	}
	a, b, c, d := seedLanes(seed)
	rng := xorshift128{x: a, y: b, z: c, w: d}
	for i := len(out) - 1; i > 0; i-- {
		j := int(rng.next() % uint32(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}
