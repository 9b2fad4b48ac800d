package util

// RNG is the linear-congruential generator used for every seed-dependent
// decision in the pipeline (initial placement, annealing moves, random
// draws from cell pools). Its exact update rule is part of the
// determinism contract: same seed, same netlist, same bitstream.
type RNG struct {
	state uint64
}

const (
	rngModulus    = 2147483647 // 2^31 - 1
	rngMultiplier = 48271
)

// NewRNG creates a generator seeded with seed. A seed of 0 is illegal.
func NewRNG(seed uint64) *RNG {
	if seed == 0 {
		panic("util: RNG seed must be nonzero")
	}
	return &RNG{state: seed % rngModulus}
}

// Next returns the next value in 0..rngModulus-1 and advances the state.
func (r *RNG) Next() uint32 {
	r.state = (rngMultiplier * r.state) % rngModulus
	return uint32(r.state)
}

// Intn returns a uniformly distributed integer in [lo, hi], inclusive,
// via rejection sampling so the distribution stays exactly uniform
// regardless of how (hi-lo+1) divides the modulus.
func (r *RNG) Intn(lo, hi int) int {
	if hi < lo {
		panic("util: RNG.Intn requires hi >= lo")
	}
	d := uint32(hi - lo + 1)
	k := rngModulus / d
	for {
		x := r.Next()
		if x >= k*d {
			continue
		}
		return lo + int(x%d)
	}
}

// Float64 returns a uniformly distributed value in [min, max].
func (r *RNG) Float64(min, max float64) float64 {
	if min == max {
		return min
	}
	x := r.Next()
	d := max - min
	return min + d*float64(x)/float64(rngModulus-1)
}

// Pick returns a uniformly random element of a nonempty slice.
func Pick[T any](r *RNG, items []T) T {
	return items[r.Intn(0, len(items)-1)]
}
