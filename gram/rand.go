package gram

import "math/rand/v2"

// Rand is the single funnel for all randomness in the engine. A given seed
// reproduces a full run, so long as every Field routes through the same
// *Rand instance (see BuildContext).
type Rand struct {
	src *rand.Rand
}

// NewRand returns a new, seeded Rand. Two Rand values seeded identically
// produce identical sequences.
func NewRand(seed uint64) *Rand {
	return &Rand{src: rand.New(rand.NewPCG(seed, seed+1))}
}

// Seed resets the generator to a fresh sequence derived from seed.
func (r *Rand) Seed(seed uint64) {
	r.src = rand.New(rand.NewPCG(seed, seed+1))
}

// Choice returns a uniformly random element of seq. seq must be non-empty.
func Choice[T any](r *Rand, seq []T) T {
	return seq[r.src.IntN(len(seq))]
}

// Maybe returns true with probability prob (default 0.5 when no argument is
// given, via MaybeDefault).
func (r *Rand) Maybe(prob float64) bool {
	return r.src.Float64() < prob
}

// MaybeDefault is Maybe(0.5).
func (r *Rand) MaybeDefault() bool {
	return r.Maybe(0.5)
}

// Int returns an integer in [a, b) — note the exclusive upper bound.
func (r *Rand) Int(a, b int64) int64 {
	if b <= a {
		return a
	}
	return a + r.src.Int64N(b-a)
}

// Float returns a float64 in [a, b).
func (r *Rand) Float(a, b float64) float64 {
	if b <= a {
		return a
	}
	return a + r.src.Float64()*(b-a)
}

// Data returns a string of n characters drawn uniformly, with replacement,
// from charset.
func (r *Rand) Data(n int, charset string) string {
	if n <= 0 || len(charset) == 0 {
		return ""
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = charset[r.src.IntN(len(charset))]
	}
	return string(out)
}
