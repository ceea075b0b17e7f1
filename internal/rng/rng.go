// Package rng provides the deterministic random source threaded through
// every transformation pass.
package rng

import "math/rand"

// Source is the randomness a pass may draw. Implementations must be
// deterministic for a given seed.
type Source interface {
	// NextInt returns a value in [0, n). n must be positive.
	NextInt(n int) int
	// NextPositiveInt returns a value in [1, n]; n must be positive.
	NextPositiveInt(n int) int
	NextBool() bool
	// Percent reports true with probability p/100.
	Percent(p int) bool
	// Range returns a value in [lo, hi].
	Range(lo, hi int) int
}

// Rand is the math/rand backed Source.
type Rand struct {
	*rand.Rand
}

// New returns a Rand seeded with seed.
func New(seed int64) *Rand {
	return &Rand{Rand: rand.New(rand.NewSource(seed))}
}

func (r *Rand) NextInt(n int) int {
	return r.Intn(n)
}

func (r *Rand) NextPositiveInt(n int) int {
	return r.Intn(n) + 1
}

func (r *Rand) NextBool() bool {
	return r.Intn(2) == 0
}

func (r *Rand) Percent(p int) bool {
	if p <= 0 {
		return false
	}
	return r.Intn(100) < p
}

func (r *Rand) Range(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// Fixed replays a fixed sequence of values; NextInt reduces each value
// modulo n. Tests use it to force a particular choice.
type Fixed struct {
	Values []int
	pos    int
}

func (f *Fixed) next() int {
	if len(f.Values) == 0 {
		return 0
	}
	v := f.Values[f.pos%len(f.Values)]
	f.pos++
	if v < 0 {
		v = -v
	}
	return v
}

func (f *Fixed) NextInt(n int) int         { return f.next() % n }
func (f *Fixed) NextPositiveInt(n int) int { return f.next()%n + 1 }
func (f *Fixed) NextBool() bool            { return f.next()%2 == 0 }
func (f *Fixed) Percent(p int) bool        { return f.next()%100 < p }

func (f *Fixed) Range(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + f.next()%(hi-lo+1)
}
