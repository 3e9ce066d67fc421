// Package randgen owns the process-global random source shared by the legacy
// and v2 transforms. Every random decision in either implementation reads
// this source, so resetting the seed immediately before an invocation
// guarantees both implementations observe the identical draw sequence. The
// consistency harness depends on that discipline; see Reset.
package randgen

import (
	"math/rand"
	"sync"
)

// Source is the draw interface transforms consume. The default source is a
// seeded math/rand generator; tests may install a scripted source via Swap.
type Source interface {
	Float64() float64
	Int63n(n int64) int64
	NormFloat64() float64
	Perm(n int) []int
}

type seededSource struct {
	rng *rand.Rand
}

func (s *seededSource) Float64() float64 { return s.rng.Float64() }

func (s *seededSource) Int63n(n int64) int64 { return s.rng.Int63n(n) }

func (s *seededSource) NormFloat64() float64 { return s.rng.NormFloat64() }

func (s *seededSource) Perm(n int) []int { return s.rng.Perm(n) }

var (
	mu     sync.Mutex
	active Source = &seededSource{rng: rand.New(rand.NewSource(0))}
)

// Reset reseeds the global source. Callers that need reproducible draws must
// call this immediately before the operation; any draw in between desynchronizes
// the sequence.
func Reset(seed int64) {
	mu.Lock()
	defer mu.Unlock()
	active = &seededSource{rng: rand.New(rand.NewSource(seed))}
}

// Swap installs src as the global source and returns a function restoring the
// previous one. Used by tests that script exact draw values.
func Swap(src Source) (restore func()) {
	mu.Lock()
	prev := active
	active = src
	mu.Unlock()
	return func() {
		mu.Lock()
		active = prev
		mu.Unlock()
	}
}

// Float64 draws from [0, 1).
func Float64() float64 {
	mu.Lock()
	defer mu.Unlock()
	return active.Float64()
}

// Intn draws a uniform integer from [0, n).
func Intn(n int) int {
	mu.Lock()
	defer mu.Unlock()
	return int(active.Int63n(int64(n)))
}

// Int63n draws a uniform int64 from [0, n).
func Int63n(n int64) int64 {
	mu.Lock()
	defer mu.Unlock()
	return active.Int63n(n)
}

// Uniform draws a uniform float from [lo, hi).
func Uniform(lo, hi float64) float64 {
	mu.Lock()
	defer mu.Unlock()
	return lo + (hi-lo)*active.Float64()
}

// NormFloat64 draws a standard normal value.
func NormFloat64() float64 {
	mu.Lock()
	defer mu.Unlock()
	return active.NormFloat64()
}

// Perm draws a random permutation of [0, n).
func Perm(n int) []int {
	mu.Lock()
	defer mu.Unlock()
	return active.Perm(n)
}

// Scripted is a Source that replays pre-recorded values. Integer draws pop
// from Ints, float draws from Floats; running out panics, which surfaces a
// test that consumed more randomness than it scripted.
type Scripted struct {
	Ints   []int64
	Floats []float64
}

func (s *Scripted) popInt() int64 {
	if len(s.Ints) == 0 {
		panic("randgen: scripted source exhausted integer draws")
	}
	v := s.Ints[0]
	s.Ints = s.Ints[1:]
	return v
}

func (s *Scripted) popFloat() float64 {
	if len(s.Floats) == 0 {
		panic("randgen: scripted source exhausted float draws")
	}
	v := s.Floats[0]
	s.Floats = s.Floats[1:]
	return v
}

func (s *Scripted) Float64() float64 { return s.popFloat() }

func (s *Scripted) Int63n(int64) int64 { return s.popInt() }

func (s *Scripted) NormFloat64() float64 { return s.popFloat() }

func (s *Scripted) Perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = int(s.popInt())
	}
	return p
}
