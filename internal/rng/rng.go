// Package rng produces secret numbers.
package rng

import (
	"math"
	"math/rand"
	"time"
)

// Source yields integers in an inclusive range.
type Source interface {
	Next(min, max int) int
}

// Generator is a Source backed by math/rand.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator. A zero seed seeds from the current time.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Next returns a uniformly distributed integer in [min, max]. Any range
// representable in int is accepted, including [math.MinInt, math.MaxInt].
func (g *Generator) Next(min, max int) int {
	if min > max {
		min, max = max, min
	}
	// Span in two's complement; zero means the full 64-bit range.
	span := uint64(max) - uint64(min) + 1
	switch {
	case span == 0:
		return int(g.rnd.Uint64())
	case span <= math.MaxInt64:
		return int(uint64(min) + uint64(g.rnd.Int63n(int64(span))))
	default:
		return int(uint64(min) + g.uniform(span))
	}
}

// uniform returns a value in [0, span) for spans above math.MaxInt64,
// rejecting the biased tail of the 64-bit space.
func (g *Generator) uniform(span uint64) uint64 {
	limit := math.MaxUint64 - math.MaxUint64%span
	for {
		if v := g.rnd.Uint64(); v < limit {
			return v % span
		}
	}
}
