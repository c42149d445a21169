// Package random derives reproducible pseudo-random streams from a seed and
// an element index.
//
// Every array element that needs randomness derives its own [Stream] from
// (seed, index) instead of sharing a generator, so parallel evaluation order
// never changes the output. Streams are small values backed by a PCG
// generator from math/rand/v2 and never touch global random state.
//
// Both constructors discard the first generated value before returning. All
// callers rely on that warm-up draw, so it is part of the stream definition.
//
// # Usage
//
//	s := random.Derive(seed, uint32(i))
//	delay := s.UNorm()
//	pos := s.Float3()
package random

import (
	"math/rand/v2"

	"github.com/chewxy/math32"

	"github.com/matzehuels/stacksketch/pkg/xform"
)

const (
	// indexOffset keeps index 0 away from the all-zero state.
	indexOffset = 62

	golden = 0x9e3779b97f4a7c15
)

// Stream is an independent sequence of draws. The zero value is not useful;
// obtain streams from [Derive] or [New]. Not safe for concurrent use.
type Stream struct {
	pcg rand.PCG
}

// Derive returns the stream for element index under seed. Streams for
// different indices (fixed seed) and different seeds (fixed index) are
// independent.
func Derive(seed, index uint32) Stream {
	var s Stream
	key := uint64(seed)<<32 | uint64(index)
	s.pcg.Seed(splitmix64(key+golden), splitmix64(uint64(hash32(seed^(index+indexOffset)))))
	s.pcg.Uint64()
	return s
}

// New returns a single continuous stream seeded from seed alone. It is used
// where one sequential consumer owns all draws, such as the subdivision builder.
func New(seed uint32) Stream {
	var s Stream
	s.pcg.Seed(splitmix64(uint64(seed)), splitmix64(uint64(seed)^0xdeadbeef))
	s.pcg.Uint64()
	return s
}

// Uint64 returns the next raw 64-bit draw.
func (s *Stream) Uint64() uint64 { return s.pcg.Uint64() }

// UNorm returns a uniform float in [0, 1).
func (s *Stream) UNorm() float32 {
	return float32(s.pcg.Uint64()>>40) * (1.0 / (1 << 24))
}

// SNorm returns a uniform float in [-0.5, 0.5).
func (s *Stream) SNorm() float32 { return s.UNorm() - 0.5 }

// Range returns a uniform float in [lo, hi).
func (s *Stream) Range(lo, hi float32) float32 {
	return xform.Lerp(lo, hi, s.UNorm())
}

// RangePow returns lerp(lo, hi, pow(UNorm(), exp)). Exponents below 1 skew
// toward hi, exponents above 1 skew toward lo.
func (s *Stream) RangePow(lo, hi, exp float32) float32 {
	return xform.Lerp(lo, hi, math32.Pow(s.UNorm(), exp))
}

// RangePow3 is RangePow with a packed (min, max, exponent) triple.
func (s *Stream) RangePow3(r xform.Float3) float32 {
	return s.RangePow(r.X, r.Y, r.Z)
}

// IntRange returns a uniform integer in [lo, hi). It returns lo when hi <= lo.
func (s *Stream) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	n := uint64(hi - lo)
	return lo + int((s.pcg.Uint64()>>32)*n>>32)
}

// Float3 returns three UNorm draws (X, then Y, then Z).
func (s *Stream) Float3() xform.Float3 {
	x := s.UNorm()
	y := s.UNorm()
	z := s.UNorm()
	return xform.F3(x, y, z)
}

// hash32 is a murmur3-style finalizer.
func hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

func splitmix64(x uint64) uint64 {
	x += golden
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
