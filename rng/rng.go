// Package rng provides splittable counter-based random streams.
//
// Every stream in a generation session derives from one master stream via
// Split(total, index): distinct (total, index) pairs select statistically
// independent PCG sequences, which is what makes a run reproducible for a
// fixed seed and worker layout. Changing the layout changes total, and with
// it every sub-stream.
package rng

import (
	"github.com/MichaelTJones/pcg"
)

// A Stream is a single pseudo-random sequence. Streams are cheap to copy but
// copies share generator state; each worker must own the Split result it was
// handed and never share it.
type Stream struct {
	seed uint64 // master seed of the family this stream was split from
	gen  *pcg.PCG32
}

// Master returns the root stream of a generation session.
func Master(seed uint64) Stream {
	return Stream{seed: seed, gen: pcg.NewPCG32().Seed(mix(seed, 0), 0)}
}

// Split derives the index-th of total disjoint sub-streams of the master this
// stream belongs to. The same (seed, total, index) always yields an identical
// stream; distinct indexes select distinct PCG sequences.
func (s Stream) Split(total, index uint64) Stream {
	return Stream{seed: s.seed, gen: pcg.NewPCG32().Seed(mix(s.seed, total), index)}
}

// Uniform draws from (0, 1].
func (s Stream) Uniform() float64 {
	return (float64(s.gen.Random()) + 1) / (1 << 32)
}

// UniformCO draws from [0, 1).
func (s Stream) UniformCO() float64 {
	return float64(s.gen.Random()) / (1 << 32)
}

// UInt32n draws uniformly from [0, n). n must be positive.
func (s Stream) UInt32n(n uint32) uint32 {
	return s.gen.Bounded(n)
}

// SplitMix64-style finalizer; strong bit diffusion so that nearby seeds and
// totals land in unrelated PCG states.
func mix(seed, total uint64) uint64 {
	x := seed ^ (total + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
