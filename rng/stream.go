// Package rng provides independent per-particle random number streams.
package rng

import (
	"math/rand/v2"
)

// golden is the 64-bit golden ratio constant used to decorrelate stream
// seeds.
const golden = 0x9e3779b97f4a7c15

// A Stream is an independent random number sequence owned by exactly one
// particle at a time. A Stream is not safe for concurrent use.
type Stream struct {
	id  uint64
	rnd *rand.Rand
}

// NewStream creates the stream with the given id for a run seeded with
// seed. Equal (seed, id) pairs always produce equal sequences.
func NewStream(seed, id uint64) *Stream {
	return &Stream{
		id:  id,
		rnd: rand.New(rand.NewPCG(seed, mix(id))),
	}
}

// ID returns the stream id.
func (s *Stream) ID() uint64 {
	return s.id
}

// Ran returns a uniform deviate in (0, 1].
func (s *Stream) Ran() float64 {
	return 1.0 - s.rnd.Float64()
}

// Spawn derives a new stream from the current state of s. The child
// sequence is independent of the parent's subsequent draws.
func (s *Stream) Spawn() *Stream {
	return &Stream{
		id:  s.id,
		rnd: rand.New(rand.NewPCG(s.rnd.Uint64(), s.rnd.Uint64())),
	}
}

// mix is the splitmix64 finalizer.
func mix(x uint64) uint64 {
	x += golden
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
