// Package source provides the sources that start particle histories.
package source

import (
	"fmt"

	"github.com/profugus/mctransport/geometry"
	"github.com/profugus/mctransport/rng"
	"github.com/profugus/mctransport/transport"
)

// UniformSource samples histories uniformly in a box with isotropic
// directions. History i always draws from random stream i, so a history is
// the same no matter which slot runs it.
type UniformSource struct {
	geometry  transport.Geometry
	lo, hi    transport.Vector
	histories int64
	seed      uint64
}

// NewUniformSource creates a source of n histories in the box [lo, hi].
func NewUniformSource(
	geo transport.Geometry,
	lo, hi transport.Vector,
	n int64,
	seed uint64,
) (*UniformSource, error) {
	if geo == nil {
		return nil, fmt.Errorf("source needs a geometry")
	}

	if n < 0 {
		return nil, fmt.Errorf("negative number of histories %d", n)
	}

	for axis := 0; axis < 3; axis++ {
		if hi[axis] < lo[axis] {
			return nil, fmt.Errorf("source box is inverted along axis %d", axis)
		}
	}

	s := &UniformSource{
		geometry:  geo,
		lo:        lo,
		hi:        hi,
		histories: n,
		seed:      seed,
	}

	return s, nil
}

// NumToTransport returns the number of histories of the source.
func (s *UniformSource) NumToTransport() int64 {
	return s.histories
}

// GetParticle samples the starting particle of history i.
func (s *UniformSource) GetParticle(i int64) transport.Particle {
	stream := rng.NewStream(s.seed, uint64(i))

	var r transport.Vector
	for axis := 0; axis < 3; axis++ {
		r[axis] = s.lo[axis] + stream.Ran()*(s.hi[axis]-s.lo[axis])
	}

	omega := geometry.Isotropic(stream.Ran(), stream.Ran())
	geo := s.geometry.Initialize(r, omega)

	return transport.Particle{
		Geo:     geo,
		Matid:   s.geometry.Matid(geo),
		Alive:   true,
		Weight:  1,
		RNG:     stream,
		History: i,
	}
}
