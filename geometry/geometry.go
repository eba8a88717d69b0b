// Package geometry provides the geometries particles are tracked through.
package geometry

import (
	"math"

	"github.com/profugus/mctransport/transport"
)

// Condition is the boundary condition of an outer face.
type Condition int

// The supported boundary conditions.
const (
	Vacuum Condition = iota
	Reflecting
)

// Face identifies a face of a cell.
type Face int

// The six axis-aligned faces.
const (
	XLow Face = iota
	XHigh
	YLow
	YHigh
	ZLow
	ZHigh
	noFace Face = -1
)

func (f Face) axis() int {
	return int(f) / 2
}

// State is the geometric state of one particle.
type State struct {
	Pos  transport.Vector
	Dir  transport.Vector
	Cell int

	face     Face
	dist     float64
	boundary transport.BoundaryState
}

func mustState(s transport.GeoState) *State {
	st, ok := s.(*State)
	if !ok {
		panic("geometric state not created by this package")
	}

	return st
}

func normalize(v transport.Vector) transport.Vector {
	n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if n == 0 {
		panic("zero direction")
	}

	return transport.Vector{v[0] / n, v[1] / n, v[2] / n}
}

// rotate turns dir by the polar cosine costheta and azimuth phi.
func rotate(dir transport.Vector, costheta, phi float64) transport.Vector {
	u, v, w := dir[0], dir[1], dir[2]

	costheta = math.Max(-1, math.Min(1, costheta))
	sintheta := math.Sqrt(1 - costheta*costheta)
	cosphi, sinphi := math.Cos(phi), math.Sin(phi)

	a := math.Sqrt(math.Max(0, 1-w*w))
	if a < 1e-6 {
		sign := 1.0
		if w < 0 {
			sign = -1
		}

		return normalize(transport.Vector{
			sintheta * cosphi,
			sintheta * sinphi,
			sign * costheta,
		})
	}

	return normalize(transport.Vector{
		u*costheta + (u*w*cosphi-v*sinphi)*sintheta/a,
		v*costheta + (v*w*cosphi+u*sinphi)*sintheta/a,
		w*costheta - a*cosphi*sintheta,
	})
}

// Isotropic maps two uniform deviates to a direction uniformly distributed
// on the unit sphere.
func Isotropic(r1, r2 float64) transport.Vector {
	w := 1 - 2*r1
	phi := 2 * math.Pi * r2
	s := math.Sqrt(math.Max(0, 1-w*w))

	return transport.Vector{s * math.Cos(phi), s * math.Sin(phi), w}
}
