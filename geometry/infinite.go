package geometry

import (
	"math"

	"github.com/profugus/mctransport/transport"
)

// Infinite is an unbounded homogeneous medium. A particle only reaches a
// surface if it streams an infinite distance, in which case it has left the
// problem.
type Infinite struct {
	matid int
}

// NewInfinite creates an infinite medium of the given material.
func NewInfinite(matid int) *Infinite {
	return &Infinite{matid: matid}
}

// Initialize creates the state of a particle at r moving along omega.
func (g *Infinite) Initialize(r, omega transport.Vector) transport.GeoState {
	return &State{
		Pos:      r,
		Dir:      normalize(omega),
		face:     noFace,
		boundary: transport.Inside,
	}
}

// Clone copies the state.
func (g *Infinite) Clone(s transport.GeoState) transport.GeoState {
	st := *mustState(s)
	return &st
}

// DistanceToBoundary is always infinite.
func (g *Infinite) DistanceToBoundary(s transport.GeoState) float64 {
	st := mustState(s)
	st.dist = math.Inf(1)

	return st.dist
}

// MoveToSurface sends the particle to infinity.
func (g *Infinite) MoveToSurface(s transport.GeoState) {
	st := mustState(s)
	for axis := 0; axis < 3; axis++ {
		if st.Dir[axis] != 0 {
			st.Pos[axis] = math.Copysign(math.Inf(1), st.Dir[axis])
		}
	}

	st.boundary = transport.Outside
}

// MoveToPoint moves the particle d along its direction.
func (g *Infinite) MoveToPoint(d float64, s transport.GeoState) {
	st := mustState(s)
	for axis := 0; axis < 3; axis++ {
		st.Pos[axis] += d * st.Dir[axis]
	}
}

// BoundaryState reports Outside only after the particle went to infinity.
func (g *Infinite) BoundaryState(s transport.GeoState) transport.BoundaryState {
	return mustState(s).boundary
}

// Reflect always fails; an infinite medium has no reflecting surface.
func (g *Infinite) Reflect(s transport.GeoState) bool {
	return false
}

// Matid returns the single material.
func (g *Infinite) Matid(s transport.GeoState) int {
	return g.matid
}

// Position returns the particle location.
func (g *Infinite) Position(s transport.GeoState) transport.Vector {
	return mustState(s).Pos
}

// Direction returns the particle direction.
func (g *Infinite) Direction(s transport.GeoState) transport.Vector {
	return mustState(s).Dir
}

// ChangeDirection rotates the particle direction.
func (g *Infinite) ChangeDirection(costheta, phi float64, s transport.GeoState) {
	st := mustState(s)
	st.Dir = rotate(st.Dir, costheta, phi)
}
