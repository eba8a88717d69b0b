package geometry

import (
	"fmt"
	"math"
	"sort"

	"github.com/profugus/mctransport/transport"
)

// Slab is a box divided into cells by planes normal to x. Each cell holds
// one material. Every outer face has its own boundary condition.
type Slab struct {
	planes     []float64
	matids     []int
	lo, hi     transport.Vector
	conditions [6]Condition
}

// NewSlab creates a slab whose cell i spans [planes[i], planes[i+1]] and
// holds material matids[i]. The y and z extents are taken from lo and hi.
func NewSlab(
	planes []float64,
	matids []int,
	lo, hi transport.Vector,
	conditions [6]Condition,
) (*Slab, error) {
	if len(planes) < 2 {
		return nil, fmt.Errorf("slab needs at least 2 planes, got %d",
			len(planes))
	}

	if len(matids) != len(planes)-1 {
		return nil, fmt.Errorf("slab with %d cells got %d materials",
			len(planes)-1, len(matids))
	}

	for i := 1; i < len(planes); i++ {
		if planes[i] <= planes[i-1] {
			return nil, fmt.Errorf("planes must increase, got %g after %g",
				planes[i], planes[i-1])
		}
	}

	for axis := 1; axis < 3; axis++ {
		if hi[axis] <= lo[axis] {
			return nil, fmt.Errorf("empty extent along axis %d", axis)
		}
	}

	s := &Slab{
		planes:     append([]float64(nil), planes...),
		matids:     append([]int(nil), matids...),
		lo:         lo,
		hi:         hi,
		conditions: conditions,
	}
	s.lo[0] = planes[0]
	s.hi[0] = planes[len(planes)-1]

	return s, nil
}

// NumCells returns the number of cells.
func (g *Slab) NumCells() int {
	return len(g.matids)
}

// Bounds returns the corners of the box.
func (g *Slab) Bounds() (lo, hi transport.Vector) {
	return g.lo, g.hi
}

// Contains returns true if r is inside the box.
func (g *Slab) Contains(r transport.Vector) bool {
	for axis := 0; axis < 3; axis++ {
		if r[axis] < g.lo[axis] || r[axis] > g.hi[axis] {
			return false
		}
	}

	return true
}

// Initialize creates the state of a particle at r moving along omega. It
// panics if r is outside the slab.
func (g *Slab) Initialize(r, omega transport.Vector) transport.GeoState {
	if !g.Contains(r) {
		panic(fmt.Sprintf("point %v is outside the slab", r))
	}

	return &State{
		Pos:      r,
		Dir:      normalize(omega),
		Cell:     g.findCell(r[0]),
		face:     noFace,
		boundary: transport.Inside,
	}
}

// Clone copies the state.
func (g *Slab) Clone(s transport.GeoState) transport.GeoState {
	st := *mustState(s)
	return &st
}

func (g *Slab) findCell(x float64) int {
	c := sort.SearchFloat64s(g.planes, x)
	if c < len(g.planes) && g.planes[c] == x {
		c++
	}

	return min(max(c-1, 0), len(g.matids)-1)
}

// DistanceToBoundary returns the distance to the closest face of the
// current cell and remembers that face.
func (g *Slab) DistanceToBoundary(s transport.GeoState) float64 {
	st := mustState(s)

	st.dist = math.Inf(1)
	st.face = noFace

	lo := transport.Vector{g.planes[st.Cell], g.lo[1], g.lo[2]}
	hi := transport.Vector{g.planes[st.Cell+1], g.hi[1], g.hi[2]}

	for axis := 0; axis < 3; axis++ {
		var d float64
		var f Face

		switch {
		case st.Dir[axis] > 0:
			d = (hi[axis] - st.Pos[axis]) / st.Dir[axis]
			f = Face(2*axis + 1)
		case st.Dir[axis] < 0:
			d = (lo[axis] - st.Pos[axis]) / st.Dir[axis]
			f = Face(2 * axis)
		default:
			continue
		}

		d = math.Max(d, 0)
		if d < st.dist {
			st.dist = d
			st.face = f
		}
	}

	return st.dist
}

// MoveToSurface moves the particle onto the face found by the last
// DistanceToBoundary call and works out what lies beyond it.
func (g *Slab) MoveToSurface(s transport.GeoState) {
	st := mustState(s)
	if st.face == noFace {
		panic("no surface to move to")
	}

	for axis := 0; axis < 3; axis++ {
		st.Pos[axis] += st.dist * st.Dir[axis]
	}

	switch st.face {
	case XHigh:
		st.Pos[0] = g.planes[st.Cell+1]
		if st.Cell+1 < len(g.matids) {
			st.Cell++
			st.boundary = transport.Inside
			return
		}
	case XLow:
		st.Pos[0] = g.planes[st.Cell]
		if st.Cell > 0 {
			st.Cell--
			st.boundary = transport.Inside
			return
		}
	case YLow, ZLow:
		st.Pos[st.face.axis()] = g.lo[st.face.axis()]
	case YHigh, ZHigh:
		st.Pos[st.face.axis()] = g.hi[st.face.axis()]
	}

	st.boundary = transport.Outside
	if g.conditions[st.face] == Reflecting {
		st.boundary = transport.Reflect
	}
}

// MoveToPoint moves the particle d along its direction.
func (g *Slab) MoveToPoint(d float64, s transport.GeoState) {
	st := mustState(s)
	for axis := 0; axis < 3; axis++ {
		st.Pos[axis] += d * st.Dir[axis]
	}

	st.face = noFace
	st.boundary = transport.Inside
}

// BoundaryState reports what the particle found at the last surface.
func (g *Slab) BoundaryState(s transport.GeoState) transport.BoundaryState {
	return mustState(s).boundary
}

// Reflect mirrors the direction about the face the particle sits on.
func (g *Slab) Reflect(s transport.GeoState) bool {
	st := mustState(s)
	if st.boundary != transport.Reflect || st.face == noFace {
		return false
	}

	st.Dir[st.face.axis()] = -st.Dir[st.face.axis()]
	st.boundary = transport.Inside
	st.face = noFace

	return true
}

// Matid returns the material of the current cell.
func (g *Slab) Matid(s transport.GeoState) int {
	return g.matids[mustState(s).Cell]
}

// Position returns the particle location.
func (g *Slab) Position(s transport.GeoState) transport.Vector {
	return mustState(s).Pos
}

// Direction returns the particle direction.
func (g *Slab) Direction(s transport.GeoState) transport.Vector {
	return mustState(s).Dir
}

// ChangeDirection rotates the particle direction.
func (g *Slab) ChangeDirection(costheta, phi float64, s transport.GeoState) {
	st := mustState(s)
	st.Dir = rotate(st.Dir, costheta, phi)
}
