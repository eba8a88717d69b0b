package transport

// BoundaryState is the classification of a particle sitting on a surface.
type BoundaryState int

// The possible surface classifications.
const (
	Inside BoundaryState = iota
	Outside
	Reflect
)

func (s BoundaryState) String() string {
	switch s {
	case Inside:
		return "Inside"
	case Outside:
		return "Outside"
	case Reflect:
		return "Reflect"
	default:
		return "Unknown"
	}
}

// Geometry tracks particles through the problem domain. All methods may be
// called concurrently for different states.
type Geometry interface {
	// Initialize creates the state of a particle at r moving along omega.
	Initialize(r, omega Vector) GeoState

	// Clone returns an independent copy of s.
	Clone(s GeoState) GeoState

	// DistanceToBoundary returns the distance to the next surface along the
	// current direction.
	DistanceToBoundary(s GeoState) float64

	// MoveToSurface moves the particle to the surface found by the last
	// DistanceToBoundary call.
	MoveToSurface(s GeoState)

	// MoveToPoint moves the particle d along its current direction.
	MoveToPoint(d float64, s GeoState)

	// BoundaryState classifies the surface the particle sits on.
	BoundaryState(s GeoState) BoundaryState

	// Reflect reflects the direction about the current surface. It returns
	// false if the particle is not on a reflecting surface.
	Reflect(s GeoState) bool

	// Matid returns the material of the region the particle is in.
	Matid(s GeoState) int

	// Position and Direction report the particle location and heading.
	Position(s GeoState) Vector
	Direction(s GeoState) Vector

	// ChangeDirection rotates the direction by polar cosine costheta and
	// azimuth phi relative to the current direction.
	ChangeDirection(costheta, phi float64, s GeoState)
}

// Physics samples particle interactions.
type Physics interface {
	// TotalXS returns the macroscopic total cross section seen by p.
	TotalXS(p *Particle) float64

	// Collide samples the outcome of a collision. It may change the weight
	// and direction of p, kill it, or push secondaries into bank.
	Collide(p *Particle, e Event, bank *Bank)
}

// VarianceReduction adjusts particle weights at surfaces and collisions.
// Implementations may change weights and push to the bank but never change
// the event tag.
type VarianceReduction interface {
	PostSurface(p *Particle, e Event, bank *Bank)
	PostCollision(p *Particle, e Event, bank *Bank)
}

// Tallier accumulates estimators. Both methods are called concurrently from
// many slots.
type Tallier interface {
	PathLength(step float64, p *Particle)

	// EndHistory is called once per source history, after every secondary
	// it banked has been transported in the same slot.
	EndHistory(p *Particle)
}

// Source supplies the particles that start new histories.
type Source interface {
	// NumToTransport returns the number of histories to run.
	NumToTransport() int64

	// GetParticle returns the particle that starts history i. It is called
	// concurrently with distinct indices.
	GetParticle(i int64) Particle
}
