package transport

import (
	"math"

	"github.com/profugus/mctransport/rng"
)

// Vector is a point or direction in three-dimensional space.
type Vector [3]float64

// GeoState is the geometric state of a particle. Its concrete type is owned
// by the Geometry that created it; the transporter never looks inside.
type GeoState interface{}

// A Particle is the mutable record of one in-flight history.
type Particle struct {
	Geo GeoState

	// DistMFP is the remaining path-length budget in mean free paths.
	DistMFP float64

	// Step is the physical length of the step chosen by the last
	// classification.
	Step float64

	Matid   int
	Alive   bool
	Weight  float64
	RNG     *rng.Stream
	History int64
}

// Kill marks the particle as dead.
func (p *Particle) Kill() {
	p.Alive = false
}

// SampleMFP draws a fresh exponentially distributed mfp budget from the
// particle's own stream.
func (p *Particle) SampleMFP() {
	p.DistMFP = -math.Log(p.RNG.Ran())
}

// A Bank holds secondary particles produced while processing one slot.
type Bank struct {
	particles []Particle
}

// Push adds a particle to the bank.
func (b *Bank) Push(p Particle) {
	b.particles = append(b.particles, p)
}

// Pop removes and returns the most recently pushed particle.
func (b *Bank) Pop() Particle {
	if len(b.particles) == 0 {
		panic("pop from empty bank")
	}

	n := len(b.particles) - 1
	p := b.particles[n]
	b.particles[n] = Particle{}
	b.particles = b.particles[:n]

	return p
}

// Len returns the number of banked particles.
func (b *Bank) Len() int {
	return len(b.particles)
}

// Empty returns true if the bank holds no particles.
func (b *Bank) Empty() bool {
	return len(b.particles) == 0
}

// Clear drops all banked particles.
func (b *Bank) Clear() {
	clear(b.particles)
	b.particles = b.particles[:0]
}
