// Package variance implements variance-reduction games played at surfaces
// and collisions.
package variance

import (
	"fmt"

	"github.com/profugus/mctransport/transport"
)

// None plays no games.
type None struct{}

// PostSurface does nothing.
func (None) PostSurface(*transport.Particle, transport.Event, *transport.Bank) {}

// PostCollision does nothing.
func (None) PostCollision(*transport.Particle, transport.Event, *transport.Bank) {}

// Roulette plays Russian roulette on low-weight particles after collisions.
// If importances are given, particles entering a region are also split or
// rouletted toward the weight 1/importance of that region.
type Roulette struct {
	cutoff      float64
	survival    float64
	importances map[int]float64
	geometry    transport.Geometry
}

// NewRoulette creates a roulette game. Particles below cutoff survive with
// probability weight/survival and continue with the survival weight.
func NewRoulette(cutoff, survival float64) (*Roulette, error) {
	if cutoff < 0 || survival <= cutoff {
		return nil, fmt.Errorf(
			"survival weight %g must exceed cutoff %g", survival, cutoff)
	}

	return &Roulette{cutoff: cutoff, survival: survival}, nil
}

// WithImportances enables splitting at surfaces. The geometry copies the
// states of the split particles.
func (r *Roulette) WithImportances(
	importances map[int]float64,
	geometry transport.Geometry,
) *Roulette {
	r.importances = importances
	r.geometry = geometry

	return r
}

// PostCollision roulettes particles whose weight dropped below the cutoff.
func (r *Roulette) PostCollision(
	p *transport.Particle,
	_ transport.Event,
	_ *transport.Bank,
) {
	if !p.Alive || p.Weight >= r.cutoff {
		return
	}

	r.roulette(p, r.survival)
}

// PostSurface splits or roulettes the particle toward the target weight of
// the region it entered.
func (r *Roulette) PostSurface(
	p *transport.Particle,
	_ transport.Event,
	bank *transport.Bank,
) {
	if !p.Alive || r.importances == nil {
		return
	}

	importance, ok := r.importances[p.Matid]
	if !ok || importance <= 0 {
		return
	}

	target := 1 / importance

	switch {
	case p.Weight > 2*target:
		r.split(p, int(p.Weight/target), bank)
	case p.Weight < target/2:
		r.roulette(p, target)
	}
}

func (r *Roulette) roulette(p *transport.Particle, survival float64) {
	if p.RNG.Ran() <= p.Weight/survival {
		p.Weight = survival
		return
	}

	p.Kill()
}

func (r *Roulette) split(p *transport.Particle, n int, bank *transport.Bank) {
	if n < 2 {
		return
	}

	p.Weight /= float64(n)

	for i := 1; i < n; i++ {
		child := *p
		child.RNG = p.RNG.Spawn()
		child.Geo = r.geometry.Clone(p.Geo)
		bank.Push(child)
	}
}
