// Package physics samples one-group neutron interactions.
package physics

import (
	"fmt"
	"log"
	"math"

	"github.com/profugus/mctransport/geometry"
	"github.com/profugus/mctransport/transport"
)

// Material holds the one-group macroscopic cross sections of a material.
type Material struct {
	SigmaT   float64
	SigmaS   float64
	NuSigmaF float64
}

// SigmaA returns the absorption cross section.
func (m Material) SigmaA() float64 {
	return m.SigmaT - m.SigmaS
}

// Physics samples collisions in a set of materials indexed by matid.
type Physics struct {
	materials       map[int]Material
	geometry        transport.Geometry
	implicitCapture bool
}

// New creates the physics for the given materials. Scattering directions are
// applied through geometry.
func New(
	materials map[int]Material,
	geometry transport.Geometry,
) (*Physics, error) {
	if geometry == nil {
		return nil, fmt.Errorf("physics needs a geometry")
	}

	for id, m := range materials {
		if m.SigmaT < 0 || m.SigmaS < 0 || m.NuSigmaF < 0 {
			return nil, fmt.Errorf("material %d has negative cross sections", id)
		}

		if m.SigmaS > m.SigmaT {
			return nil, fmt.Errorf(
				"material %d scatters more than it interacts", id)
		}
	}

	p := &Physics{
		materials: make(map[int]Material, len(materials)),
		geometry:  geometry,
	}
	for id, m := range materials {
		p.materials[id] = m
	}

	return p, nil
}

// WithImplicitCapture makes collisions always scatter, carrying the
// absorption probability in the weight instead.
func (ph *Physics) WithImplicitCapture() *Physics {
	ph.implicitCapture = true
	return ph
}

func (ph *Physics) material(matid int) Material {
	m, ok := ph.materials[matid]
	if !ok {
		log.Panicf("unknown material %d", matid)
	}

	return m
}

// TotalXS returns the total cross section of the particle's material.
func (ph *Physics) TotalXS(p *transport.Particle) float64 {
	return ph.material(p.Matid).SigmaT
}

// Collide samples a collision. Absorption kills the particle and emits
// fission secondaries into the bank.
func (ph *Physics) Collide(
	p *transport.Particle,
	_ transport.Event,
	bank *transport.Bank,
) {
	m := ph.material(p.Matid)
	if m.SigmaT == 0 {
		log.Panicf("collision in void material %d", p.Matid)
	}

	if ph.implicitCapture {
		ph.fission(p, m, bank)
		p.Weight *= m.SigmaS / m.SigmaT
		ph.scatter(p)
		return
	}

	if p.RNG.Ran() <= m.SigmaS/m.SigmaT {
		ph.scatter(p)
		return
	}

	ph.fission(p, m, bank)
	p.Kill()
}

func (ph *Physics) scatter(p *transport.Particle) {
	costheta := 1 - 2*p.RNG.Ran()
	phi := 2 * math.Pi * p.RNG.Ran()
	ph.geometry.ChangeDirection(costheta, phi, p.Geo)
}

// fission banks floor(w*nuSigmaF/sigmaT + xi) secondaries at the collision
// site with isotropic directions and unit weight.
func (ph *Physics) fission(
	p *transport.Particle,
	m Material,
	bank *transport.Bank,
) {
	if m.NuSigmaF == 0 {
		return
	}

	n := int(p.Weight*m.NuSigmaF/m.SigmaT + p.RNG.Ran())
	r := ph.geometry.Position(p.Geo)

	for i := 0; i < n; i++ {
		child := *p
		child.RNG = p.RNG.Spawn()
		child.Weight = 1
		child.Alive = true
		omega := geometry.Isotropic(child.RNG.Ran(), child.RNG.Ran())
		child.Geo = ph.geometry.Initialize(r, omega)
		bank.Push(child)
	}
}
