package simulation

import (
	"errors"
	"fmt"

	"github.com/profugus/mctransport/config"
	"github.com/profugus/mctransport/geometry"
	"github.com/profugus/mctransport/physics"
	"github.com/profugus/mctransport/source"
	"github.com/profugus/mctransport/transport"
	"github.com/profugus/mctransport/variance"
)

var faces = map[string]geometry.Face{
	"x-low":  geometry.XLow,
	"x-high": geometry.XHigh,
	"y-low":  geometry.YLow,
	"y-high": geometry.YHigh,
	"z-low":  geometry.ZLow,
	"z-high": geometry.ZHigh,
}

func buildGeometry(p *config.Problem) (transport.Geometry, error) {
	g := p.Geometry

	switch g.Type {
	case "infinite":
		return geometry.NewInfinite(g.Matid), nil
	case "slab":
		var conditions [6]geometry.Condition
		for _, name := range g.Reflect {
			face, ok := faces[name]
			if !ok {
				return nil, fmt.Errorf("unknown face %q", name)
			}

			conditions[face] = geometry.Reflecting
		}

		slab, err := geometry.NewSlab(
			g.Plane,
			g.Cell,
			transport.Vector{0, g.YLo, g.ZLo},
			transport.Vector{0, g.YHi, g.ZHi},
			conditions,
		)
		if err != nil {
			return nil, fmt.Errorf("building slab: %w", err)
		}

		return slab, nil
	default:
		return nil, fmt.Errorf("unknown geometry type %q", g.Type)
	}
}

func buildPhysics(
	p *config.Problem,
	geo transport.Geometry,
) (*physics.Physics, error) {
	materials := make(map[int]physics.Material, len(p.Material))
	for id, m := range p.MaterialsByID() {
		materials[id] = physics.Material{
			SigmaT:   m.SigmaT,
			SigmaS:   m.SigmaS,
			NuSigmaF: m.NuSigmaF,
		}
	}

	phys, err := physics.New(materials, geo)
	if err != nil {
		return nil, fmt.Errorf("building physics: %w", err)
	}

	if p.Problem.ImplicitCapture {
		phys.WithImplicitCapture()
	}

	return phys, nil
}

func buildVarianceReduction(
	p *config.Problem,
	geo transport.Geometry,
) (transport.VarianceReduction, error) {
	v := p.Variance

	switch v.Type {
	case "", "none":
		return variance.None{}, nil
	case "roulette":
		r, err := variance.NewRoulette(v.Cutoff, v.Survival)
		if err != nil {
			return nil, fmt.Errorf("building roulette: %w", err)
		}

		importances := make(map[int]float64)
		for id, m := range p.MaterialsByID() {
			if m.Importance > 0 {
				importances[id] = m.Importance
			}
		}

		if len(importances) > 0 {
			if !p.Problem.Secondaries {
				return nil, errors.New(
					"importance splitting requires secondary transport")
			}

			r.WithImportances(importances, geo)
		}

		return r, nil
	default:
		return nil, fmt.Errorf("unknown variance reduction %q", v.Type)
	}
}

func buildSource(
	p *config.Problem,
	geo transport.Geometry,
) (*source.UniformSource, error) {
	s := p.Source
	lo := transport.Vector{s.XLo, s.YLo, s.ZLo}
	hi := transport.Vector{s.XHi, s.YHi, s.ZHi}

	if slab, ok := geo.(*geometry.Slab); ok && s.IsZero() {
		lo, hi = slab.Bounds()
	}

	src, err := source.NewUniformSource(
		geo, lo, hi, p.Problem.Histories, p.Problem.Seed)
	if err != nil {
		return nil, fmt.Errorf("building source: %w", err)
	}

	return src, nil
}
