package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks field ranges and the references between sections.
func (p *Problem) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	materials := make(map[int]string, len(p.Material))
	for name, m := range p.Material {
		if other, ok := materials[m.ID]; ok {
			return fmt.Errorf("%w: materials %q and %q share id %d",
				ErrInvalidConfig, other, name, m.ID)
		}

		materials[m.ID] = name
	}

	switch p.Geometry.Type {
	case "slab":
		if err := p.validateSlab(materials); err != nil {
			return err
		}
	case "infinite":
		if _, ok := materials[p.Geometry.Matid]; !ok {
			return fmt.Errorf("%w: infinite medium uses undefined material %d",
				ErrInvalidConfig, p.Geometry.Matid)
		}
	}

	if p.Variance.Type == "roulette" && p.Variance.Survival <= p.Variance.Cutoff {
		return fmt.Errorf("%w: survival weight %g must exceed cutoff %g",
			ErrInvalidConfig, p.Variance.Survival, p.Variance.Cutoff)
	}

	if p.Splits() && !p.Problem.Secondaries {
		return fmt.Errorf("%w: importance splitting requires secondaries = true",
			ErrInvalidConfig)
	}

	return nil
}

func (p *Problem) validateSlab(materials map[int]string) error {
	g := p.Geometry

	if len(g.Plane) < 2 {
		return fmt.Errorf("%w: slab needs at least 2 planes, got %d",
			ErrInvalidConfig, len(g.Plane))
	}

	if len(g.Cell) != len(g.Plane)-1 {
		return fmt.Errorf("%w: slab with %d cells got %d cell materials",
			ErrInvalidConfig, len(g.Plane)-1, len(g.Cell))
	}

	for i := 1; i < len(g.Plane); i++ {
		if g.Plane[i] <= g.Plane[i-1] {
			return fmt.Errorf("%w: planes must increase, got %g after %g",
				ErrInvalidConfig, g.Plane[i], g.Plane[i-1])
		}
	}

	for i, id := range g.Cell {
		if _, ok := materials[id]; !ok {
			return fmt.Errorf("%w: cell %d uses undefined material %d",
				ErrInvalidConfig, i, id)
		}
	}

	if g.YHi <= g.YLo || g.ZHi <= g.ZLo {
		return fmt.Errorf("%w: slab has an empty transverse extent",
			ErrInvalidConfig)
	}

	s := p.Source
	if s.IsZero() {
		return nil
	}

	xLo, xHi := g.Plane[0], g.Plane[len(g.Plane)-1]
	if s.XLo < xLo || s.XHi > xHi ||
		s.YLo < g.YLo || s.YHi > g.YHi ||
		s.ZLo < g.ZLo || s.ZHi > g.ZHi {
		return fmt.Errorf("%w: source box lies outside the slab",
			ErrInvalidConfig)
	}

	return nil
}
