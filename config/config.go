// Package config loads problem descriptions from INI or YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/gcfg.v1"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for problem files with an unsupported
// extension.
var ErrUnknownFormat = errors.New("unknown problem file format")

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid problem")

// Problem is a complete fixed-source transport problem.
type Problem struct {
	Problem  ProblemSection              `gcfg:"problem" yaml:"problem"`
	Geometry GeometrySection             `gcfg:"geometry" yaml:"geometry"`
	Material map[string]*MaterialSection `gcfg:"material" yaml:"materials" validate:"min=1,dive,required"`
	Source   SourceSection               `gcfg:"source" yaml:"source"`
	Variance VarianceSection             `gcfg:"variance" yaml:"variance"`
}

// ProblemSection holds the run parameters.
type ProblemSection struct {
	Name            string `gcfg:"name" yaml:"name" validate:"required"`
	Histories       int64  `gcfg:"histories" yaml:"histories" validate:"gte=0"`
	BatchSize       int    `gcfg:"batch-size" yaml:"batch-size" validate:"gt=0"`
	Workers         int    `gcfg:"workers" yaml:"workers" validate:"gte=0"`
	Seed            uint64 `gcfg:"seed" yaml:"seed"`
	Secondaries     bool   `gcfg:"secondaries" yaml:"secondaries"`
	ImplicitCapture bool   `gcfg:"implicit-capture" yaml:"implicit-capture"`
}

// GeometrySection describes either a slab or an infinite medium. A slab has
// one cell between each pair of consecutive planes, and Cell lists the
// material id of every cell.
type GeometrySection struct {
	Type    string    `gcfg:"type" yaml:"type" validate:"oneof=slab infinite"`
	Plane   []float64 `gcfg:"plane" yaml:"planes"`
	Cell    []int     `gcfg:"cell" yaml:"cells"`
	Matid   int       `gcfg:"matid" yaml:"matid"`
	YLo     float64   `gcfg:"y-lo" yaml:"y-lo"`
	YHi     float64   `gcfg:"y-hi" yaml:"y-hi"`
	ZLo     float64   `gcfg:"z-lo" yaml:"z-lo"`
	ZHi     float64   `gcfg:"z-hi" yaml:"z-hi"`
	Reflect []string  `gcfg:"reflect" yaml:"reflect" validate:"dive,oneof=x-low x-high y-low y-high z-low z-high"`
}

// MaterialSection holds the one-group cross sections of a material.
// Importance is only used by surface splitting.
type MaterialSection struct {
	ID         int     `gcfg:"id" yaml:"id" validate:"gte=0"`
	SigmaT     float64 `gcfg:"sigma-t" yaml:"sigma-t" validate:"gte=0"`
	SigmaS     float64 `gcfg:"sigma-s" yaml:"sigma-s" validate:"gte=0,ltefield=SigmaT"`
	NuSigmaF   float64 `gcfg:"nu-sigma-f" yaml:"nu-sigma-f" validate:"gte=0"`
	Importance float64 `gcfg:"importance" yaml:"importance" validate:"gte=0"`
}

// SourceSection is the box particles are born in. An all-zero box means the
// whole slab.
type SourceSection struct {
	XLo float64 `gcfg:"x-lo" yaml:"x-lo"`
	XHi float64 `gcfg:"x-hi" yaml:"x-hi" validate:"gtefield=XLo"`
	YLo float64 `gcfg:"y-lo" yaml:"y-lo"`
	YHi float64 `gcfg:"y-hi" yaml:"y-hi" validate:"gtefield=YLo"`
	ZLo float64 `gcfg:"z-lo" yaml:"z-lo"`
	ZHi float64 `gcfg:"z-hi" yaml:"z-hi" validate:"gtefield=ZLo"`
}

// IsZero reports whether no box was given.
func (s SourceSection) IsZero() bool {
	return s == SourceSection{}
}

// VarianceSection selects the variance reduction.
type VarianceSection struct {
	Type     string  `gcfg:"type" yaml:"type" validate:"oneof=none roulette"`
	Cutoff   float64 `gcfg:"cutoff" yaml:"cutoff" validate:"gte=0"`
	Survival float64 `gcfg:"survival" yaml:"survival" validate:"gte=0"`
}

// Default returns a problem with every optional field set.
func Default() *Problem {
	return &Problem{
		Problem: ProblemSection{
			Name:      "problem",
			BatchSize: 1000,
			Seed:      1,
		},
		Geometry: GeometrySection{
			Type: "slab",
			YLo:  -1,
			YHi:  1,
			ZLo:  -1,
			ZHi:  1,
		},
		Variance: VarianceSection{
			Type:     "none",
			Cutoff:   0.25,
			Survival: 0.5,
		},
	}
}

// Load reads a problem file, overlays the environment, and validates the
// result. The format is chosen by extension.
func Load(path string) (*Problem, error) {
	p := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".cfg", ".gcfg":
		if err := gcfg.ReadFileInto(p, path); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, p); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	if err := p.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// MaterialsByID returns the materials keyed by their id.
func (p *Problem) MaterialsByID() map[int]*MaterialSection {
	m := make(map[int]*MaterialSection, len(p.Material))
	for _, mat := range p.Material {
		m[mat.ID] = mat
	}

	return m
}

// Splits reports whether the variance reduction splits particles at
// importance boundaries. Split children travel through the slot bank.
func (p *Problem) Splits() bool {
	if p.Variance.Type != "roulette" {
		return false
	}

	for _, m := range p.Material {
		if m.Importance > 0 {
			return true
		}
	}

	return false
}
