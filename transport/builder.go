package transport

import (
	"log/slog"
)

// Builder can build transporters.
type Builder struct {
	geometry             Geometry
	physics              Physics
	varReduction         VarianceReduction
	tallier              Tallier
	source               Source
	batchSize            int
	numWorkers           int
	logger               *slog.Logger
	transportSecondaries bool
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		batchSize: 1000,
	}
}

// WithGeometry sets the geometry the particles move through.
func (b Builder) WithGeometry(g Geometry) Builder {
	b.geometry = g
	return b
}

// WithPhysics sets the physics that samples collisions.
func (b Builder) WithPhysics(p Physics) Builder {
	b.physics = p
	return b
}

// WithVarianceReduction sets the variance reduction applied at surfaces and
// collisions.
func (b Builder) WithVarianceReduction(vr VarianceReduction) Builder {
	b.varReduction = vr
	return b
}

// WithTallier sets the tallier that scores the histories.
func (b Builder) WithTallier(t Tallier) Builder {
	b.tallier = t
	return b
}

// WithSource sets the source of new histories.
func (b Builder) WithSource(s Source) Builder {
	b.source = s
	return b
}

// WithBatchSize sets the number of histories tracked at the same time.
func (b Builder) WithBatchSize(n int) Builder {
	b.batchSize = n
	return b
}

// WithNumWorkers sets the number of goroutines used per phase. Zero uses
// GOMAXPROCS.
func (b Builder) WithNumWorkers(n int) Builder {
	b.numWorkers = n
	return b
}

// WithLogger sets the logger of the transporter.
func (b Builder) WithLogger(l *slog.Logger) Builder {
	b.logger = l
	return b
}

// WithSecondaryTransport makes a slot continue with the secondaries banked by
// its history before it draws a new source particle.
func (b Builder) WithSecondaryTransport() Builder {
	b.transportSecondaries = true
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.geometry == nil {
		panic("geometry is not set")
	}

	if b.physics == nil {
		panic("physics is not set")
	}

	if b.varReduction == nil {
		panic("variance reduction is not set")
	}

	if b.tallier == nil {
		panic("tallier is not set")
	}

	if b.source == nil {
		panic("source is not set")
	}

	if b.batchSize <= 0 {
		panic("batch size must be positive")
	}

	if b.numWorkers < 0 {
		panic("number of workers cannot be negative")
	}
}

// Build creates a transporter with the given name.
func (b Builder) Build(name string) *Transporter {
	b.parametersMustBeValid()

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	t := &Transporter{
		name:                 name,
		geometry:             b.geometry,
		physics:              b.physics,
		varReduction:         b.varReduction,
		tallier:              b.tallier,
		source:               b.source,
		batchSize:            b.batchSize,
		pool:                 newWorkerPool(b.numWorkers),
		logger:               logger,
		transportSecondaries: b.transportSecondaries,
	}

	return t
}
