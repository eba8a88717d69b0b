package simulation

import (
	"fmt"
	"log/slog"

	"github.com/profugus/mctransport/config"
	"github.com/profugus/mctransport/datarecording"
	"github.com/profugus/mctransport/monitoring"
	"github.com/profugus/mctransport/tally"
	"github.com/profugus/mctransport/tracing"
	"github.com/profugus/mctransport/transport"
	"github.com/rs/xid"
)

// Builder can be used to build a simulation.
type Builder struct {
	problem        *config.Problem
	monitorOn      bool
	monitorPort    int
	recordOn       bool
	outputFileName string
	logger         *slog.Logger
}

// MakeBuilder creates a new builder. Recording is on and monitoring is off
// by default.
func MakeBuilder() Builder {
	return Builder{
		recordOn: true,
		logger:   slog.Default(),
	}
}

// WithProblem sets the problem to simulate.
func (b Builder) WithProblem(p *config.Problem) Builder {
	b.problem = p
	return b
}

// WithMonitoring starts a monitoring server with the simulation.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithoutRecording disables the round and result database.
func (b Builder) WithoutRecording() Builder {
	b.recordOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithLogger sets the logger passed to the transporter.
func (b Builder) WithLogger(logger *slog.Logger) Builder {
	b.logger = logger
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.problem == nil {
		panic("problem is not set")
	}

	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.recordOn && b.outputFileName != "" {
		panic("output file cannot be set when recording is disabled")
	}
}

// Build assembles the problem into a runnable simulation.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	s := &Simulation{
		id:      xid.New().String(),
		problem: b.problem,
		flux:    tally.NewFlux(),
		counter: tracing.NewRoundCountTracer(),
		logger:  b.logger,
	}

	if err := s.assemble(b.logger); err != nil {
		return nil, err
	}

	tracing.CollectTrace(s.transporter, s.counter)

	if b.recordOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "mctransport_" + s.id
		}

		recorder, err := datarecording.New(outputPath)
		if err != nil {
			return nil, fmt.Errorf("creating recorder: %w", err)
		}

		s.dataRecorder = recorder
		s.tracer = tracing.NewDBTracer(recorder)
		tracing.CollectTrace(s.transporter, s.tracer)
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterTransporter(s.transporter)
		s.monitorURL = s.monitor.StartServer()
	}

	return s, nil
}

func (s *Simulation) assemble(logger *slog.Logger) error {
	p := s.problem

	geo, err := buildGeometry(p)
	if err != nil {
		return err
	}

	phys, err := buildPhysics(p, geo)
	if err != nil {
		return err
	}

	vr, err := buildVarianceReduction(p, geo)
	if err != nil {
		return err
	}

	src, err := buildSource(p, geo)
	if err != nil {
		return err
	}

	builder := transport.MakeBuilder().
		WithGeometry(geo).
		WithPhysics(phys).
		WithVarianceReduction(vr).
		WithTallier(s.flux).
		WithSource(src).
		WithBatchSize(p.Problem.BatchSize).
		WithNumWorkers(p.Problem.Workers).
		WithLogger(logger)

	if p.Problem.Secondaries {
		builder = builder.WithSecondaryTransport()
	}

	s.transporter = builder.Build(p.Problem.Name)

	return nil
}
