// Package simulation assembles a configured problem into a runnable
// transport simulation with its recorder and monitor.
package simulation

import (
	"log"
	"log/slog"

	"github.com/profugus/mctransport/config"
	"github.com/profugus/mctransport/datarecording"
	"github.com/profugus/mctransport/monitoring"
	"github.com/profugus/mctransport/tally"
	"github.com/profugus/mctransport/tracing"
	"github.com/profugus/mctransport/transport"
)

// Result is the outcome of a run.
type Result struct {
	Summary transport.Summary
	Flux    []tally.Result
}

// A Simulation owns the transporter of a problem and the services attached
// to it.
type Simulation struct {
	id      string
	problem *config.Problem
	logger  *slog.Logger

	transporter *transport.Transporter
	flux        *tally.Flux

	dataRecorder datarecording.DataRecorder
	tracer       *tracing.DBTracer
	counter      *tracing.RoundCountTracer
	monitor      *monitoring.Monitor
	monitorURL   string
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Transporter returns the transporter of the problem.
func (s *Simulation) Transporter() *transport.Transporter {
	return s.transporter
}

// DataRecorder returns the recorder, or nil if recording is disabled.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// Tracer returns the database tracer, or nil if recording is disabled.
func (s *Simulation) Tracer() *tracing.DBTracer {
	return s.tracer
}

// RoundCounter returns the in-memory round totals.
func (s *Simulation) RoundCounter() *tracing.RoundCountTracer {
	return s.counter
}

// Monitor returns the monitor, or nil if monitoring is disabled.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the address of the monitoring server.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// Run transports every history of the problem and returns the flux
// estimates.
func (s *Simulation) Run() Result {
	s.flux.Reset()

	summary := s.transporter.Transport()

	if ended := s.flux.HistoriesEnded(); ended != summary.Histories {
		log.Panicf("tally ended %d histories, transporter ran %d",
			ended, summary.Histories)
	}

	results := s.flux.Results(summary.Histories)

	if s.tracer != nil {
		s.tracer.AddFlux(results)
	}

	for _, r := range results {
		s.logger.Info("flux",
			"problem", s.problem.Problem.Name,
			"matid", r.Matid,
			"mean", r.Mean,
			"rel_err", r.RelErr,
		)
	}

	return Result{Summary: summary, Flux: results}
}

// Terminate closes the recorder.
func (s *Simulation) Terminate() error {
	if s.dataRecorder == nil {
		return nil
	}

	return s.dataRecorder.Close()
}
