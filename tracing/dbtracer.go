package tracing

import (
	"sync"
	"time"

	"github.com/profugus/mctransport/datarecording"
	"github.com/profugus/mctransport/tally"
	"github.com/profugus/mctransport/transport"
	"github.com/rs/xid"
)

const (
	roundTable   = "rounds"
	summaryTable = "summary"
	fluxTable    = "flux"
)

// RoundEntry is one row of the rounds table.
type RoundEntry struct {
	Run              string
	Transporter      string
	Round            int64
	Active           int
	Collisions       int
	Boundaries       int
	Closures         int
	Retired          int
	Remaining        int
	HistoriesStarted int64
	Seconds          float64
}

// SummaryEntry is one row of the summary table.
type SummaryEntry struct {
	Run              string
	Transporter      string
	Histories        int64
	Rounds           int64
	BatchSize        int
	Collisions       int64
	Escapes          int64
	Reflections      int64
	SurfaceCrossings int64
	Kills            int64
	Respawns         int64
	Secondaries      int64
	DroppedBanked    int64
	Seconds          float64
}

// FluxEntry is one row of the flux table.
type FluxEntry struct {
	Run    string
	Matid  int
	Mean   float64
	RelErr float64
}

// DBTracer stores round traces into a DataRecorder. Every DBTracer writes
// under its own run ID so several runs can share one database.
type DBTracer struct {
	lock     sync.Mutex
	backend  datarecording.DataRecorder
	runID    string
	now      func() time.Time
	started  map[string]time.Time
	runStart map[string]time.Time
}

// NewDBTracer creates the trace tables and returns a tracer writing to them.
func NewDBTracer(dataRecorder datarecording.DataRecorder) *DBTracer {
	dataRecorder.CreateTable(roundTable, RoundEntry{})
	dataRecorder.CreateTable(summaryTable, SummaryEntry{})
	dataRecorder.CreateTable(fluxTable, FluxEntry{})

	return &DBTracer{
		backend:  dataRecorder,
		runID:    xid.New().String(),
		now:      time.Now,
		started:  make(map[string]time.Time),
		runStart: make(map[string]time.Time),
	}
}

// RunID returns the ID written into every row.
func (t *DBTracer) RunID() string {
	return t.runID
}

// StartRound records the wall-clock start of a round.
func (t *DBTracer) StartRound(domain string, _ transport.RoundStats) {
	t.lock.Lock()
	defer t.lock.Unlock()

	now := t.now()
	t.started[domain] = now

	if _, ok := t.runStart[domain]; !ok {
		t.runStart[domain] = now
	}
}

// EndRound writes a row for the finished round.
func (t *DBTracer) EndRound(domain string, stats transport.RoundStats) {
	t.lock.Lock()
	defer t.lock.Unlock()

	var seconds float64
	if start, ok := t.started[domain]; ok {
		seconds = t.now().Sub(start).Seconds()
		delete(t.started, domain)
	}

	t.backend.InsertData(roundTable, RoundEntry{
		Run:              t.runID,
		Transporter:      domain,
		Round:            stats.Round,
		Active:           stats.Active,
		Collisions:       stats.Collisions,
		Boundaries:       stats.Boundaries,
		Closures:         stats.Closures,
		Retired:          stats.Retired,
		Remaining:        stats.Remaining,
		HistoriesStarted: stats.HistoriesStarted,
		Seconds:          seconds,
	})
}

// EndTransport writes the summary row and flushes the backend.
func (t *DBTracer) EndTransport(domain string, summary transport.Summary) {
	t.lock.Lock()
	defer t.lock.Unlock()

	var seconds float64
	if start, ok := t.runStart[domain]; ok {
		seconds = t.now().Sub(start).Seconds()
		delete(t.runStart, domain)
	}

	d := summary.Diagnostics
	t.backend.InsertData(summaryTable, SummaryEntry{
		Run:              t.runID,
		Transporter:      domain,
		Histories:        summary.Histories,
		Rounds:           summary.Rounds,
		BatchSize:        summary.BatchSize,
		Collisions:       d.Collisions,
		Escapes:          d.Escapes,
		Reflections:      d.Reflections,
		SurfaceCrossings: d.SurfaceCrossings,
		Kills:            d.Kills,
		Respawns:         d.Respawns,
		Secondaries:      d.Secondaries,
		DroppedBanked:    d.DroppedBanked,
		Seconds:          seconds,
	})

	t.backend.Flush()
}

// AddFlux writes tally results into the flux table.
func (t *DBTracer) AddFlux(results []tally.Result) {
	t.lock.Lock()
	defer t.lock.Unlock()

	for _, r := range results {
		t.backend.InsertData(fluxTable, FluxEntry{
			Run:    t.runID,
			Matid:  r.Matid,
			Mean:   r.Mean,
			RelErr: r.RelErr,
		})
	}

	t.backend.Flush()
}
