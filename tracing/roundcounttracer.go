package tracing

import (
	"sync"

	"github.com/profugus/mctransport/transport"
)

// RoundCountTracer accumulates round statistics in memory.
type RoundCountTracer struct {
	lock       sync.Mutex
	rounds     int64
	collisions int64
	boundaries int64
	closures   int64
	peakActive int
	finished   map[string]transport.Summary
}

// NewRoundCountTracer creates a new RoundCountTracer
func NewRoundCountTracer() *RoundCountTracer {
	return &RoundCountTracer{
		finished: make(map[string]transport.Summary),
	}
}

// Rounds returns the number of rounds recorded.
func (t *RoundCountTracer) Rounds() int64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.rounds
}

// Collisions returns the number of slots dispatched to collision handling.
func (t *RoundCountTracer) Collisions() int64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.collisions
}

// Boundaries returns the number of slots dispatched to boundary handling.
func (t *RoundCountTracer) Boundaries() int64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.boundaries
}

// Closures returns the number of slots closed or respawned during rounds.
func (t *RoundCountTracer) Closures() int64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.closures
}

// PeakActive returns the largest in-flight prefix seen at a round start.
func (t *RoundCountTracer) PeakActive() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.peakActive
}

// Summary returns the summary of a finished transporter.
func (t *RoundCountTracer) Summary(domain string) (transport.Summary, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()

	s, ok := t.finished[domain]

	return s, ok
}

// StartRound tracks the peak number of in-flight slots.
func (t *RoundCountTracer) StartRound(_ string, stats transport.RoundStats) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.peakActive = max(t.peakActive, stats.Active)
}

// EndRound adds the round to the totals.
func (t *RoundCountTracer) EndRound(_ string, stats transport.RoundStats) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.rounds++
	t.collisions += int64(stats.Collisions)
	t.boundaries += int64(stats.Boundaries)
	t.closures += int64(stats.Closures)
}

// EndTransport keeps the summary of the transporter.
func (t *RoundCountTracer) EndTransport(
	domain string,
	summary transport.Summary,
) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.finished[domain] = summary
}
