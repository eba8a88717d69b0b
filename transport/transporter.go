package transport

import (
	"cmp"
	"log"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
)

// slot pairs a batch position with the event tag of the history it holds.
type slot struct {
	index int
	event Event
}

func compareSlots(a, b slot) int {
	return cmp.Compare(a.event, b.event)
}

// RoundStats describes one scheduling round.
type RoundStats struct {
	Round            int64
	Active           int
	Collisions       int
	Boundaries       int
	Closures         int
	Retired          int
	Remaining        int
	HistoriesStarted int64
}

// Summary describes a completed transport run.
type Summary struct {
	Histories   int64
	Rounds      int64
	BatchSize   int
	Diagnostics Diagnostics
}

// A Transporter advances a fixed-size batch of particle histories through a
// domain. Every round classifies all in-flight slots, groups the batch by
// event tag, and handles each group as one flat parallel operation.
type Transporter struct {
	HookableBase

	name string

	geometry     Geometry
	physics      Physics
	varReduction VarianceReduction
	tallier      Tallier
	source       Source

	batchSize            int
	pool                 *workerPool
	logger               *slog.Logger
	transportSecondaries bool

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex
	runLock      sync.Mutex

	round       atomic.Int64
	numRun      atomic.Int64
	numRunCheck atomic.Int64
	numToRun    int64
	counters    counters

	particles []Particle
	banks     []Bank
	slots     []slot
	aliveEnd  int
	deadEnd   int
}

// Name returns the name of the transporter.
func (t *Transporter) Name() string {
	return t.name
}

// BatchSize returns the configured number of slots.
func (t *Transporter) BatchSize() int {
	return t.batchSize
}

// CurrentRound returns the number of completed rounds of the current run.
func (t *Transporter) CurrentRound() int64 {
	return t.round.Load()
}

// HistoriesStarted returns the number of histories started so far.
func (t *Transporter) HistoriesStarted() int64 {
	return t.numRun.Load()
}

// HistoriesRequested returns the number of histories of the current run.
func (t *Transporter) HistoriesRequested() int64 {
	t.runLock.Lock()
	defer t.runLock.Unlock()

	return t.numToRun
}

// Diagnostics returns the event counters of the current run.
func (t *Transporter) Diagnostics() Diagnostics {
	return t.counters.snapshot()
}

// Transport runs every history the source supplies and returns once all
// slots are retired.
func (t *Transporter) Transport() Summary {
	t.runLock.Lock()
	numToRun := t.source.NumToTransport()
	t.numToRun = numToRun
	t.runLock.Unlock()

	t.round.Store(0)
	t.numRun.Store(0)
	t.numRunCheck.Store(0)
	t.counters.reset()

	if numToRun <= 0 {
		t.particles, t.banks, t.slots = nil, nil, nil
		return t.finish()
	}

	n := int(min(int64(t.batchSize), numToRun))
	t.initBatch(n)

	for {
		for t.slots[0].event.InFlight() {
			t.runRound()
		}

		if t.deadEnd == 0 {
			break
		}

		t.drainClosures()

		if !t.slots[0].event.InFlight() {
			break
		}
	}

	return t.finish()
}

// drainClosures closes the slots that died in the last round. Closing them
// may start more histories.
func (t *Transporter) drainClosures() {
	t.pauseLock.Lock()
	defer t.pauseLock.Unlock()

	t.pool.forEach(t.slots[:t.deadEnd], t.closeOrRespawn)
	t.resort()
}

func (t *Transporter) initBatch(n int) {
	t.particles = make([]Particle, n)
	t.banks = make([]Bank, n)
	t.slots = make([]slot, n)

	t.numRun.Store(int64(n))
	t.numRunCheck.Store(int64(n))

	for i := range t.slots {
		t.slots[i] = slot{index: i, event: Born}
	}

	t.pool.forEach(t.slots, func(s *slot) {
		t.particles[s.index] = t.source.GetParticle(int64(s.index))
		t.bear(&t.particles[s.index])
	})

	t.aliveEnd = n
	t.deadEnd = n
}

func (t *Transporter) runRound() {
	t.pauseLock.Lock()
	defer t.pauseLock.Unlock()

	stats := RoundStats{
		Round:  t.round.Load(),
		Active: t.aliveEnd,
	}

	t.InvokeHook(HookCtx{Domain: t, Pos: HookPosBeforeRound, Detail: stats})

	t.pool.forEach(t.slots[:t.aliveEnd], func(s *slot) {
		s.event = t.classify(&t.particles[s.index])
	})

	work := t.slots[:t.deadEnd]
	slices.SortStableFunc(work, compareSlots)

	colLo, colHi := equalRange(work, Collision)
	bndLo, bndHi := equalRange(work, Boundary)
	endLo := upperBound(work, StillAlive)
	endHi := lowerBound(work, EndEvent)

	t.pool.all(
		func() {
			t.pool.forEach(work[colLo:colHi], func(s *slot) {
				s.event = t.processCollision(
					&t.particles[s.index], s.event, &t.banks[s.index])
			})
		},
		func() {
			t.pool.forEach(work[bndLo:bndHi], func(s *slot) {
				s.event = t.processBoundary(
					&t.particles[s.index], s.event, &t.banks[s.index])
			})
		},
		func() {
			t.pool.forEach(work[endLo:endHi], t.closeOrRespawn)
		},
	)

	t.resort()

	stats.Collisions = colHi - colLo
	stats.Boundaries = bndHi - bndLo
	stats.Closures = endHi - endLo
	stats.Retired = len(t.slots) - t.deadEnd
	stats.Remaining = t.deadEnd
	stats.HistoriesStarted = t.numRun.Load()
	t.round.Add(1)

	t.logger.Debug("transport round",
		"transporter", t.name,
		"round", stats.Round,
		"active", stats.Active,
		"collisions", stats.Collisions,
		"boundaries", stats.Boundaries,
		"closures", stats.Closures,
		"retired", stats.Retired,
	)

	t.InvokeHook(HookCtx{Domain: t, Pos: HookPosAfterRound, Detail: stats})
}

// resort restores the sorted order of the whole batch and recomputes the end
// of the in-flight prefix and the start of the retired suffix.
func (t *Transporter) resort() {
	slices.SortStableFunc(t.slots, compareSlots)
	t.aliveEnd = lowerBound(t.slots, StillAlive)
	t.deadEnd = lowerBound(t.slots, EndEvent)
}

func (t *Transporter) finish() Summary {
	for _, s := range t.slots {
		if s.event != EndEvent {
			log.Panicf("slot %d finished with event %s", s.index, s.event)
		}
	}

	numRun := t.numRun.Load()
	if t.numToRun > 0 && numRun != t.numToRun {
		log.Panicf("started %d histories, %d requested", numRun, t.numToRun)
	}

	summary := Summary{
		Histories:   numRun,
		Rounds:      t.round.Load(),
		BatchSize:   len(t.slots),
		Diagnostics: t.counters.snapshot(),
	}

	t.logger.Info("transport finished",
		"transporter", t.name,
		"histories", summary.Histories,
		"rounds", summary.Rounds,
		"collisions", summary.Diagnostics.Collisions,
		"escapes", summary.Diagnostics.Escapes,
		"reflections", summary.Diagnostics.Reflections,
		"respawns", summary.Diagnostics.Respawns,
	)

	t.InvokeHook(HookCtx{Domain: t, Pos: HookPosTransportEnd, Detail: summary})

	return summary
}

// Pause blocks the transporter before its next round.
func (t *Transporter) Pause() {
	t.isPausedLock.Lock()
	defer t.isPausedLock.Unlock()

	if t.isPaused {
		return
	}

	t.pauseLock.Lock()
	t.isPaused = true
}

// Continue lets a paused transporter proceed.
func (t *Transporter) Continue() {
	t.isPausedLock.Lock()
	defer t.isPausedLock.Unlock()

	if !t.isPaused {
		return
	}

	t.pauseLock.Unlock()
	t.isPaused = false
}

// lowerBound returns the first index whose event is not less than e.
func lowerBound(slots []slot, e Event) int {
	return sort.Search(len(slots), func(i int) bool {
		return slots[i].event >= e
	})
}

// upperBound returns the first index whose event is greater than e.
func upperBound(slots []slot, e Event) int {
	return sort.Search(len(slots), func(i int) bool {
		return slots[i].event > e
	})
}

func equalRange(slots []slot, e Event) (int, int) {
	return lowerBound(slots, e), upperBound(slots, e)
}
