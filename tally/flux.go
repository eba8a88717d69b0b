// Package tally accumulates statistical estimators over particle histories.
package tally

import (
	"math"
	"sort"
	"sync"

	"github.com/profugus/mctransport/transport"
)

// Result is the estimate of one material bin.
type Result struct {
	Matid  int
	Mean   float64
	RelErr float64
}

// historyScore collects the scores of one history. It is only written by
// the goroutine that owns the particle's slot.
type historyScore struct {
	bins map[int]float64
}

type moments struct {
	sum, sum2 float64
}

// Flux is a track-length estimator of the scalar flux integrated over each
// material. It is safe for concurrent use by many slots.
type Flux struct {
	pending sync.Map

	lock      sync.Mutex
	moments   map[int]*moments
	histories int64
}

// NewFlux creates an empty flux tally.
func NewFlux() *Flux {
	return &Flux{moments: make(map[int]*moments)}
}

// PathLength scores step*weight into the particle's material. Infinite
// steps are particles streaming out of an unbounded void and are not scored.
func (f *Flux) PathLength(step float64, p *transport.Particle) {
	if math.IsInf(step, 0) || math.IsNaN(step) {
		return
	}

	v, ok := f.pending.Load(p)
	if !ok {
		v, _ = f.pending.LoadOrStore(p, &historyScore{bins: map[int]float64{}})
	}

	v.(*historyScore).bins[p.Matid] += step * p.Weight
}

// EndHistory folds the scores of the finished history into the moments as
// one sample. Scores made through the same particle since the last
// EndHistory, secondaries included, belong to that history.
func (f *Flux) EndHistory(p *transport.Particle) {
	v, ok := f.pending.LoadAndDelete(p)

	f.lock.Lock()
	defer f.lock.Unlock()

	f.histories++

	if !ok {
		return
	}

	for matid, score := range v.(*historyScore).bins {
		m, found := f.moments[matid]
		if !found {
			m = &moments{}
			f.moments[matid] = m
		}

		m.sum += score
		m.sum2 += score * score
	}
}

// HistoriesEnded returns the number of EndHistory calls, which is the number
// of source histories folded into the moments.
func (f *Flux) HistoriesEnded() int64 {
	f.lock.Lock()
	defer f.lock.Unlock()

	return f.histories
}

// Results returns the per-material estimates normalized to n source
// histories, sorted by matid.
func (f *Flux) Results(n int64) []Result {
	f.lock.Lock()
	defer f.lock.Unlock()

	results := make([]Result, 0, len(f.moments))
	if n <= 0 {
		return results
	}

	for matid, m := range f.moments {
		r := Result{Matid: matid}
		r.Mean = m.sum / float64(n)

		if n > 1 && r.Mean > 0 {
			variance := (m.sum2/float64(n) - r.Mean*r.Mean) / float64(n-1)
			r.RelErr = math.Sqrt(math.Max(variance, 0)) / r.Mean
		}

		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Matid < results[j].Matid
	})

	return results
}

// Reset clears all accumulated scores.
func (f *Flux) Reset() {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.pending.Clear()
	f.moments = make(map[int]*moments)
	f.histories = 0
}
