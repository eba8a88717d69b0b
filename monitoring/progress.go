package monitoring

import (
	"sync"
	"time"

	"github.com/profugus/mctransport/transport"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex `json:"-"`
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// Set overwrites both counts.
func (b *ProgressBar) Set(inProgress, finished uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress = inProgress
	b.Finished = finished
}

func (b *ProgressBar) snapshot() ProgressBar {
	b.Lock()
	defer b.Unlock()

	return ProgressBar{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished,
		InProgress: b.InProgress,
	}
}

// progressHook keeps one progress bar per transporter run. Histories that
// have been started but not retired count as in progress.
type progressHook struct {
	monitor *Monitor
	bar     *ProgressBar
}

func (h *progressHook) Func(ctx transport.HookCtx) {
	t := ctx.Domain

	switch ctx.Pos {
	case transport.HookPosBeforeRound:
		if h.bar == nil {
			h.bar = h.monitor.CreateProgressBar(
				t.Name(), uint64(t.HistoriesRequested()))
		}
	case transport.HookPosAfterRound:
		stats := ctx.Detail.(transport.RoundStats)
		started := uint64(stats.HistoriesStarted)
		inFlight := min(uint64(stats.Remaining), started)
		h.bar.Set(inFlight, started-inFlight)
	case transport.HookPosTransportEnd:
		if h.bar != nil {
			h.monitor.CompleteProgressBar(h.bar)
			h.bar = nil
		}
	}
}
