package monitoring

import (
	"time"

	"github.com/profugus/mctransport/transport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// roundMetrics are the Prometheus series exported for every registered
// transporter, labelled by transporter name.
type roundMetrics struct {
	rounds           *prometheus.CounterVec
	dispatched       *prometheus.CounterVec
	active           *prometheus.GaugeVec
	historiesStarted *prometheus.GaugeVec
	roundDuration    *prometheus.HistogramVec
}

func newRoundMetrics(registry prometheus.Registerer) *roundMetrics {
	factory := promauto.With(registry)

	return &roundMetrics{
		rounds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mctransport_rounds_total",
			Help: "Total scheduling rounds completed",
		}, []string{"transporter"}),
		dispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mctransport_dispatched_slots_total",
			Help: "Total slots dispatched by event",
		}, []string{"transporter", "event"}),
		active: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mctransport_active_slots",
			Help: "In-flight slots at the start of the last round",
		}, []string{"transporter"}),
		historiesStarted: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mctransport_histories_started",
			Help: "Histories started in the current run",
		}, []string{"transporter"}),
		roundDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mctransport_round_duration_seconds",
			Help:    "Wall-clock duration of a scheduling round",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"transporter"}),
	}
}

// metricsHook feeds the round metrics of one transporter.
type metricsHook struct {
	metrics    *roundMetrics
	roundStart time.Time
}

func (h *metricsHook) Func(ctx transport.HookCtx) {
	name := ctx.Domain.Name()

	switch ctx.Pos {
	case transport.HookPosBeforeRound:
		h.roundStart = time.Now()
		stats := ctx.Detail.(transport.RoundStats)
		h.metrics.active.WithLabelValues(name).Set(float64(stats.Active))
	case transport.HookPosAfterRound:
		stats := ctx.Detail.(transport.RoundStats)
		h.metrics.roundDuration.WithLabelValues(name).
			Observe(time.Since(h.roundStart).Seconds())
		h.metrics.rounds.WithLabelValues(name).Inc()
		h.metrics.dispatched.WithLabelValues(name, transport.Collision.String()).
			Add(float64(stats.Collisions))
		h.metrics.dispatched.WithLabelValues(name, transport.Boundary.String()).
			Add(float64(stats.Boundaries))
		h.metrics.dispatched.WithLabelValues(name, "closure").
			Add(float64(stats.Closures))
		h.metrics.historiesStarted.WithLabelValues(name).
			Set(float64(stats.HistoriesStarted))
	}
}
