package transport

import "sync/atomic"

// Diagnostics is a snapshot of the event counters of a transporter.
type Diagnostics struct {
	Collisions       int64 `json:"collisions"`
	Escapes          int64 `json:"escapes"`
	Reflections      int64 `json:"reflections"`
	SurfaceCrossings int64 `json:"surface_crossings"`
	Kills            int64 `json:"kills"`
	Respawns         int64 `json:"respawns"`
	Secondaries      int64 `json:"secondaries"`
	DroppedBanked    int64 `json:"dropped_banked"`
}

// counters are updated by the per-slot workers.
type counters struct {
	collisions       atomic.Int64
	escapes          atomic.Int64
	reflections      atomic.Int64
	surfaceCrossings atomic.Int64
	kills            atomic.Int64
	respawns         atomic.Int64
	secondaries      atomic.Int64
	droppedBanked    atomic.Int64
}

func (c *counters) reset() {
	c.collisions.Store(0)
	c.escapes.Store(0)
	c.reflections.Store(0)
	c.surfaceCrossings.Store(0)
	c.kills.Store(0)
	c.respawns.Store(0)
	c.secondaries.Store(0)
	c.droppedBanked.Store(0)
}

func (c *counters) snapshot() Diagnostics {
	return Diagnostics{
		Collisions:       c.collisions.Load(),
		Escapes:          c.escapes.Load(),
		Reflections:      c.reflections.Load(),
		SurfaceCrossings: c.surfaceCrossings.Load(),
		Kills:            c.kills.Load(),
		Respawns:         c.respawns.Load(),
		Secondaries:      c.secondaries.Load(),
		DroppedBanked:    c.droppedBanked.Load(),
	}
}
