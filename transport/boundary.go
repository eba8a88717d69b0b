package transport

import "log"

// processBoundary moves the particle onto the surface it reached and
// resolves the crossing.
func (t *Transporter) processBoundary(p *Particle, e Event, bank *Bank) Event {
	if !p.Alive {
		log.Panicf("boundary crossing of dead history %d", p.History)
	}

	if e != Boundary {
		log.Panicf("boundary handler called with event %s", e)
	}

	t.geometry.MoveToSurface(p.Geo)

	switch state := t.geometry.BoundaryState(p.Geo); state {
	case Outside:
		p.Kill()
		t.counters.escapes.Add(1)
		return Escape

	case Reflect:
		if !t.geometry.Reflect(p.Geo) {
			log.Panicf("history %d failed to reflect", p.History)
		}
		t.counters.reflections.Add(1)
		return Boundary

	case Inside:
		p.Matid = t.geometry.Matid(p.Geo)
		t.varReduction.PostSurface(p, e, bank)
		t.counters.surfaceCrossings.Add(1)

		if !p.Alive {
			t.counters.kills.Add(1)
			return Killed
		}

		return Boundary

	default:
		log.Panicf("unknown boundary state %d", state)
	}

	return e
}
