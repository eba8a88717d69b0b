package transport

import "log"

// processCollision moves the particle to the collision site and samples the
// outcome. A surviving particle gets a fresh mfp budget for the next round.
func (t *Transporter) processCollision(p *Particle, e Event, bank *Bank) Event {
	if e != Collision {
		log.Panicf("collision handler called with event %s", e)
	}

	t.geometry.MoveToPoint(p.Step, p.Geo)
	t.physics.Collide(p, e, bank)
	t.counters.collisions.Add(1)

	if p.Alive {
		t.varReduction.PostCollision(p, e, bank)
	}

	if !p.Alive {
		t.counters.kills.Add(1)
		return Killed
	}

	p.SampleMFP()

	return Collision
}
