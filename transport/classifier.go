package transport

import (
	"log"
	"math"
)

// minMFP is the budget left to a particle whose boundary step consumed its
// whole budget through round-off. The particle collides right after the
// crossing.
const minMFP = 1e-12

// stepSelector keeps the shortest of the submitted steps.
type stepSelector struct {
	step float64
	tag  Event
}

func newStepSelector(step float64, tag Event) stepSelector {
	return stepSelector{step: step, tag: tag}
}

// submit replaces the current choice if step is not longer. Later
// submissions win ties.
func (s *stepSelector) submit(step float64, tag Event) {
	if step <= s.step {
		s.step = step
		s.tag = tag
	}
}

// classify decides whether the particle collides or reaches a surface first.
// The geometry distance is submitted after the collision distance so that a
// boundary coincident with the collision site wins.
func (t *Transporter) classify(p *Particle) Event {
	if !p.Alive {
		log.Panicf("classifying dead particle of history %d", p.History)
	}

	if !(p.DistMFP > 0) {
		log.Panicf("history %d has non-positive mfp budget %g",
			p.History, p.DistMFP)
	}

	xsTotal := t.physics.TotalXS(p)
	if xsTotal < 0 {
		log.Panicf("negative total cross section %g", xsTotal)
	}

	distCol := math.Inf(1)
	if xsTotal > 0 {
		distCol = p.DistMFP / xsTotal
	}

	selector := newStepSelector(distCol, Collision)
	selector.submit(t.geometry.DistanceToBoundary(p.Geo), Boundary)

	t.tallier.PathLength(selector.step, p)
	p.Step = selector.step

	if selector.tag == Collision {
		p.DistMFP = 0
		return Collision
	}

	p.DistMFP -= selector.step * xsTotal
	if p.DistMFP <= 0 {
		p.DistMFP = minMFP
	}

	return Boundary
}
