package transport

import "log"

// closeOrRespawn refills the slot of a terminated particle. Banked
// secondaries continue the same source history. Once the bank is spent, the
// history is tallied and the slot becomes Born if another source history is
// available and EndEvent otherwise.
func (t *Transporter) closeOrRespawn(s *slot) {
	if !s.event.NeedsClosure() {
		log.Panicf("closing slot %d with event %s", s.index, s.event)
	}

	p := &t.particles[s.index]
	bank := &t.banks[s.index]

	if t.transportSecondaries && !bank.Empty() {
		*p = bank.Pop()
		t.bear(p)
		t.counters.secondaries.Add(1)
		s.event = Born
		return
	}

	t.tallier.EndHistory(p)

	if !bank.Empty() {
		t.counters.droppedBanked.Add(int64(bank.Len()))
		bank.Clear()
	}

	count := t.numRunCheck.Add(1) - 1
	if count < t.numToRun {
		t.numRun.Add(1)
		*p = t.source.GetParticle(count)
		t.bear(p)
		t.counters.respawns.Add(1)
		s.event = Born
		return
	}

	s.event = EndEvent
}

// bear prepares a freshly supplied particle for its first classification.
func (t *Transporter) bear(p *Particle) {
	if !p.Alive {
		log.Panicf("history %d supplied dead", p.History)
	}

	p.SampleMFP()
}
