package transport

import "fmt"

// Event is the tag attached to every batch slot. The numeric order is
// significant: sorting slots by Event groups equal tags together and puts
// every slot that still has in-flight work ahead of StillAlive, and every
// slot awaiting closure between StillAlive and EndEvent.
type Event int

// The slot tags, in scheduling order.
const (
	Collision Event = iota
	Boundary
	Born
	StillAlive
	Escape
	Killed
	EndEvent
)

var eventNames = [...]string{
	Collision:  "Collision",
	Boundary:   "Boundary",
	Born:       "Born",
	StillAlive: "StillAlive",
	Escape:     "Escape",
	Killed:     "Killed",
	EndEvent:   "EndEvent",
}

func (e Event) String() string {
	if e < Collision || e > EndEvent {
		return fmt.Sprintf("Event(%d)", int(e))
	}

	return eventNames[e]
}

// InFlight returns true if a slot with this tag still needs to be
// classified.
func (e Event) InFlight() bool {
	return e < StillAlive
}

// NeedsClosure returns true if the history in a slot with this tag has
// terminated but has not been tallied yet.
func (e Event) NeedsClosure() bool {
	return e > StillAlive && e < EndEvent
}
