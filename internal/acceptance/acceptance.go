// Package acceptance infers whether the calendar owner has accepted an event.
//
// The Calendar API does not reliably mark the owner's attendee entry with
// self=true, so the decision falls back through an ordered list of
// strategies. The last one is a best guess and is known to misfire on
// events where exactly one other attendee has accepted; filtering built on
// top of it depends on that exact behavior.
package acceptance

import "calexport/internal/models"

// Decision is the outcome of evaluating an event.
type Decision struct {
	Accepted bool
	// Strategy names the rule that decided, or "none" when no rule matched.
	Strategy string
}

type strategy struct {
	name   string
	decide func(ev *models.NormalizedEvent) (accepted, matched bool)
}

// strategies are evaluated in order; the first match wins.
var strategies = []strategy{
	{name: "self-attendee", decide: selfAttendee},
	{name: "self-organizer", decide: selfOrganizer},
	{name: "no-attendees", decide: noAttendees},
	{name: "single-attending", decide: singleAttending},
}

// Decide evaluates the strategies against ev.
func Decide(ev models.NormalizedEvent) Decision {
	for _, s := range strategies {
		if accepted, ok := s.decide(&ev); ok {
			return Decision{Accepted: accepted, Strategy: s.name}
		}
	}
	return Decision{Strategy: "none"}
}

// IsAcceptedByOwner reports whether the owner accepted or tentatively accepted ev.
func IsAcceptedByOwner(ev models.NormalizedEvent) bool {
	return Decide(ev).Accepted
}

// Filter returns the events accepted by the owner, in their original order.
func Filter(events []models.NormalizedEvent) []models.NormalizedEvent {
	out := make([]models.NormalizedEvent, 0, len(events))
	for _, ev := range events {
		if IsAcceptedByOwner(ev) {
			out = append(out, ev)
		}
	}
	return out
}

// selfAttendee trusts the owner's own attendee entry when there is one.
func selfAttendee(ev *models.NormalizedEvent) (bool, bool) {
	for _, a := range ev.Attendees {
		if a.Self {
			return a.ResponseStatus.Attending(), true
		}
	}
	return false, false
}

// selfOrganizer treats events the owner created as accepted.
func selfOrganizer(ev *models.NormalizedEvent) (bool, bool) {
	if ev.Organizer.Self {
		return true, true
	}
	return false, false
}

// noAttendees treats events without guests as personal events.
func noAttendees(ev *models.NormalizedEvent) (bool, bool) {
	if len(ev.Attendees) == 0 {
		return true, true
	}
	return false, false
}

// singleAttending guesses that a lone accepted or tentative attendee is the owner.
func singleAttending(ev *models.NormalizedEvent) (bool, bool) {
	n := 0
	for _, a := range ev.Attendees {
		if a.ResponseStatus.Attending() {
			n++
		}
	}
	if n == 1 {
		return true, true
	}
	return false, false
}
