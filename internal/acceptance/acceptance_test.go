package acceptance

import (
	"testing"

	"calexport/internal/models"

	"github.com/stretchr/testify/assert"
)

func attendee(email string, status models.ResponseStatus, self bool) models.Attendee {
	return models.Attendee{Email: email, ResponseStatus: status, Self: self}
}

func event(organizerSelf bool, attendees ...models.Attendee) models.NormalizedEvent {
	ev := models.NormalizedEvent{Attendees: attendees}
	ev.Organizer = models.Organizer{Email: "boss@example.com", Self: organizerSelf}
	ev.AttendeesCount = len(attendees)
	return ev
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name         string
		event        models.NormalizedEvent
		wantAccepted bool
		wantStrategy string
	}{
		{
			name:         "self accepted",
			event:        event(false, attendee("me@example.com", models.ResponseAccepted, true)),
			wantAccepted: true,
			wantStrategy: "self-attendee",
		},
		{
			name:         "self tentative",
			event:        event(false, attendee("me@example.com", models.ResponseTentative, true)),
			wantAccepted: true,
			wantStrategy: "self-attendee",
		},
		{
			name:         "self declined",
			event:        event(false, attendee("me@example.com", models.ResponseDeclined, true)),
			wantAccepted: false,
			wantStrategy: "self-attendee",
		},
		{
			name: "self declined wins over organizer",
			event: event(true,
				attendee("me@example.com", models.ResponseDeclined, true),
				attendee("a@example.com", models.ResponseAccepted, false)),
			wantAccepted: false,
			wantStrategy: "self-attendee",
		},
		{
			name:         "self needs action",
			event:        event(false, attendee("me@example.com", models.ResponseNeedsAction, true)),
			wantAccepted: false,
			wantStrategy: "self-attendee",
		},
		{
			name: "organizer is owner",
			event: event(true,
				attendee("a@example.com", models.ResponseDeclined, false),
				attendee("b@example.com", models.ResponseDeclined, false)),
			wantAccepted: true,
			wantStrategy: "self-organizer",
		},
		{
			name:         "no attendees",
			event:        event(false),
			wantAccepted: true,
			wantStrategy: "no-attendees",
		},
		{
			name: "single accepted attendee",
			event: event(false,
				attendee("a@example.com", models.ResponseAccepted, false),
				attendee("b@example.com", models.ResponseNeedsAction, false)),
			wantAccepted: true,
			wantStrategy: "single-attending",
		},
		{
			name: "single tentative attendee",
			event: event(false,
				attendee("a@example.com", models.ResponseTentative, false),
				attendee("b@example.com", models.ResponseDeclined, false)),
			wantAccepted: true,
			wantStrategy: "single-attending",
		},
		{
			name: "two accepted is ambiguous",
			event: event(false,
				attendee("a@example.com", models.ResponseAccepted, false),
				attendee("b@example.com", models.ResponseAccepted, false)),
			wantAccepted: false,
			wantStrategy: "none",
		},
		{
			name: "nobody accepted",
			event: event(false,
				attendee("a@example.com", models.ResponseNeedsAction, false),
				attendee("b@example.com", models.ResponseDeclined, false)),
			wantAccepted: false,
			wantStrategy: "none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.event)
			assert.Equal(t, tt.wantAccepted, d.Accepted)
			assert.Equal(t, tt.wantStrategy, d.Strategy)
			assert.Equal(t, tt.wantAccepted, IsAcceptedByOwner(tt.event))
		})
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	mk := func(id string, ev models.NormalizedEvent) models.NormalizedEvent {
		ev.ID = id
		return ev
	}
	events := []models.NormalizedEvent{
		mk("1", event(false)),
		mk("2", event(false, attendee("me@example.com", models.ResponseDeclined, true))),
		mk("3", event(true, attendee("a@example.com", models.ResponseNeedsAction, false))),
		mk("4", event(false,
			attendee("a@example.com", models.ResponseAccepted, false),
			attendee("b@example.com", models.ResponseAccepted, false))),
		mk("5", event(false, attendee("me@example.com", models.ResponseAccepted, true))),
	}

	got := Filter(events)

	ids := make([]string, 0, len(got))
	for _, ev := range got {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{"1", "3", "5"}, ids)
}

func TestFilterEmpty(t *testing.T) {
	assert.Empty(t, Filter(nil))
}
