package models

// ResponseStatus is an attendee's reply to an invitation.
type ResponseStatus string

const (
	ResponseNeedsAction ResponseStatus = "needsAction"
	ResponseDeclined    ResponseStatus = "declined"
	ResponseTentative   ResponseStatus = "tentative"
	ResponseAccepted    ResponseStatus = "accepted"
)

// Attending reports whether the status counts as having said yes (accepted or tentative).
func (s ResponseStatus) Attending() bool {
	return s == ResponseAccepted || s == ResponseTentative
}

// Organizer identifies who created an event.
type Organizer struct {
	Email string `json:"email"`
	Self  bool   `json:"self"`
}

// Attendee is one invitee of an event.
type Attendee struct {
	Email          string         `json:"email"`
	DisplayName    string         `json:"display_name"`
	ResponseStatus ResponseStatus `json:"response_status"`
	Optional       bool           `json:"optional"`
	Organizer      bool           `json:"organizer"`
	Self           bool           `json:"self"`
}

// EventDetails holds every exported field of an event. Attendee details are
// not part of it; only their count is.
type EventDetails struct {
	ID               string    `json:"id"`
	Summary          string    `json:"summary"`
	Description      string    `json:"description"`
	Location         string    `json:"location"`
	StartTime        string    `json:"start_time"` // YYYY-MM-DD when AllDay, RFC 3339 otherwise
	EndTime          string    `json:"end_time"`
	AllDay           bool      `json:"all_day"`
	TimeZone         string    `json:"timezone"`
	CreatedAt        string    `json:"created"`
	UpdatedAt        string    `json:"updated"`
	Organizer        Organizer `json:"organizer"`
	AttendeesCount   int       `json:"attendees_count"`
	RecurringEventID string    `json:"recurring_event_id"`
	ColorID          string    `json:"color_id"`
	EventType        string    `json:"event_type"`
}

// NormalizedEvent is the canonical, provider independent representation of
// one event occurrence.
type NormalizedEvent struct {
	EventDetails
	Attendees []Attendee `json:"attendees"`
}
