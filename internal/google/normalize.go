package google

import (
	"calexport/internal/models"

	"google.golang.org/api/calendar/v3"
)

// toNormalizedEvent converts an API event into the internal model. It never
// fails: missing optional fields get their documented defaults.
func toNormalizedEvent(item *calendar.Event) models.NormalizedEvent {
	start, end := item.Start, item.End
	if start == nil {
		start = &calendar.EventDateTime{}
	}
	if end == nil {
		end = &calendar.EventDateTime{}
	}

	ev := models.NormalizedEvent{
		EventDetails: models.EventDetails{
			ID:               item.Id,
			Summary:          item.Summary,
			Description:      item.Description,
			Location:         item.Location,
			CreatedAt:        item.Created,
			UpdatedAt:        item.Updated,
			RecurringEventID: item.RecurringEventId,
			ColorID:          item.ColorId,
			EventType:        item.EventType,
		},
		Attendees: make([]models.Attendee, 0, len(item.Attendees)),
	}
	if ev.Summary == "" {
		ev.Summary = "No Title"
	}

	// All-day events carry dates only on both boundaries.
	if start.Date != "" && end.Date != "" && start.DateTime == "" && end.DateTime == "" {
		ev.StartTime, ev.EndTime, ev.AllDay = start.Date, end.Date, true
	} else {
		ev.StartTime, ev.EndTime = boundary(start), boundary(end)
	}

	ev.TimeZone = start.TimeZone
	if ev.TimeZone == "" {
		ev.TimeZone = end.TimeZone
	}

	if item.Organizer != nil {
		ev.Organizer = models.Organizer{Email: item.Organizer.Email, Self: item.Organizer.Self}
	}

	for _, a := range item.Attendees {
		if a == nil {
			continue
		}
		status := models.ResponseStatus(a.ResponseStatus)
		if status == "" {
			status = models.ResponseNeedsAction
		}
		ev.Attendees = append(ev.Attendees, models.Attendee{
			Email:          a.Email,
			DisplayName:    a.DisplayName,
			ResponseStatus: status,
			Optional:       a.Optional,
			Organizer:      a.Organizer,
			Self:           a.Self,
		})
	}
	ev.AttendeesCount = len(ev.Attendees)

	return ev
}

func boundary(b *calendar.EventDateTime) string {
	if b.DateTime != "" {
		return b.DateTime
	}
	return b.Date
}
