// Package ics renders normalized events as an iCalendar document.
package ics

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"calexport/internal/models"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

const (
	productID  = "-//calexport//EN"
	dateLayout = "2006-01-02"
)

var partStat = map[models.ResponseStatus]string{
	models.ResponseAccepted:    "ACCEPTED",
	models.ResponseDeclined:    "DECLINED",
	models.ResponseTentative:   "TENTATIVE",
	models.ResponseNeedsAction: "NEEDS-ACTION",
}

// Encode writes events as a VCALENDAR named calendarName to w.
func Encode(w io.Writer, calendarName string, events []models.NormalizedEvent, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	if calendarName != "" {
		cal.Props.SetText("X-WR-CALNAME", calendarName)
	}

	for _, ev := range events {
		ve, err := toVEvent(ev, stamp)
		if err != nil {
			return fmt.Errorf("event %q: %w", ev.ID, err)
		}
		cal.Children = append(cal.Children, ve)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

// Marshal is Encode into a byte slice.
func Marshal(calendarName string, events []models.NormalizedEvent, stamp time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, calendarName, events, stamp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toVEvent(ev models.NormalizedEvent, stamp time.Time) (*ical.Component, error) {
	ve := ical.NewComponent(ical.CompEvent)

	uid := ev.ID
	if uid == "" {
		uid = uuid.NewString()
	}
	ve.Props.SetText(ical.PropUID, uid)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ve.Props.SetText(ical.PropSummary, ev.Summary)

	if ev.AllDay {
		start, err := time.Parse(dateLayout, ev.StartTime)
		if err != nil {
			return nil, fmt.Errorf("invalid start date: %w", err)
		}
		end, err := time.Parse(dateLayout, ev.EndTime)
		if err != nil {
			return nil, fmt.Errorf("invalid end date: %w", err)
		}
		ve.Props.SetDate(ical.PropDateTimeStart, start)
		ve.Props.SetDate(ical.PropDateTimeEnd, end)
	} else {
		start, err := time.Parse(time.RFC3339, ev.StartTime)
		if err != nil {
			return nil, fmt.Errorf("invalid start time: %w", err)
		}
		end, err := time.Parse(time.RFC3339, ev.EndTime)
		if err != nil {
			return nil, fmt.Errorf("invalid end time: %w", err)
		}
		ve.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
		ve.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())
	}

	if ev.Description != "" {
		ve.Props.SetText(ical.PropDescription, ev.Description)
	}
	if ev.Location != "" {
		ve.Props.SetText(ical.PropLocation, ev.Location)
	}
	if ev.Organizer.Email != "" {
		p := ical.NewProp(ical.PropOrganizer)
		p.Value = mailto(ev.Organizer.Email)
		ve.Props.Add(p)
	}
	for _, a := range ev.Attendees {
		if a.Email == "" {
			continue
		}
		p := ical.NewProp(ical.PropAttendee)
		p.Value = mailto(a.Email)
		if a.DisplayName != "" {
			p.Params.Set(ical.ParamCommonName, a.DisplayName)
		}
		if ps, ok := partStat[a.ResponseStatus]; ok {
			p.Params.Set(ical.ParamParticipationStatus, ps)
		}
		if a.Optional {
			p.Params.Set(ical.ParamRole, "OPT-PARTICIPANT")
		}
		ve.Props.Add(p)
	}
	return ve, nil
}

func mailto(email string) string {
	if strings.HasPrefix(strings.ToLower(email), "mailto:") {
		return email
	}
	return "mailto:" + email
}
