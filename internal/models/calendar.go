package models

import (
	"encoding/json"
	"time"
)

// CalendarDescriptor describes one calendar from the user's calendar list.
type CalendarDescriptor struct {
	ID              string `json:"id"`
	Summary         string `json:"summary"`
	Description     string `json:"description"`
	Primary         bool   `json:"primary"`
	AccessRole      string `json:"access_role"`
	ColorID         string `json:"color_id"`
	BackgroundColor string `json:"background_color"`
	ForegroundColor string `json:"foreground_color"`
}

// TimeWindow bounds an event listing. Both ends are inclusive.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// NewTimeWindow returns the window reaching daysBack days before now and
// daysForward days after it.
func NewTimeWindow(now time.Time, daysBack, daysForward int) TimeWindow {
	now = now.UTC()
	return TimeWindow{
		Start: now.AddDate(0, 0, -daysBack),
		End:   now.AddDate(0, 0, daysForward),
	}
}

// Bounds renders the window the way the Calendar API expects timeMin/timeMax.
func (w TimeWindow) Bounds() (string, string) {
	return w.Start.UTC().Format(time.RFC3339), w.End.UTC().Format(time.RFC3339)
}

// ExportDocument is the file written by an export run.
type ExportDocument struct {
	ExportTimestamp  string          `json:"export_timestamp"`
	TotalEvents      int             `json:"total_events"`
	CalendarInfo     any             `json:"calendar_info"` // *CalendarDescriptor or an empty object
	ColorDefinitions json.RawMessage `json:"color_definitions"`
	Events           []EventDetails  `json:"events"`
}
