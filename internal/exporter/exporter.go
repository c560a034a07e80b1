package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"calexport/internal/acceptance"
	"calexport/internal/ics"
	"calexport/internal/models"
)

// EventSource is the read side of the calendar service.
type EventSource interface {
	ListCalendars(ctx context.Context) ([]models.CalendarDescriptor, error)
	FetchEvents(ctx context.Context, calendarID string, window models.TimeWindow, maxResults int) ([]models.NormalizedEvent, error)
	ColorDefinitions(ctx context.Context) (json.RawMessage, error)
}

// Publisher receives copies of the written export files.
type Publisher interface {
	Upload(ctx context.Context, name string, data []byte) error
}

// Options describe one export run.
type Options struct {
	CalendarID   string
	Output       string
	ICSOutput    string // optional
	DaysBack     int
	DaysForward  int
	MaxResults   int
	AcceptedOnly bool
}

// Summary reports what an export run did.
type Summary struct {
	// Empty is set when the window held no events and nothing was written.
	Empty         bool
	Calendar      *models.CalendarDescriptor
	Fetched       int
	Total         int
	AllDay        int
	Timed         int
	WithAttendees int
	Files         []string
}

// Exporter orchestrates an export from a calendar to files.
type Exporter struct {
	logger    *slog.Logger
	source    EventSource
	publisher Publisher
	now       func() time.Time
}

// New creates an Exporter. publisher may be nil.
func New(logger *slog.Logger, source EventSource, publisher Publisher) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		logger:    logger,
		source:    source,
		publisher: publisher,
		now:       time.Now,
	}
}

// Run performs a full export. When only the optional iCalendar step fails,
// the summary of the completed JSON export is returned with the error.
func (e *Exporter) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.CalendarID == "" {
		opts.CalendarID = "primary"
	}
	summary := &Summary{Calendar: e.calendarInfo(ctx, opts.CalendarID)}
	if summary.Calendar != nil {
		e.logger.Info("Exporting from calendar", "calendar", summary.Calendar.Summary)
	} else {
		e.logger.Info("Exporting from calendar ID", "calendarID", opts.CalendarID)
	}

	window := models.NewTimeWindow(e.now(), opts.DaysBack, opts.DaysForward)
	events, err := e.source.FetchEvents(ctx, opts.CalendarID, window, opts.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	summary.Fetched = len(events)
	if len(events) == 0 {
		e.logger.Info("No events found in the specified time range")
		summary.Empty = true
		return summary, nil
	}

	if opts.AcceptedOnly {
		for _, ev := range events {
			d := acceptance.Decide(ev)
			e.logger.Debug("Acceptance decision", "id", ev.ID, "accepted", d.Accepted, "strategy", d.Strategy)
		}
		events = acceptance.Filter(events)
		e.logger.Info("Filtered to accepted/tentative events", "count", len(events), "fetched", summary.Fetched)
	}

	colors, err := e.source.ColorDefinitions(ctx)
	if err != nil {
		e.logger.Error("Could not fetch color definitions", "error", err)
		colors = nil
	}

	now := e.now()
	doc := Assemble(events, summary.Calendar, colors, now)
	data, err := MarshalDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportWriteFailed, err)
	}
	if err := WriteFile(opts.Output, data); err != nil {
		return nil, err
	}
	summary.Files = append(summary.Files, opts.Output)
	e.logger.Info("Successfully exported events", "count", len(events), "file", opts.Output)
	if err := e.publish(ctx, opts.Output, data); err != nil {
		return nil, err
	}

	summary.Total = len(events)
	for _, ev := range events {
		if ev.AllDay {
			summary.AllDay++
		}
		if ev.AttendeesCount > 0 {
			summary.WithAttendees++
		}
	}
	summary.Timed = summary.Total - summary.AllDay

	if opts.ICSOutput != "" {
		if err := e.writeICS(ctx, opts.ICSOutput, summary, events, now); err != nil {
			return summary, fmt.Errorf("events exported to %s, but the iCalendar export failed: %w", opts.Output, err)
		}
	}
	return summary, nil
}

func (e *Exporter) writeICS(ctx context.Context, path string, summary *Summary, events []models.NormalizedEvent, now time.Time) error {
	name := ""
	if summary.Calendar != nil {
		name = summary.Calendar.Summary
	}
	data, err := ics.Marshal(name, events, now)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExportWriteFailed, err)
	}
	if err := WriteFile(path, data); err != nil {
		return err
	}
	summary.Files = append(summary.Files, path)
	e.logger.Info("Wrote iCalendar file", "file", path)
	return e.publish(ctx, path, data)
}

// calendarInfo looks calendarID up in the calendar list. Failure only costs
// the metadata, so it is logged and nil is returned.
func (e *Exporter) calendarInfo(ctx context.Context, calendarID string) *models.CalendarDescriptor {
	calendars, err := e.source.ListCalendars(ctx)
	if err != nil {
		e.logger.Error("An error occurred while fetching calendars", "error", err)
		return nil
	}
	for i := range calendars {
		if calendars[i].ID == calendarID || (calendarID == "primary" && calendars[i].Primary) {
			return &calendars[i]
		}
	}
	return nil
}

func (e *Exporter) publish(ctx context.Context, file string, data []byte) error {
	if e.publisher == nil {
		return nil
	}
	if err := e.publisher.Upload(ctx, file, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", file, err)
	}
	return nil
}
