package google

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"calexport/internal/models"

	"golang.org/x/time/rate"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	// DefaultMaxResults caps an event listing when the caller gives no limit.
	DefaultMaxResults = 1000
	// maxPageSize is the largest page the events endpoint returns.
	maxPageSize = 2500
)

// CalendarClient provides read access to the Google Calendar API.
type CalendarClient struct {
	service *calendar.Service
	logger  *slog.Logger
	limiter *rate.Limiter
}

// ClientOptions tune a CalendarClient.
type ClientOptions struct {
	// RequestsPerSecond paces API calls; zero or less means unpaced.
	RequestsPerSecond float64
	// Extra options for the underlying service, e.g. a test endpoint.
	ServiceOptions []option.ClientOption
}

// NewClient creates a Calendar client that sends requests through httpClient,
// typically Session.Client.
func NewClient(ctx context.Context, logger *slog.Logger, httpClient *http.Client, opts ClientOptions) (*CalendarClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	svcOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts.ServiceOptions...)
	service, err := calendar.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &CalendarClient{
		service: service,
		logger:  logger,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// ListCalendars returns every calendar in the user's calendar list.
func (c *CalendarClient) ListCalendars(ctx context.Context) ([]models.CalendarDescriptor, error) {
	var calendars []models.CalendarDescriptor
	pageToken := ""
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		call := c.service.CalendarList.List().Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		list, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to list calendars: %v", ErrServiceUnreachable, err)
		}
		for _, entry := range list.Items {
			calendars = append(calendars, toCalendarDescriptor(entry))
		}

		pageToken = list.NextPageToken
		if pageToken == "" {
			return calendars, nil
		}
	}
}

// FetchEvents lists the events of calendarID inside window, recurring
// events expanded into occurrences and ordered by start time, and
// normalizes them. Pages are followed until maxResults events are collected.
// On error no events are returned.
func (c *CalendarClient) FetchEvents(ctx context.Context, calendarID string, window models.TimeWindow, maxResults int) ([]models.NormalizedEvent, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	timeMin, timeMax := window.Bounds()
	c.logger.Debug("Fetching events", "calendarID", calendarID, "timeMin", timeMin, "timeMax", timeMax, "maxResults", maxResults)

	var items []*calendar.Event
	pageToken := ""
	for len(items) < maxResults {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		call := c.service.Events.List(calendarID).
			TimeMin(timeMin).
			TimeMax(timeMax).
			MaxResults(int64(min(maxResults-len(items), maxPageSize))).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to retrieve events: %v", ErrServiceUnreachable, err)
		}
		items = append(items, page.Items...)

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}
	if len(items) > maxResults {
		items = items[:maxResults]
	}

	events := make([]models.NormalizedEvent, 0, len(items))
	for _, item := range items {
		events = append(events, toNormalizedEvent(item))
	}
	c.logger.Info("Fetched events from Google Calendar", "count", len(events), "calendarID", calendarID)
	return events, nil
}

// ColorDefinitions returns the calendar and event color palettes as served by the API.
func (c *CalendarClient) ColorDefinitions(ctx context.Context) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	colors, err := c.service.Colors.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch colors: %v", ErrServiceUnreachable, err)
	}
	b, err := json.Marshal(colors)
	if err != nil {
		return nil, fmt.Errorf("failed to encode colors: %w", err)
	}
	return b, nil
}

// CalendarProber validates a session with a one-entry calendar list request.
type CalendarProber struct {
	ServiceOptions []option.ClientOption
}

func (p CalendarProber) Probe(ctx context.Context, client *http.Client) error {
	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, p.ServiceOptions...)
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create calendar service: %w", err)
	}
	if _, err := service.CalendarList.List().MaxResults(1).Context(ctx).Do(); err != nil {
		return fmt.Errorf("calendar list probe failed: %w", err)
	}
	return nil
}

func toCalendarDescriptor(entry *calendar.CalendarListEntry) models.CalendarDescriptor {
	d := models.CalendarDescriptor{
		ID:              entry.Id,
		Summary:         entry.Summary,
		Description:     entry.Description,
		Primary:         entry.Primary,
		AccessRole:      entry.AccessRole,
		ColorID:         entry.ColorId,
		BackgroundColor: entry.BackgroundColor,
		ForegroundColor: entry.ForegroundColor,
	}
	if d.Summary == "" {
		d.Summary = "Unknown"
	}
	if d.AccessRole == "" {
		d.AccessRole = "reader"
	}
	return d
}
