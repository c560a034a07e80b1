package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"calexport/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exportTime = time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)

func sampleEvents() []models.NormalizedEvent {
	timed := models.NormalizedEvent{
		EventDetails: models.EventDetails{
			ID:             "evt-1",
			Summary:        "Planning <Q2>",
			StartTime:      "2024-03-14T09:00:00Z",
			EndTime:        "2024-03-14T10:00:00Z",
			Organizer:      models.Organizer{Email: "me@example.com", Self: true},
			AttendeesCount: 2,
		},
		Attendees: []models.Attendee{
			{Email: "me@example.com", ResponseStatus: models.ResponseAccepted, Self: true},
			{Email: "b@example.com", ResponseStatus: models.ResponseTentative},
		},
	}
	allDay := models.NormalizedEvent{
		EventDetails: models.EventDetails{
			ID:        "evt-2",
			Summary:   "Offsite",
			StartTime: "2024-03-20",
			EndTime:   "2024-03-21",
			AllDay:    true,
		},
		Attendees: []models.Attendee{},
	}
	return []models.NormalizedEvent{timed, allDay}
}

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestAssembleDocument(t *testing.T) {
	cal := &models.CalendarDescriptor{ID: "me@example.com", Summary: "Me", Primary: true, AccessRole: "owner"}
	doc := Assemble(sampleEvents(), cal, json.RawMessage(`{"event":{}}`), exportTime)

	data, err := MarshalDocument(doc)
	require.NoError(t, err)
	out := decode(t, data)

	assert.Equal(t, "2024-03-15T12:30:00Z", out["export_timestamp"])
	assert.EqualValues(t, 2, out["total_events"])
	assert.Equal(t, "me@example.com", out["calendar_info"].(map[string]any)["id"])
	assert.Equal(t, map[string]any{"event": map[string]any{}}, out["color_definitions"])

	events := out["events"].([]any)
	require.Len(t, events, 2)
	first := events[0].(map[string]any)
	assert.Equal(t, "evt-1", first["id"])
	assert.EqualValues(t, 2, first["attendees_count"])
	assert.NotContains(t, first, "attendees")
	assert.Equal(t, map[string]any{"email": "me@example.com", "self": true}, first["organizer"])
	assert.Equal(t, true, events[1].(map[string]any)["all_day"])
}

func TestAssembleDefaults(t *testing.T) {
	doc := Assemble(nil, nil, nil, exportTime)

	data, err := MarshalDocument(doc)
	require.NoError(t, err)
	out := decode(t, data)

	assert.Equal(t, map[string]any{}, out["calendar_info"])
	assert.Equal(t, map[string]any{}, out["color_definitions"])
	assert.Equal(t, []any{}, out["events"])
	assert.EqualValues(t, 0, out["total_events"])
}

func TestAssembleTotalMatchesEvents(t *testing.T) {
	events := sampleEvents()
	doc := Assemble(events, nil, nil, exportTime)
	assert.Equal(t, len(events), doc.TotalEvents)
	assert.Len(t, doc.Events, doc.TotalEvents)
}

func TestMarshalDocumentFormatting(t *testing.T) {
	data, err := MarshalDocument(Assemble(sampleEvents(), nil, nil, exportTime))
	require.NoError(t, err)

	assert.Contains(t, string(data), "\n  \"export_timestamp\"")
	// HTML characters stay readable.
	assert.Contains(t, string(data), "Planning <Q2>")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, WriteFile(path, []byte("new")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFileFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing", "export.json")

	err := WriteFile(path, []byte("data"))
	assert.ErrorIs(t, err, ErrExportWriteFailed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteFileOntoDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "export.json")
	require.NoError(t, os.Mkdir(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), nil, 0o644))

	err := WriteFile(target, []byte("data"))
	assert.ErrorIs(t, err, ErrExportWriteFailed)

	// Only the directory remains; the temporary file was removed.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "export.json", entries[0].Name())
}
