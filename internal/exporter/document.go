package exporter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"calexport/internal/models"
)

// ErrExportWriteFailed means the export file could not be written.
var ErrExportWriteFailed = errors.New("export write failed")

var emptyObject = json.RawMessage(`{}`)

// Assemble builds the export document. Attendee details are dropped; each
// event keeps its attendee count. A nil calendarInfo or empty colors are
// exported as empty objects.
func Assemble(events []models.NormalizedEvent, calendarInfo *models.CalendarDescriptor, colors json.RawMessage, now time.Time) models.ExportDocument {
	doc := models.ExportDocument{
		ExportTimestamp:  now.UTC().Format(time.RFC3339),
		TotalEvents:      len(events),
		CalendarInfo:     struct{}{},
		ColorDefinitions: colors,
		Events:           make([]models.EventDetails, 0, len(events)),
	}
	if calendarInfo != nil {
		doc.CalendarInfo = calendarInfo
	}
	if len(doc.ColorDefinitions) == 0 {
		doc.ColorDefinitions = emptyObject
	}
	for _, ev := range events {
		doc.Events = append(doc.Events, ev.EventDetails)
	}
	return doc
}

// MarshalDocument renders doc as two-space indented UTF-8 JSON.
func MarshalDocument(doc models.ExportDocument) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes data to path all at once: it goes to a temporary file in
// the same directory first and is renamed into place.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExportWriteFailed, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: %v", ErrExportWriteFailed, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: %v", ErrExportWriteFailed, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("%w: %v", ErrExportWriteFailed, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("%w: %v", ErrExportWriteFailed, err)
	}
	return nil
}
