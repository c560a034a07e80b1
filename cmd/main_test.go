package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"calexport/internal/exporter"
	"calexport/internal/google"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		logger := setupLogger(in)
		assert.True(t, logger.Enabled(context.Background(), want), in)
		assert.False(t, logger.Enabled(context.Background(), want-1), in)
	}
}

func TestExportIsDefaultCommand(t *testing.T) {
	app := newApp(&bytes.Buffer{})
	assert.Equal(t, "export", app.DefaultCommand)

	names := []string{}
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"export", "calendars", "logout"}, names)
}

func TestLogoutCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, google.NewFileStore(path).Save(&google.Credential{AccessToken: "a"}))

	var out bytes.Buffer
	err := newApp(&out).RunContext(context.Background(), []string{"calexport", "--token-file", path, "logout"})
	require.NoError(t, err)

	assert.NoFileExists(t, path)
	assert.Contains(t, out.String(), "Removed cached token")
}

func TestExportWithoutCredentials(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")
	dir := t.TempDir()

	err := newApp(&bytes.Buffer{}).RunContext(context.Background(), []string{
		"calexport",
		"--token-file", filepath.Join(dir, "token.json"),
		"--credentials", filepath.Join(dir, "credentials.json"),
		"--log-level", "error",
		"export",
	})

	assert.ErrorIs(t, err, google.ErrNoCredentialsConfigured)
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out, exporter.Options{DaysBack: 30, DaysForward: 7, AcceptedOnly: true}, &exporter.Summary{
		Fetched:       5,
		Total:         3,
		AllDay:        1,
		Timed:         2,
		WithAttendees: 2,
		Files:         []string{"calendar_export.json", "calendar_export.ics"},
	})

	text := out.String()
	assert.Contains(t, text, "- Total events: 3")
	assert.Contains(t, text, "- Fetched before filtering: 5")
	assert.Contains(t, text, "- Output files: calendar_export.json, calendar_export.ics")
	assert.Contains(t, text, "- Time range: 30 days back to 7 days forward")
	assert.Contains(t, text, "- All-day events: 1")
	assert.Contains(t, text, "- Timed events: 2")
	assert.Contains(t, text, "- Events with attendees: 2")
}

func TestPrintSummaryEmpty(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out, exporter.Options{}, &exporter.Summary{Empty: true})
	assert.Equal(t, "No events found in the specified time range.\n", out.String())
}

type recordedExport struct {
	opts     exporter.Options
	clientID string
	logLevel string
}

// runExport runs the real app with the export action replaced by a recorder.
func runExport(t *testing.T, args ...string) recordedExport {
	t.Helper()
	var got recordedExport
	app := newApp(io.Discard)
	for _, cmd := range app.Commands {
		if cmd.Name == "export" {
			cmd.Action = func(c *cli.Context) error {
				got = recordedExport{
					opts:     exportOptions(c),
					clientID: stringFlag(c, "client-id"),
					logLevel: stringFlag(c, "log-level"),
				}
				return nil
			}
		}
	}
	require.NoError(t, app.RunContext(context.Background(), append([]string{"calexport"}, args...)))
	return got
}

func TestExportFlagPlacement(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		got := runExport(t)
		assert.Equal(t, exporter.Options{
			CalendarID:  "primary",
			Output:      "calendar_export.json",
			DaysBack:    30,
			DaysForward: 30,
			MaxResults:  google.DefaultMaxResults,
		}, got.opts)
	})

	t.Run("export flags without the command name", func(t *testing.T) {
		got := runExport(t, "--calendar-id", "work", "-o", "out.json", "--days-back", "7", "--accepted-only")
		assert.Equal(t, "work", got.opts.CalendarID)
		assert.Equal(t, "out.json", got.opts.Output)
		assert.Equal(t, 7, got.opts.DaysBack)
		assert.Equal(t, 30, got.opts.DaysForward)
		assert.True(t, got.opts.AcceptedOnly)
	})

	t.Run("global flags after the command name", func(t *testing.T) {
		got := runExport(t, "export", "--calendar-id", "work", "--client-id", "x", "--log-level", "debug")
		assert.Equal(t, "work", got.opts.CalendarID)
		assert.Equal(t, "x", got.clientID)
		assert.Equal(t, "debug", got.logLevel)
	})

	t.Run("flags on both sides of the command name", func(t *testing.T) {
		got := runExport(t, "--client-id", "x", "--days-forward", "3", "export", "--output", "b.json")
		assert.Equal(t, "x", got.clientID)
		assert.Equal(t, 3, got.opts.DaysForward)
		assert.Equal(t, "b.json", got.opts.Output)
		assert.Equal(t, "primary", got.opts.CalendarID)
	})
}

func TestDefaultExportReachesAuthentication(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")
	dir := t.TempDir()

	err := newApp(&bytes.Buffer{}).RunContext(context.Background(), []string{
		"calexport",
		"--token-file", filepath.Join(dir, "token.json"),
		"--credentials", filepath.Join(dir, "credentials.json"),
		"--log-level", "error",
		"--calendar-id", "work",
		"-o", filepath.Join(dir, "out.json"),
	})

	assert.ErrorIs(t, err, google.ErrNoCredentialsConfigured)
}
