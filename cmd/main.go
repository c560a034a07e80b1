package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"calexport/internal/exporter"
	"calexport/internal/google"
	"calexport/internal/publish"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		if errors.Is(err, google.ErrNoCredentialsConfigured) {
			fmt.Fprintln(os.Stderr, google.NoCredentialsHelp)
		}
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	export := exportCommand(out)
	return &cli.App{
		Name:   "calexport",
		Usage:  "Export Google Calendar events with metadata to JSON.",
		Writer: out,
		// Export flags are accepted here too so the default command can be
		// run without naming it.
		Flags: append(globalFlags(), exportFlags()...),
		Commands: []*cli.Command{
			export,
			calendarsCommand(out),
			logoutCommand(out),
		},
		DefaultCommand: export.Name,
	}
}

// globalFlags are accepted by the app and by every command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "credentials", Value: "credentials.json", Usage: "Path to Google OAuth2 client credentials file"},
		&cli.StringFlag{Name: "client-id", Usage: "OAuth2 client ID (alternative to the credentials file)"},
		&cli.StringFlag{Name: "client-secret", Usage: "OAuth2 client secret (alternative to the credentials file)"},
		&cli.StringFlag{Name: "token-file", EnvVars: []string{"CALEXPORT_TOKEN_FILE"}, Usage: "Where to cache the OAuth token (default: XDG data dir)"},
		&cli.Float64Flag{Name: "rps", Value: 5, Usage: "Maximum Calendar API requests per second (0 for no limit)"},
		&cli.StringFlag{Name: "log-level", Value: "info", EnvVars: []string{"LOG_LEVEL"}, Usage: "debug, info, warn or error"},
	}
}

func exportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "calendar-id", Value: "primary", Usage: "Calendar ID to export"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "calendar_export.json", Usage: "Output filename"},
		&cli.IntFlag{Name: "days-back", Value: 30, Usage: "Number of days in the past to fetch"},
		&cli.IntFlag{Name: "days-forward", Value: 30, Usage: "Number of days in the future to fetch"},
		&cli.IntFlag{Name: "max-results", Value: google.DefaultMaxResults, Usage: "Maximum number of events to fetch"},
		&cli.BoolFlag{Name: "accepted-only", Usage: "Only export events that you have accepted or tentatively accepted"},
		&cli.StringFlag{Name: "ics", Usage: "Also write the events as an iCalendar file to this path"},
		&cli.StringFlag{Name: "webdav-url", EnvVars: []string{"WEBDAV_URL"}, Usage: "Upload the export files to this WebDAV collection"},
		&cli.StringFlag{Name: "webdav-username", EnvVars: []string{"WEBDAV_USERNAME"}, Usage: "WebDAV user name"},
		&cli.StringFlag{Name: "webdav-password", EnvVars: []string{"WEBDAV_PASSWORD"}, Usage: "WebDAV password"},
	}
}

// flagScope returns the innermost context in which name was set, so a flag
// given before or after the command name wins over the other level's default.
func flagScope(c *cli.Context, name string) *cli.Context {
	for _, ctx := range c.Lineage() {
		if ctx.IsSet(name) {
			return ctx
		}
	}
	return c
}

func stringFlag(c *cli.Context, name string) string { return flagScope(c, name).String(name) }
func intFlag(c *cli.Context, name string) int { return flagScope(c, name).Int(name) }
func boolFlag(c *cli.Context, name string) bool { return flagScope(c, name).Bool(name) }
func floatFlag(c *cli.Context, name string) float64 { return flagScope(c, name).Float64(name) }

func exportCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export events from a calendar (default command).",
		Flags: append(globalFlags(), exportFlags()...),
		Action: func(c *cli.Context) error {
			logger := setupLogger(stringFlag(c, "log-level"))

			client, err := connect(c, logger)
			if err != nil {
				return err
			}

			var pub exporter.Publisher
			if u := stringFlag(c, "webdav-url"); u != "" {
				p, err := publish.NewPublisher(logger, u, stringFlag(c, "webdav-username"), stringFlag(c, "webdav-password"))
				if err != nil {
					return err
				}
				pub = p
			}

			opts := exportOptions(c)
			logger.Info("Fetching events", "daysBack", opts.DaysBack, "daysForward", opts.DaysForward)
			summary, err := exporter.New(logger, client, pub).Run(c.Context, opts)
			if summary != nil {
				printSummary(out, opts, summary)
			}
			return err
		},
	}
}

func exportOptions(c *cli.Context) exporter.Options {
	return exporter.Options{
		CalendarID:   stringFlag(c, "calendar-id"),
		Output:       stringFlag(c, "output"),
		ICSOutput:    stringFlag(c, "ics"),
		DaysBack:     intFlag(c, "days-back"),
		DaysForward:  intFlag(c, "days-forward"),
		MaxResults:   intFlag(c, "max-results"),
		AcceptedOnly: boolFlag(c, "accepted-only"),
	}
}

func calendarsCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "calendars",
		Usage: "List all available calendars and exit.",
		Flags: globalFlags(),
		Action: func(c *cli.Context) error {
			logger := setupLogger(stringFlag(c, "log-level"))
			client, err := connect(c, logger)
			if err != nil {
				return err
			}
			calendars, err := client.ListCalendars(c.Context)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "Available Calendars:")
			fmt.Fprintln(out, strings.Repeat("-", 20))
			for _, cal := range calendars {
				primary := ""
				if cal.Primary {
					primary = " (PRIMARY)"
				}
				fmt.Fprintf(out, "ID: %s\nName: %s%s\nAccess: %s\n", cal.ID, cal.Summary, primary, cal.AccessRole)
				if cal.Description != "" {
					fmt.Fprintf(out, "Description: %s\n", cal.Description)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func logoutCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Remove the cached OAuth token.",
		Flags: globalFlags(),
		Action: func(c *cli.Context) error {
			logger := setupLogger(stringFlag(c, "log-level"))
			store := google.NewFileStore(stringFlag(c, "token-file"))
			if err := google.NewManager(logger, store).Logout(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed cached token %s\n", store.Path)
			return nil
		},
	}
}

// connect authenticates and returns a Calendar client for the session.
// Auth sources are tried in order: flags, environment, credentials file.
func connect(c *cli.Context, logger *slog.Logger) (*google.CalendarClient, error) {
	manager := google.NewManager(logger, google.NewFileStore(stringFlag(c, "token-file")),
		google.ExplicitSource{Label: "flags", ClientID: stringFlag(c, "client-id"), ClientSecret: stringFlag(c, "client-secret")},
		google.EnvSource(),
		google.FileSource{Path: stringFlag(c, "credentials")},
	)

	logger.Info("Authenticating with Google Calendar API")
	session, err := manager.Authenticate(c.Context)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	logger.Info("Authentication successful", "source", session.Source)

	return google.NewClient(c.Context, logger, session.Client, google.ClientOptions{
		RequestsPerSecond: floatFlag(c, "rps"),
	})
}

func printSummary(out io.Writer, opts exporter.Options, s *exporter.Summary) {
	if s.Empty {
		fmt.Fprintln(out, "No events found in the specified time range.")
		return
	}
	fmt.Fprintln(out, "Export Summary:")
	fmt.Fprintf(out, "- Total events: %d\n", s.Total)
	if opts.AcceptedOnly {
		fmt.Fprintf(out, "- Fetched before filtering: %d\n", s.Fetched)
	}
	fmt.Fprintf(out, "- Output files: %s\n", strings.Join(s.Files, ", "))
	fmt.Fprintf(out, "- Time range: %d days back to %d days forward\n", opts.DaysBack, opts.DaysForward)
	fmt.Fprintf(out, "- All-day events: %d\n", s.AllDay)
	fmt.Fprintf(out, "- Timed events: %d\n", s.Timed)
	fmt.Fprintf(out, "- Events with attendees: %d\n", s.WithAttendees)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
