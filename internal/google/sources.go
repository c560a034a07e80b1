package google

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// DefaultScopes are requested when the manager is not told otherwise.
var DefaultScopes = []string{calendar.CalendarReadonlyScope}

// loopbackRedirect is replaced by the local flow with the address it listens on.
const loopbackRedirect = "http://localhost"

// AuthSource is one place OAuth2 client credentials can come from. Config
// returns errSourceNotConfigured when the source has nothing to offer, which
// lets the manager move on to the next source.
type AuthSource interface {
	Name() string
	Config(scopes []string) (*oauth2.Config, error)
}

// ExplicitSource holds a client id and secret supplied directly, e.g. on the
// command line or through the environment.
type ExplicitSource struct {
	Label        string
	ClientID     string
	ClientSecret string
	// Endpoint defaults to Google's.
	Endpoint oauth2.Endpoint
}

func (s ExplicitSource) Name() string {
	if s.Label == "" {
		return "explicit"
	}
	return s.Label
}

// Config builds the installed-app client configuration in memory.
func (s ExplicitSource) Config(scopes []string) (*oauth2.Config, error) {
	if s.ClientID == "" || s.ClientSecret == "" {
		return nil, errSourceNotConfigured
	}
	endpoint := s.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	endpoint.AuthStyle = fixedAuthStyle(endpoint.AuthStyle)
	return &oauth2.Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		RedirectURL:  loopbackRedirect,
		Scopes:       scopes,
		Endpoint:     endpoint,
	}, nil
}

// EnvSource reads the client id and secret from GOOGLE_CLIENT_ID and
// GOOGLE_CLIENT_SECRET.
func EnvSource() ExplicitSource {
	return ExplicitSource{
		Label:        "environment",
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
	}
}

// FileSource reads a client secrets file downloaded from the Google Cloud Console.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

// Config parses the client secrets file. A missing file means the source is
// not configured; an unreadable or malformed one is an error.
func (s FileSource) Config(scopes []string) (*oauth2.Config, error) {
	if s.Path == "" {
		return nil, errSourceNotConfigured
	}
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errSourceNotConfigured
		}
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	if config.RedirectURL == "" {
		config.RedirectURL = loopbackRedirect
	}
	config.Endpoint.AuthStyle = fixedAuthStyle(config.Endpoint.AuthStyle)
	return config, nil
}

// selectSource walks sources in priority order and returns the first one
// that is configured.
func selectSource(sources []AuthSource, scopes []string) (AuthSource, *oauth2.Config, error) {
	for _, src := range sources {
		cfg, err := src.Config(scopes)
		if errors.Is(err, errSourceNotConfigured) {
			continue
		}
		if err != nil {
			return src, nil, fmt.Errorf("%w: source %s: %v", ErrAuthorizationFailed, src.Name(), err)
		}
		return src, cfg, nil
	}
	return nil, nil, ErrNoCredentialsConfigured
}
