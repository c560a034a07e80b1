package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
)

// Prober checks that an authorized client is actually accepted by the API.
type Prober interface {
	Probe(ctx context.Context, client *http.Client) error
}

// Session is an authenticated connection ready for Calendar API calls.
type Session struct {
	Credential *Credential
	// Source names where the credential came from: "cache", "refresh" or an auth source.
	Source string
	Client *http.Client
}

// Manager owns the credential for the duration of a run. It reuses the
// cached token when possible, refreshes it when expired and falls back to a
// full authorization through the first configured AuthSource.
type Manager struct {
	Store      CredentialStore
	Sources    []AuthSource
	Scopes     []string
	Authorizer Authorizer
	Prober     Prober
	Logger     *slog.Logger
}

// NewManager returns a Manager with the default scopes, the local browser
// flow and the calendar list probe.
func NewManager(logger *slog.Logger, store CredentialStore, sources ...AuthSource) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		Store:      store,
		Sources:    sources,
		Scopes:     DefaultScopes,
		Authorizer: &LocalServerFlow{Logger: logger},
		Prober:     CalendarProber{},
		Logger:     logger,
	}
}

// Authenticate produces a validated session.
func (m *Manager) Authenticate(ctx context.Context) (*Session, error) {
	origin := "cache"
	cred := m.loadCached()

	if cred != nil && !cred.Valid() {
		switch {
		case cred.RefreshToken != "":
			refreshed, err := m.refresh(ctx, cred)
			if err != nil {
				m.Logger.Warn("Error refreshing credentials, discarding cached token", "error", err)
				if clearErr := m.Store.Clear(); clearErr != nil {
					m.Logger.Warn("Could not remove cached token", "error", clearErr)
				}
				cred = nil
				break
			}
			cred = refreshed
			origin = "refresh"
			m.persist(cred)
		default:
			m.Logger.Info("Cached token expired and cannot be refreshed")
			cred = nil
		}
	}

	if cred == nil {
		src, c, err := m.authorize(ctx)
		if err != nil {
			return nil, err
		}
		cred = c
		origin = src.Name()
		m.persist(cred)
	}

	client := cred.httpClient(ctx)
	if err := m.Prober.Probe(ctx, client); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnreachable, err)
	}

	m.Logger.Debug("Authenticated with Google Calendar", "source", origin)
	return &Session{Credential: cred, Source: origin, Client: client}, nil
}

// Logout forgets the cached credential.
func (m *Manager) Logout() error {
	return m.Store.Clear()
}

// loadCached returns the stored credential, or nil when there is none or it
// cannot be decoded. An undecodable cache is removed.
func (m *Manager) loadCached() *Credential {
	cred, err := m.Store.Load()
	if err != nil {
		m.Logger.Warn("Ignoring unreadable token cache", "error", err)
		if clearErr := m.Store.Clear(); clearErr != nil {
			m.Logger.Warn("Could not remove cached token", "error", clearErr)
		}
		return nil
	}
	return cred
}

// refresh exchanges the refresh token once. The client identity comes from
// the credential itself, or from the first configured source when the cache
// predates it.
func (m *Manager) refresh(ctx context.Context, cred *Credential) (*Credential, error) {
	var cfg *oauth2.Config
	if cred.hasClient() {
		cfg = cred.oauthConfig()
	} else {
		_, srcCfg, err := selectSource(m.Sources, m.scopes())
		if err != nil {
			return nil, fmt.Errorf("%w: no client to refresh with: %v", ErrTokenRefreshFailed, err)
		}
		cfg = srcCfg
	}

	expired := cred.Token()
	expired.AccessToken = ""
	tok, err := cfg.TokenSource(ctx, expired).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenRefreshFailed, err)
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = cred.RefreshToken
	}
	refreshed := NewCredential(tok, cfg)
	if len(refreshed.Scopes) == 0 {
		refreshed.Scopes = cred.Scopes
	}
	return refreshed, nil
}

// authorize runs the interactive flow with the first configured source.
func (m *Manager) authorize(ctx context.Context) (AuthSource, *Credential, error) {
	src, cfg, err := selectSource(m.Sources, m.scopes())
	if err != nil {
		return nil, nil, err
	}
	m.Logger.Info("Starting Google authorization", "source", src.Name())

	tok, err := m.Authorizer.Authorize(ctx, cfg)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrAuthorizationFailed, err)
	}
	return src, NewCredential(tok, cfg), nil
}

// persist saves cred. Failure only costs a re-authorization on the next run.
func (m *Manager) persist(cred *Credential) {
	if err := m.Store.Save(cred); err != nil {
		m.Logger.Warn("Could not save credentials", "error", fmt.Errorf("%w: %v", ErrPersistenceFailed, err))
	}
}

func (m *Manager) scopes() []string {
	if len(m.Scopes) == 0 {
		return DefaultScopes
	}
	return m.Scopes
}
