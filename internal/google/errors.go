package google

import "errors"

var (
	// ErrNoCredentialsConfigured means no cached token is usable and no auth
	// source is configured to obtain a new one.
	ErrNoCredentialsConfigured = errors.New("no OAuth client credentials configured")
	// ErrAuthorizationFailed means the authorization exchange was rejected or
	// could not be completed.
	ErrAuthorizationFailed = errors.New("authorization failed")
	// ErrTokenRefreshFailed means a cached token could not be refreshed.
	ErrTokenRefreshFailed = errors.New("token refresh failed")
	// ErrServiceUnreachable means a Calendar API call failed.
	ErrServiceUnreachable = errors.New("calendar service unreachable")
	// ErrPersistenceFailed means the credential cache could not be written.
	ErrPersistenceFailed = errors.New("could not persist credentials")

	// errSourceNotConfigured is returned by an AuthSource that has nothing to offer.
	errSourceNotConfigured = errors.New("auth source not configured")
)

// NoCredentialsHelp is shown to the user alongside ErrNoCredentialsConfigured.
const NoCredentialsHelp = `No authentication credentials found.

Provide OAuth2 client credentials in one of these ways:
  1. Pass --client-id and --client-secret.
  2. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET (a .env file works too).
  3. Download an OAuth client file for a desktop app from the Google Cloud
     Console and pass it with --credentials (default: credentials.json).

If you cannot create a Google Cloud project yourself, ask someone who can to
create a desktop OAuth client for you, or use the OAuth2 Playground at
https://developers.google.com/oauthplayground/.`
