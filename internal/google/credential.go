package google

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Credential is a cached OAuth2 token together with the client identity
// needed to refresh it.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	ClientID     string    `json:"client_id,omitempty"`
	ClientSecret string    `json:"client_secret,omitempty"`
	TokenURL     string    `json:"token_uri,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`

	// AuthStyle is how the client authenticates to TokenURL.
	AuthStyle oauth2.AuthStyle `json:"auth_style,omitempty"`
}

// NewCredential captures tok and the client that issued it.
func NewCredential(tok *oauth2.Token, cfg *oauth2.Config) *Credential {
	c := &Credential{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if cfg != nil {
		c.ClientID = cfg.ClientID
		c.ClientSecret = cfg.ClientSecret
		c.TokenURL = cfg.Endpoint.TokenURL
		c.AuthStyle = cfg.Endpoint.AuthStyle
		c.Scopes = append([]string(nil), cfg.Scopes...)
	}
	return c
}

// Token returns the oauth2 form of the credential.
func (c *Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    c.TokenType,
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry,
	}
}

// Valid reports whether the access token can be used as is.
func (c *Credential) Valid() bool {
	return c != nil && c.Token().Valid()
}

// hasClient reports whether the credential carries enough client identity
// to be refreshed on its own.
func (c *Credential) hasClient() bool {
	return c.ClientID != "" && c.TokenURL != ""
}

// oauthConfig never leaves the auth style to auto-detection, which retries
// a rejected refresh with the other style.
func (c *Credential) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: c.TokenURL, AuthStyle: fixedAuthStyle(c.AuthStyle)},
		Scopes:       c.Scopes,
	}
}

// fixedAuthStyle maps auto-detection to client credentials in the form
// body, the style Google's token endpoint uses.
func fixedAuthStyle(style oauth2.AuthStyle) oauth2.AuthStyle {
	if style == oauth2.AuthStyleAutoDetect {
		return oauth2.AuthStyleInParams
	}
	return style
}

// httpClient returns a client authorized with the credential. When the
// client identity is known the token keeps refreshing for the lifetime of
// the client.
func (c *Credential) httpClient(ctx context.Context) *http.Client {
	if c.hasClient() {
		return c.oauthConfig().Client(ctx, c.Token())
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(c.Token()))
}
