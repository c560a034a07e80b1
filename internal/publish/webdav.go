// Package publish uploads finished export files to a WebDAV collection.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"

	"github.com/emersion/go-webdav"
)

const userAgent = "calexport/1.0"

// basicAuthTransport adds Basic Auth and the user agent to each request.
type basicAuthTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

// RoundTrip adds required headers and authentication to each request.
func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.Username != "" {
		req.SetBasicAuth(t.Username, t.Password)
	}
	req.Header.Set("User-Agent", userAgent)
	return t.Transport.RoundTrip(req)
}

// Publisher writes files into one WebDAV collection.
type Publisher struct {
	client   *webdav.Client
	logger   *slog.Logger
	endpoint string
}

// NewPublisher creates a Publisher for the collection at endpoint.
func NewPublisher(logger *slog.Logger, endpoint, username, password string) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := &http.Client{Transport: &basicAuthTransport{
		Username:  username,
		Password:  password,
		Transport: http.DefaultTransport,
	}}

	client, err := webdav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create webdav client: %w", err)
	}
	return &Publisher{client: client, logger: logger, endpoint: endpoint}, nil
}

// Upload stores data as name inside the collection, replacing any existing file.
func (p *Publisher) Upload(ctx context.Context, name string, data []byte) error {
	name = path.Base(name)
	w, err := p.client.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to create %s on WebDAV server: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}

	p.logger.Info("Published export", "file", name, "endpoint", p.endpoint, "bytes", len(data))
	return nil
}
