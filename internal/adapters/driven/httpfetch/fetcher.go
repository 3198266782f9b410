// Package httpfetch downloads paper documents over HTTP.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/papertrail/internal/adapters/driven/httpretry"
	"github.com/custodia-labs/papertrail/internal/core/domain"
	"github.com/custodia-labs/papertrail/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.DocumentFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout  = 60 * time.Second
	DefaultMaxBytes = 64 << 20
	userAgent       = "papertrail/1.0"
)

// Config holds configuration for the fetcher.
type Config struct {
	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// MaxBytes caps the downloaded body (default: 64MB).
	MaxBytes int64

	// Attempts is the total number of tries (default: 3).
	Attempts int
}

// Fetcher performs GET requests with retry on 429 and 5xx.
type Fetcher struct {
	client   *httpretry.Client
	maxBytes int64
}

// New creates a fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}

	client := httpretry.New(cfg.Timeout)
	if cfg.Attempts > 0 {
		client.Attempts = cfg.Attempts
	}

	return &Fetcher{
		client:   client,
		maxBytes: cfg.MaxBytes,
	}
}

// Fetch returns the body at url. Non-2xx statuses and bodies over the
// size cap are errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty url", domain.ErrInvalidInput)
	}

	resp, err := f.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("GET %s: body exceeds %d bytes", url, f.maxBytes)
	}
	return data, nil
}
