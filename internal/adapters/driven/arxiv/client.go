// Package arxiv queries the arXiv export API for papers on a topic.
package arxiv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/papertrail/internal/core/domain"
	"github.com/custodia-labs/papertrail/internal/core/ports/driven"
	"github.com/custodia-labs/papertrail/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.PaperSource = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL         = "http://export.arxiv.org"
	DefaultRequestInterval = 3 * time.Second
	DefaultTimeout         = 30 * time.Second

	// maxFeedBytes bounds the Atom response read into memory.
	maxFeedBytes = 16 << 20
)

// Config holds configuration for the arXiv client.
type Config struct {
	// BaseURL is the API root (default: http://export.arxiv.org).
	BaseURL string

	// RequestInterval is the minimum spacing between requests (default: 3s).
	// Negative disables limiting.
	RequestInterval time.Duration

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// Client is a rate-limited arXiv API client. Safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
}

// NewClient creates a new arXiv client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestInterval == 0 {
		cfg.RequestInterval = DefaultRequestInterval
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	limit := rate.Inf
	if cfg.RequestInterval > 0 {
		limit = rate.Every(cfg.RequestInterval)
	}

	return &Client{
		http:    cfg.HTTPClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Name identifies the source in logs.
func (c *Client) Name() string {
	return "arxiv"
}

// Search returns up to maxResults papers for topic in feed order. Any
// failure is logged with the topic and reported as ErrUpstreamUnavailable.
func (c *Client) Search(ctx context.Context, topic string, maxResults int) ([]domain.PaperDescriptor, error) {
	if maxResults <= 0 {
		maxResults = domain.DefaultMaxResults
	}

	papers, err := c.search(ctx, topic, maxResults)
	if err != nil {
		logger.Error("arxiv: fetching papers for %q: %v", topic, err)
		return nil, fmt.Errorf("%w: arxiv query %q", domain.ErrUpstreamUnavailable, topic)
	}
	logger.Debug("arxiv: %d papers for %q", len(papers), topic)
	return papers, nil
}

func (c *Client) search(ctx context.Context, topic string, maxResults int) ([]domain.PaperDescriptor, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.queryURL(topic, maxResults), http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	return parseFeed(data)
}

func (c *Client) queryURL(topic string, maxResults int) string {
	q := url.Values{}
	q.Set("search_query", "all:"+topic)
	q.Set("start", "0")
	q.Set("max_results", strconv.Itoa(maxResults))
	return c.baseURL + "/api/query?" + q.Encode()
}
