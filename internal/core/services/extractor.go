package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/papertrail/internal/core/domain"
	"github.com/custodia-labs/papertrail/internal/core/ports/driven"
	"github.com/custodia-labs/papertrail/internal/logger"
)

// ContentExtractor downloads a paper's document and returns its plain text.
// Failures never propagate: they are logged and yield an empty string.
type ContentExtractor struct {
	fetcher   driven.DocumentFetcher
	extractor driven.TextExtractor
}

// NewContentExtractor creates a content extractor.
func NewContentExtractor(fetcher driven.DocumentFetcher, extractor driven.TextExtractor) *ContentExtractor {
	return &ContentExtractor{
		fetcher:   fetcher,
		extractor: extractor,
	}
}

// Extract returns the text at documentURL, or "" if it cannot be obtained.
func (c *ContentExtractor) Extract(ctx context.Context, documentURL string) string {
	text, err := c.extract(ctx, documentURL)
	if err != nil {
		logger.Error("%v", fmt.Errorf("%w: %s: %w", domain.ErrExtractionFailure, documentURL, err))
		return ""
	}
	return text
}

func (c *ContentExtractor) extract(ctx context.Context, documentURL string) (string, error) {
	if documentURL == "" {
		return "", fmt.Errorf("%w: no document URL", domain.ErrInvalidInput)
	}

	data, err := c.fetcher.Fetch(ctx, documentURL)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	logger.Debug("Fetched %d bytes from %s", len(data), documentURL)

	text, err := c.extractor.Extract(ctx, data)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", c.extractor.MIMEType(), err)
	}
	return strings.TrimSpace(text), nil
}
