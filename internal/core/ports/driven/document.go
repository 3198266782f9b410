package driven

import "context"

// DocumentFetcher downloads the binary content at a document URL.
type DocumentFetcher interface {
	// Fetch returns the body of a successful GET.
	// Non-2xx responses are errors.
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// TextExtractor turns a document binary into plain text.
type TextExtractor interface {
	// Extract returns the plain text of data.
	Extract(ctx context.Context, data []byte) (string, error)

	// MIMEType is the content type the extractor understands.
	MIMEType() string
}
