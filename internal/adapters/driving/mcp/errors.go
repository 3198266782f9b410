// Package mcp provides an MCP (Model Context Protocol) server adapter for
// papertrail. It lets AI assistants ingest papers and search their chunks.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// errToolUnavailable is returned by tools whose service is not wired.
var errToolUnavailable = errors.New("mcp: tool not available in this configuration")
