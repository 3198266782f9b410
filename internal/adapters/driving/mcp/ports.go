package mcp

import (
	"github.com/custodia-labs/papertrail/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server exposes.
type Ports struct {
	// Search is required.
	Search driving.SearchService

	// The remaining ports are optional; their tools report unavailable when nil.
	Ingest   driving.IngestService
	Backfill driving.BackfillService
	Topics   driving.TopicService
	Status   driving.StatusService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
