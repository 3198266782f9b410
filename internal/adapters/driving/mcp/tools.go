package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/papertrail/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"natural language query to match against ingested paper chunks"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []domain.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Query string `json:"query" jsonschema:"research interest to expand into topics and fetch papers for"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	Topics        []string      `json:"topics"`
	Papers        []PaperOutput `json:"papers"`
	SkippedPapers int           `json:"skipped_papers"`
	Records       int           `json:"records"`
}

// PaperOutput is a paper returned by the ingest tool.
type PaperOutput struct {
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Link      string   `json:"link"`
	Published string   `json:"published"`
}

// TopicsInput is the input schema for the topics tool.
type TopicsInput struct {
	Query string `json:"query" jsonschema:"research interest to expand into topics"`
}

// TopicsOutput is the output schema for the topics tool.
type TopicsOutput struct {
	Topics []string `json:"topics"`
}

// BackfillInput takes no arguments.
type BackfillInput struct{}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the ingested paper chunks closest to a query by embedding distance",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest",
		Description: "Expand a query into research topics, fetch matching arXiv papers and store their text",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "topics",
		Description: "Preview the research topics a query expands into without fetching papers",
	}, s.handleTopics)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "backfill",
		Description: "Generate embeddings for stored chunks that do not have one yet",
	}, s.handleBackfill)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	results, err := s.ports.Search.Search(ctx, input.Query, domain.SearchOptions{Limit: limit})
	if err != nil {
		return nil, SearchOutput{}, err
	}
	if results == nil {
		results = []domain.SearchResult{}
	}

	return nil, SearchOutput{Results: results, Count: len(results)}, nil
}

func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestOutput{}, errToolUnavailable
	}

	res, err := s.ports.Ingest.Ingest(ctx, input.Query)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	out := IngestOutput{
		Topics:        res.Topics,
		Papers:        make([]PaperOutput, len(res.Papers)),
		SkippedPapers: res.SkippedPapers,
		Records:       res.Records,
	}
	for i, p := range res.Papers {
		out.Papers[i] = PaperOutput{
			Title:     p.Title,
			Authors:   p.Authors,
			Link:      p.Link,
			Published: p.Published.Format("2006-01-02"),
		}
	}
	return nil, out, nil
}

func (s *Server) handleTopics(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TopicsInput,
) (*mcp.CallToolResult, TopicsOutput, error) {
	if s.ports.Topics == nil {
		return nil, TopicsOutput{}, errToolUnavailable
	}

	topics, err := s.ports.Topics.Expand(ctx, input.Query)
	if err != nil {
		return nil, TopicsOutput{}, err
	}
	return nil, TopicsOutput{Topics: topics}, nil
}

func (s *Server) handleBackfill(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ BackfillInput,
) (*mcp.CallToolResult, domain.BackfillResult, error) {
	if s.ports.Backfill == nil {
		return nil, domain.BackfillResult{}, errToolUnavailable
	}

	res, err := s.ports.Backfill.Backfill(ctx)
	if err != nil {
		return nil, domain.BackfillResult{}, err
	}
	return nil, *res, nil
}
