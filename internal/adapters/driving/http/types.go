package http

import "github.com/custodia-labs/papertrail/internal/core/domain"

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type searchResponse struct {
	Results []domain.SearchResult `json:"results"`
}

type ingestRequest struct {
	Query string `json:"query"`
}

// ingestResponse keeps the record count under "results".
type ingestResponse struct {
	Message string   `json:"message"`
	Results int      `json:"results"`
	Topics  []string `json:"topics"`
	Papers  int      `json:"papers"`
}

type healthResponse struct {
	Status string             `json:"status"`
	Store  *domain.StoreStats `json:"store,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
