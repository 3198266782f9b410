// Package http exposes papertrail over a small JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/custodia-labs/papertrail/internal/core/domain"
	"github.com/custodia-labs/papertrail/internal/core/ports/driving"
	"github.com/custodia-labs/papertrail/internal/logger"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":3000"

// maxRequestBytes bounds request bodies.
const maxRequestBytes = 1 << 20

// ErrMissingService is returned when a required service is not provided.
var ErrMissingService = errors.New("http: ingest, search and backfill services are required")

// Services are the driving ports the API serves.
type Services struct {
	Ingest   driving.IngestService
	Search   driving.SearchService
	Backfill driving.BackfillService

	// Status is optional; health omits store counts without it.
	Status driving.StatusService
}

// Server is the HTTP API server.
type Server struct {
	services Services
	addr     string
	handler  http.Handler
}

// NewServer creates a server listening on addr.
func NewServer(services Services, addr string) (*Server, error) {
	if services.Ingest == nil || services.Search == nil || services.Backfill == nil {
		return nil, ErrMissingService
	}
	if addr == "" {
		addr = DefaultAddr
	}

	s := &Server{services: services, addr: addr}
	s.handler = corsMiddleware(loggingMiddleware(s.routes()))
	return s, nil
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("POST /api/ingest", s.handleIngest)
	mux.HandleFunc("POST /api/backfill", s.handleBackfill)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("http: listening on %s", s.addr)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Server is running!"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.services.Status != nil {
		stats, err := s.services.Status.Stats(r.Context())
		if err != nil {
			logger.Error("http: health stats: %v", err)
			resp.Status = "degraded"
		} else {
			resp.Store = &stats
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	results, err := s.services.Search.Search(r.Context(), req.Query, domain.SearchOptions{Limit: req.Limit})
	if err != nil {
		writeError(w, "search", err)
		return
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	res, err := s.services.Ingest.Ingest(r.Context(), req.Query)
	if err != nil {
		writeError(w, "ingest", err)
		return
	}
	writeJSON(w, http.StatusOK, ingestResponse{
		Message: "Results successfully ingested",
		Results: res.Records,
		Topics:  res.Topics,
		Papers:  len(res.Papers),
	})
}

func (s *Server) handleBackfill(w http.ResponseWriter, r *http.Request) {
	res, err := s.services.Backfill.Backfill(r.Context())
	if err != nil {
		writeError(w, "backfill", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// decodeRequest reads a JSON body into v, writing a 400 on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body."})
		return false
	}
	return true
}

// writeError answers 400 for an empty query and a generic 500 otherwise.
// The cause is logged, never returned.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Query parameter is required."})
	default:
		logger.Error("http: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{Error: "An error occurred while processing your request."})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("http: encoding response: %v", err)
	}
}
