// Package httpapi exposes the vector store over a JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mnemo-cloud/mnemovec/internal/domain"
	"github.com/mnemo-cloud/mnemovec/internal/version"
)

// VectorStore is the store surface the HTTP layer consumes.
type VectorStore interface {
	CreateCollection(ctx context.Context, name string, schema domain.CollectionSchema) error
	DropCollection(ctx context.Context, name string) error
	Collections(ctx context.Context) ([]string, error)
	LoadedCollections(ctx context.Context) ([]string, error)
	Insert(ctx context.Context, name string, records []domain.Record) error
	Query(ctx context.Context, name, expr string, outputFields []string) ([]domain.Record, error)
	Search(ctx context.Context, name string, vector []float32, topK int, expr string) ([]domain.Hit, error)
	Latest(ctx context.Context, name string, limit int) ([]domain.Record, error)
	Delete(ctx context.Context, name, expr string) error
	CheckSchema(ctx context.Context, name string, expected domain.CollectionSchema) error
}

// Embedder turns query text into a vector for text search. Optional.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	store         VectorStore
	embedder      Embedder
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. embedder may be nil, which
// disables text search.
func NewServer(store VectorStore, embedder Embedder, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "collection_not_found"),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(domain.ErrConnectionFailed, http.StatusServiceUnavailable, "engine_unavailable"),
		sentinelHandler(domain.ErrRemoteOp, http.StatusBadGateway, "engine_error"),
		sentinelHandler(domain.ErrMalformedResult, http.StatusBadGateway, "engine_error"),
	}
	return s
}

// Routes mounts all handlers on a chi router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1/collections", func(r chi.Router) {
		r.Post("/", s.handleCreateCollection)
		r.Get("/", s.handleListCollections)
		r.Route("/{name}", func(r chi.Router) {
			r.Delete("/", s.handleDropCollection)
			r.Post("/records", s.handleInsert)
			r.Post("/query", s.handleQuery)
			r.Post("/search", s.handleSearch)
			r.Get("/latest", s.handleLatest)
			r.Post("/delete", s.handleDelete)
			r.Post("/schema/check", s.handleCheckSchema)
		})
	})
}

type createCollectionRequest struct {
	Name   string                  `json:"name"`
	Schema domain.CollectionSchema `json:"schema"`
}

func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "Collection name is required")
		return
	}

	if err := s.store.CreateCollection(r.Context(), req.Name, req.Schema); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": req.Name})
}

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	var (
		names []string
		err   error
	)
	if r.URL.Query().Get("loaded") == "true" {
		names, err = s.store.LoadedCollections(r.Context())
	} else {
		names, err = s.store.Collections(r.Context())
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"collections": names})
}

func (s *Server) handleDropCollection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.store.DropCollection(r.Context(), name); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type insertRequest struct {
	Records []domain.Record `json:"records"`
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req insertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	if err := s.store.Insert(r.Context(), name, req.Records); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"inserted": len(req.Records)})
}

type queryRequest struct {
	Expr         string   `json:"expr"`
	OutputFields []string `json:"output_fields"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	records, err := s.store.Query(r.Context(), name, req.Expr, req.OutputFields)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if records == nil {
		records = []domain.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

type searchRequest struct {
	Vector []float32 `json:"vector,omitempty"`
	Text   string    `json:"text,omitempty"`
	TopK   int       `json:"top_k"`
	Expr   string    `json:"expr,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.TopK <= 0 {
		req.TopK = 10
	}

	vector := req.Vector
	if len(vector) == 0 {
		if req.Text == "" {
			writeError(w, http.StatusBadRequest, "validation_failed", "Either vector or text is required")
			return
		}
		if s.embedder == nil {
			writeError(w, http.StatusNotImplemented, "text_search_disabled",
				"Text search requires an embedding provider")
			return
		}
		var err error
		vector, err = s.embedder.Embed(r.Context(), req.Text)
		if err != nil {
			s.logger.Error("query embedding failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "embedding_error", "Embedding provider error")
			return
		}
	}

	hits, err := s.store.Search(r.Context(), name, vector, req.TopK, req.Expr)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]map[string]any, len(hits))
	for i, h := range hits {
		items[i] = map[string]any{
			"id":       h.ID,
			"distance": h.Distance,
			"entity":   h.Entity,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"hits": items})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "validation_failed", "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.store.Latest(r.Context(), name, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if records == nil {
		records = []domain.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

type deleteRequest struct {
	Expr string `json:"expr"`
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Expr == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "expr is required")
		return
	}

	if err := s.store.Delete(r.Context(), name, req.Expr); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type checkSchemaRequest struct {
	Schema domain.CollectionSchema `json:"schema"`
}

type checkSchemaResponse struct {
	Consistent bool   `json:"consistent"`
	Field      string `json:"field,omitempty"`
	Kind       string `json:"kind,omitempty"`
}

func (s *Server) handleCheckSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req checkSchemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	err := s.store.CheckSchema(r.Context(), name, req.Schema)
	if err == nil {
		writeJSON(w, http.StatusOK, checkSchemaResponse{Consistent: true})
		return
	}

	// A mismatch is a valid check outcome, not a transport failure.
	var mm *domain.SchemaMismatchError
	if errors.As(err, &mm) {
		writeJSON(w, http.StatusOK, checkSchemaResponse{
			Consistent: false,
			Field:      mm.Field,
			Kind:       string(mm.Kind),
		})
		return
	}
	s.handleDomainError(w, err)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidSchema,
		domain.ErrConnectionFailed,
		domain.ErrRemoteOp,
		domain.ErrMalformedResult,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
