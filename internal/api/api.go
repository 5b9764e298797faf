// Package api exposes the build pipeline and batch store over HTTP.
//
// Endpoints:
//
//	POST   /v1/batches                 build a batch from a JSON request
//	GET    /v1/batches                 list stored batches
//	GET    /v1/batches/{id}            fetch one stored batch
//	DELETE /v1/batches/{id}            delete a stored batch
//	GET    /v1/batches/{id}/topology   render a stored batch (dot or svg)
//	GET    /healthz                    liveness probe
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/yunchaoli/cablerig/pkg/errors"
	"github.com/yunchaoli/cablerig/pkg/pipeline"
	"github.com/yunchaoli/cablerig/pkg/store"
)

// Server wires the pipeline runner and batch store into an HTTP handler.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
}

// NewServer creates a server. A nil logger falls back to the default.
func NewServer(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, store: st, logger: logger}
}

// Routes builds the HTTP routing tree.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1/batches", func(r chi.Router) {
		r.Post("/", s.handleCreateBatch)
		r.Get("/", s.handleListBatches)
		r.Get("/{id}", s.handleGetBatch)
		r.Delete("/{id}", s.handleDeleteBatch)
		r.Get("/{id}/topology", s.handleTopology)
	})

	return r
}

// requestLogger logs one line per request with method, path, status and
// duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createBatchResponse is the POST /v1/batches payload.
type createBatchResponse struct {
	ID        string             `json:"id"`
	BatchHash string             `json:"batch_hash"`
	Stats     pipeline.Stats     `json:"stats"`
	Cache     pipeline.CacheInfo `json:"cache"`
	Artifacts map[string][]byte  `json:"artifacts,omitempty"`
}

func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, apperrors.New(apperrors.ErrCodeInvalidFormat, "decode request: %v", err))
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.store.Put(r.Context(), result.Batch); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStore, err, "store batch"))
		return
	}

	writeJSON(w, http.StatusCreated, createBatchResponse{
		ID:        result.Batch.ID,
		BatchHash: result.BatchHash,
		Stats:     result.Stats,
		Cache:     result.CacheInfo,
		Artifacts: result.Artifacts,
	})
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, apperrors.New(apperrors.ErrCodeInvalidFormat, "invalid limit %q", v))
			return
		}
		limit = n
	}

	summaries, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStore, err, "list batches"))
		return
	}
	if summaries == nil {
		summaries = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	b, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatDOT
	}
	if format != pipeline.FormatDOT && format != pipeline.FormatSVG {
		writeError(w, apperrors.New(apperrors.ErrCodeInvalidFormat,
			"topology format must be dot or svg, got %q", format))
		return
	}
	detailed := r.URL.Query().Get("detailed") == "true"

	b, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	artifacts, err := s.runner.Render(r.Context(), b, pipeline.Options{
		Config:   b.Config,
		Stage:    b.Stage,
		Formats:  []string{format},
		Detailed: detailed,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	switch format {
	case pipeline.FormatSVG:
		w.Header().Set("Content-Type", "image/svg+xml")
	default:
		w.Header().Set("Content-Type", "text/vnd.graphviz")
	}
	_, _ = w.Write(artifacts[format])
}
