package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/ledgerkit/bankimport/pkg/config"
	"github.com/ledgerkit/bankimport/pkg/importer"
	"github.com/ledgerkit/bankimport/pkg/ledger"
	"github.com/ledgerkit/bankimport/pkg/models"
)

// maxUploadBytes bounds statement uploads.
const maxUploadBytes = 32 << 20

// Server is the HTTP boundary around the import pipeline. It does request
// plumbing and error mapping only; all semantics live in pkg/importer.
type Server struct {
	config   *config.Config
	logger   *log.Logger
	router   *mux.Router
	importer *importer.Importer
}

// New creates the HTTP server and wires its routes.
func New(cfg *config.Config, logger *log.Logger, imp *importer.Importer) *Server {
	s := &Server{
		config:   cfg,
		logger:   logger,
		router:   mux.NewRouter(),
		importer: imp,
	}
	s.routes()
	return s
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.HandleFunc("/api/import/preview", s.withLogging(s.handlePreview)).Methods(http.MethodPost)
	s.router.HandleFunc("/api/import/apply", s.withLogging(s.handleApply)).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePreview accepts a multipart statement upload and returns the parse
// result untouched. Row-level problems are data, not HTTP errors.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	file, header, err := r.FormFile("statement")
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "read_failed", err)
		return
	}

	res := s.importer.Preview(data, header.Filename)
	if err := s.writeJSON(w, http.StatusOK, res); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// handleApply decodes the batch request, runs the pipeline and maps its
// error taxonomy onto the wire contract. Upstream failures keep their
// original status and body.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req models.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid_payload", err)
		return
	}

	out, err := s.importer.Apply(r.Context(), req)
	if err != nil {
		s.respondApplyError(w, r, err)
		return
	}

	// Pass the upstream response through verbatim.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		s.logger.Warn("failed to write response", "err", err)
	}
}

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status,omitempty"`
	Body   string `json:"body,omitempty"`
}

func (s *Server) respondApplyError(w http.ResponseWriter, r *http.Request, err error) {
	var upstream *ledger.UpstreamError
	switch {
	case errors.Is(err, importer.ErrInvalidPayload):
		s.respondError(w, r, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, importer.ErrAccountNotFound):
		s.respondError(w, r, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, importer.ErrAccountInactive),
		errors.Is(err, importer.ErrAccountMissingFields):
		s.respondError(w, r, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.As(err, &upstream):
		s.logger.Warn("upstream failure", "status", upstream.Status, "method", r.Method, "path", r.URL.Path)
		_ = s.writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:  "upstream",
			Status: upstream.Status,
			Body:   upstream.Body,
		})
	default:
		s.respondError(w, r, http.StatusInternalServerError, "internal", err)
	}
}

// --- helpers ---

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	if err != nil {
		s.logger.Warn("request error", "status", status, "code", code, "err", err, "method", r.Method, "path", r.URL.Path)
	} else {
		s.logger.Warn("request error", "status", status, "code", code, "method", r.Method, "path", r.URL.Path)
	}
	_ = s.writeJSON(w, status, errorResponse{Error: code})
}

// withLogging wraps a handler to log requests and recover panics.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				s.respondError(w, r, http.StatusInternalServerError, "internal", fmt.Errorf("panic: %v", rec))
			}
		}()
		next(w, r)
	}
}
