// Package http exposes the funnel over HTTP with chi.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/setter"
	"github.com/aretw0/setter/internal/presentation/graph"
	"github.com/aretw0/setter/pkg/dialogue"
	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/funnel"
	"github.com/aretw0/setter/pkg/observability"
	"github.com/aretw0/setter/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Server holds the HTTP handlers.
type Server struct {
	Dialogue  *dialogue.Service
	Extractor ports.Extractor
	Streams   *StreamManager

	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithGatherer serves metrics from g on /metrics. Without it the route is absent.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithStreams serves /events from sm. Feed sm with the engine through
// sm.Hooks(); without it the route is absent.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.Streams = sm }
}

// WithExtractor is used by /classify when a category is requested.
// Defaults to the phrasebook extractor.
func WithExtractor(e ports.Extractor) Option {
	return func(s *Server) {
		if e != nil {
			s.Extractor = e
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler creates the HTTP handler for a dialogue service.
func NewHandler(svc *dialogue.Service, opts ...Option) http.Handler {
	s := newServer(svc, opts...)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Post("/process-message", s.ProcessMessage)
	r.Post("/step", s.Step)
	r.Post("/classify", s.Classify)
	r.Delete("/sessions/{userID}", s.DeleteSession)
	r.Get("/graph", s.GetGraph)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.Streams != nil {
		r.Get("/events", s.SubscribeEvents)
	}
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", observability.Handler(s.gatherer))
	}
	return r
}

func newServer(svc *dialogue.Service, opts ...Option) *Server {
	s := &Server{
		Dialogue: svc,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Extractor == nil {
		s.Extractor = defaultExtractor(svc.Engine())
	}
	return s
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ProcessMessage handles POST /process-message.
func (s *Server) ProcessMessage(w http.ResponseWriter, r *http.Request) {
	var req dialogue.Request
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.Dialogue.Process(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("process message failed", "user_id", req.UserID, "err", err)
		} else {
			s.logger.Warn("process message rejected", "user_id", req.UserID, "err", err)
		}
		writeError(w, status, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// StepRequest is a stateless engine call.
type StepRequest struct {
	State      domain.State   `json:"state"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// StepResponse reports the engine's decision without generating a reply.
type StepResponse struct {
	NextState  domain.State   `json:"next_state"`
	Reason     string         `json:"reason"`
	Attributes map[string]any `json:"attributes"`
	Changes    map[string]any `json:"changes,omitempty"`
}

// Step handles POST /step.
func (s *Server) Step(w http.ResponseWriter, r *http.Request) {
	var req StepRequest
	if !s.decode(w, r, &req) {
		return
	}
	msg, err := dialogue.Sanitize(req.Message, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	state := domain.InitialState
	if req.State != "" {
		if state, err = domain.ParseState(string(req.State)); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	attrs := domain.AttributesFromMap(req.Attributes)
	evt, err := s.Dialogue.Engine().Transition(r.Context(), "", state, attrs, msg)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, StepResponse{
		NextState:  evt.To,
		Reason:     evt.Reason,
		Attributes: attrs.ToMap(),
		Changes:    evt.Changes,
	})
}

// ClassifyRequest asks for the detector signals of a message and,
// optionally, one extractor label.
type ClassifyRequest struct {
	Message  string          `json:"message"`
	Category domain.Category `json:"category,omitempty"`
}

// Classify handles POST /classify.
func (s *Server) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if !s.decode(w, r, &req) {
		return
	}
	msg, err := dialogue.Sanitize(req.Message, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp := map[string]any{
		"signals": s.Dialogue.Engine().Detector().Detect(msg),
	}
	if req.Category != "" {
		label, err := s.Extractor.Extract(r.Context(), msg, req.Category)
		if err != nil {
			s.logger.Warn("classify extraction failed", "category", req.Category, "err", err)
		}
		resp["label"] = label
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// DeleteSession handles DELETE /sessions/{userID}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := s.Dialogue.Reset(r.Context(), userID); err != nil {
		s.logger.Error("reset failed", "user_id", userID, "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGraph handles GET /graph. The default is Mermaid; ?format=json returns
// the edge table.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "json" {
		s.writeJSON(w, http.StatusOK, funnel.Edges())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.GenerateMermaid(funnel.Edges(), nil))
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "setter-http",
		"version": setter.Version,
	})
}

// -- Helpers --

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	// Bodies carry a message plus a small attribute bag.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrEmptyUserID),
		errors.Is(err, dialogue.ErrInputTooLarge),
		errors.Is(err, dialogue.ErrInvalidUTF8):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
