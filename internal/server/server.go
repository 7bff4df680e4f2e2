// Package server exposes a loaded graph over HTTP: inspection, validation
// and run history, plus the Prometheus scrape endpoint.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/switchback/internal/compiler"
	"github.com/aretw0/switchback/internal/logging"
	"github.com/aretw0/switchback/internal/validator"
	"github.com/aretw0/switchback/pkg/domain"
	"github.com/aretw0/switchback/pkg/runner"
)

// HistoryStore reads persisted run history. The Redis recorder satisfies it.
type HistoryStore interface {
	Runs(ctx context.Context) ([]string, error)
	History(ctx context.Context, runID string) ([]runner.StepRecord, error)
}

// Server serves one loaded graph.
type Server struct {
	graph   *domain.TransitionGraph
	source  string
	history HistoryStore
	logger  *slog.Logger
}

type Option func(*Server)

// WithHistory wires a run history store, enabling the /runs endpoints.
func WithHistory(store HistoryStore) Option {
	return func(s *Server) {
		s.history = store
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler builds the HTTP handler for a loaded graph. sourceRef names the
// description the graph came from and is echoed in responses.
func NewHandler(graph *domain.TransitionGraph, sourceRef string, opts ...Option) http.Handler {
	s := &Server{
		graph:  graph,
		source: sourceRef,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	r.Get("/graph", s.getGraph)
	r.Get("/validate", s.validateLoaded)
	r.Post("/validate", s.validateBody)
	r.Handle("/metrics", promhttp.Handler())
	if s.history != nil {
		r.Get("/runs", s.listRuns)
		r.Get("/runs/{runID}/steps", s.runSteps)
	}
	return r
}

type nodeDTO struct {
	Name        string `json:"name"`
	Module      string `json:"module"`
	Function    string `json:"function"`
	Description string `json:"description,omitempty"`
	IsExit      bool   `json:"is_exit,omitempty"`
	ExitCode    int    `json:"exit_code,omitempty"`
}

type transitionDTO struct {
	FromNode  string `json:"from_node"`
	FromState string `json:"from_state"`
	ToTarget  string `json:"to_target"`
}

type graphDTO struct {
	Metadata    domain.GraphMetadata `json:"metadata"`
	Nodes       []nodeDTO            `json:"nodes"`
	Transitions []transitionDTO      `json:"transitions"`
}

type findingDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type reportDTO struct {
	IsValid  bool         `json:"is_valid"`
	Errors   []findingDTO `json:"errors"`
	Warnings []findingDTO `json:"warnings"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getGraph(w http.ResponseWriter, _ *http.Request) {
	dto := graphDTO{
		Metadata: domain.GraphMetadata{
			Version:       s.graph.Version,
			Entrypoint:    s.graph.Entrypoint,
			Description:   s.graph.Description,
			StartNode:     s.graph.StartNode,
			MaxIterations: s.graph.Options.MaxIterations,
			Source:        s.source,
		},
		Nodes:       make([]nodeDTO, 0, len(s.graph.Nodes)),
		Transitions: make([]transitionDTO, 0, len(s.graph.Transitions)),
	}
	for _, n := range s.graph.Nodes {
		dto.Nodes = append(dto.Nodes, nodeDTO{
			Name:        n.Name,
			Module:      n.Module,
			Function:    n.Function,
			Description: n.Description,
			IsExit:      n.IsExit,
			ExitCode:    n.ExitCode,
		})
	}
	for _, t := range s.graph.Transitions {
		dto.Transitions = append(dto.Transitions, transitionDTO{
			FromNode:  t.FromNode,
			FromState: t.FromState,
			ToTarget:  t.ToTarget,
		})
	}
	s.writeJSON(w, http.StatusOK, dto)
}

func (s *Server) validateLoaded(w http.ResponseWriter, _ *http.Request) {
	s.writeReport(w, validator.Validate(s.graph))
}

// validateBody validates a graph description posted as YAML, without
// touching the loaded graph.
func (s *Server) validateBody(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "cannot read request body", http.StatusBadRequest)
		return
	}

	graph, err := compiler.Parse(body)
	if err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, reportDTO{
			IsValid: false,
			Errors:  []findingDTO{{Code: "PARSE", Message: err.Error()}},
		})
		return
	}
	s.writeReport(w, validator.Validate(graph))
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.history.Runs(r.Context())
	if err != nil {
		s.logger.Error("cannot list runs", "err", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"runs": runs})
}

func (s *Server) runSteps(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	steps, err := s.history.History(r.Context(), runID)
	if err != nil {
		s.logger.Error("cannot load run history", "run_id", runID, "err", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]runner.StepRecord{"steps": steps})
}

func (s *Server) writeReport(w http.ResponseWriter, result validator.Result) {
	report := reportDTO{
		IsValid:  result.IsValid,
		Errors:   make([]findingDTO, 0, len(result.Errors)),
		Warnings: make([]findingDTO, 0, len(result.Warnings)),
	}
	for _, e := range result.Errors {
		report.Errors = append(report.Errors, findingDTO{Code: e.Code, Message: e.Message})
	}
	for _, warn := range result.Warnings {
		report.Warnings = append(report.Warnings, findingDTO{Code: warn.Code, Message: warn.Message})
	}
	status := http.StatusOK
	if !report.IsValid {
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, report)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("cannot encode response", "err", err)
	}
}
