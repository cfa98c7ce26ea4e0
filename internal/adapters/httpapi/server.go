// Package httpapi exposes graph execution over HTTP. Graphs are
// registered up front; clients start runs against them by name and get
// the final state back, or resume from a stored checkpoint.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stategraph/stategraph/internal/app/dto"
	"github.com/stategraph/stategraph/internal/app/engine"
	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/internal/core/graph"
	"github.com/stategraph/stategraph/internal/core/state"
	"github.com/stategraph/stategraph/internal/infrastructure/logging"
)

// Server holds the registered graphs and the engine that runs them.
type Server struct {
	mu     sync.RWMutex
	graphs map[string]*graph.CompiledGraph

	engine *engine.Engine
	saver  checkpoint.Saver
	log    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.log = logger
		s.engine = engine.New(engine.WithLogger(logger))
	}
}

// WithSaver enables checkpointing for every run and resume support.
func WithSaver(saver checkpoint.Saver) Option {
	return func(s *Server) { s.saver = saver }
}

// New creates a server with no graphs registered.
func New(opts ...Option) *Server {
	s := &Server{
		graphs: make(map[string]*graph.CompiledGraph),
		engine: engine.New(),
		log:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register makes a compiled graph runnable by name. Re-registering a
// name replaces the earlier graph.
func (s *Server) Register(g *graph.CompiledGraph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[g.Name()] = g
}

func (s *Server) graph(name string) (*graph.CompiledGraph, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.graphs[name]
	return g, ok
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Get("/graphs", s.handleListGraphs)
		r.Get("/graphs/{name}", s.handleGetGraph)
		r.Post("/runs", s.handleRun)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	names := make([]string, 0, len(s.graphs))
	for name := range s.graphs {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	writeJSON(w, http.StatusOK, map[string]any{"graphs": names})
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	g, ok := s.graph(name)
	if !ok {
		writeError(w, http.StatusNotFound, dto.ErrUnknownGraph)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":     g.Name(),
		"entry":    g.Entry(),
		"nodes":    g.Nodes(),
		"fields":   g.Schema().Fields(),
		"warnings": g.Warnings(),
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req dto.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	g, ok := s.graph(req.Graph)
	if !ok {
		writeError(w, http.StatusNotFound, dto.ErrUnknownGraph)
		return
	}

	opts := req.Options()
	if s.saver != nil {
		opts = append(opts, engine.WithCheckpoints(s.saver, 1))
	}

	var res *engine.Result
	var err error
	if req.ResumeFrom != "" {
		if s.saver == nil {
			writeError(w, http.StatusBadRequest, errors.New("resume requires a checkpoint store"))
			return
		}
		res, err = s.engine.Resume(r.Context(), g, s.saver, req.ResumeFrom, opts...)
	} else {
		res, err = s.engine.Run(r.Context(), g, state.State(req.Input), opts...)
	}

	if res == nil {
		// Rejected before the first step: bad initial state or a bad
		// checkpoint reference.
		status := http.StatusBadRequest
		if errors.Is(err, checkpoint.ErrCheckpointNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}

	s.log.Info("run handled", "graph", req.Graph, "run_id", res.RunID, "status", res.Status)
	writeJSON(w, http.StatusOK, dto.FromResult(res, err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
