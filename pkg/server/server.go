// Package server exposes the generation pipeline over HTTP: POST
// /v1/generate runs one request end to end, /healthz answers liveness
// probes, /metrics serves the Prometheus registry. The server is a pure
// caller of the orchestrator; it owns transport concerns only.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/crewforge/crewforge/pkg/config"
	"github.com/crewforge/crewforge/pkg/llms"
	"github.com/crewforge/crewforge/pkg/observability"
	"github.com/crewforge/crewforge/pkg/pipeline"
)

// Generator runs one generation request. *pipeline.Orchestrator implements
// it; tests substitute scripted ones.
type Generator interface {
	Generate(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Server is the HTTP front-end for the generation pipeline.
type Server struct {
	cfg       *config.Config
	generator Generator

	// rebuild constructs a generator for a per-request model override.
	// Replaced in tests.
	rebuild func(model string) (Generator, error)
}

// New creates a server that dispatches generation requests to generator.
func New(cfg *config.Config, generator Generator) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}

	s := &Server{
		cfg:       cfg,
		generator: generator,
	}
	s.rebuild = s.buildForModel
	return s, nil
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully
// within the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.Server.Address(),
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Routes builds the router. Exposed so tests can serve it through httptest.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(logRequests)
	r.Use(instrument)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/metrics", observability.MetricsHandler().ServeHTTP)

	r.Route("/v1", func(r chi.Router) {
		r.With(requireJSON).Post("/generate", s.handleGenerate)
	})

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// generatorFor returns the generator serving a request, building a fresh
// one when the body overrides the configured model.
func (s *Server) generatorFor(model string) (Generator, error) {
	if model == "" || model == s.cfg.LLM.Model {
		return s.generator, nil
	}
	return s.rebuild(model)
}

// buildForModel assembles a client and orchestrator for a model override.
// Construction is in-memory only; no network is touched until the request
// runs.
func (s *Server) buildForModel(model string) (Generator, error) {
	llmCfg := s.cfg.LLM
	llmCfg.Model = model

	client, err := llms.New(&llmCfg)
	if err != nil {
		return nil, err
	}

	cfg := *s.cfg
	cfg.LLM = llmCfg
	return pipeline.New(client, &cfg)
}
