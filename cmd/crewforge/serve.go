package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crewforge/crewforge/pkg/llms"
	"github.com/crewforge/crewforge/pkg/observability"
	"github.com/crewforge/crewforge/pkg/pipeline"
	"github.com/crewforge/crewforge/pkg/server"
)

// ServeCmd starts the HTTP generation server.
type ServeCmd struct {
	Host  string `help:"Host to bind (overrides settings)."`
	Port  int    `help:"Port to listen on (overrides settings)." default:"8080"`
	Watch bool   `help:"Watch the settings file for changes."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		cancel()
	}()

	cfg, loader, err := loadSettings(ctx, cli.Config)
	if err != nil {
		return err
	}
	if loader != nil {
		defer loader.Close()
	}

	// CLI flags override settings (conventional behavior)
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 && c.Port != 8080 {
		cfg.Server.Port = c.Port
	}

	// Start settings watching if enabled
	if c.Watch && loader != nil {
		go func() {
			if err := loader.Watch(ctx); err != nil && ctx.Err() == nil {
				slog.Error("Settings watch error", "error", err)
			}
		}()
	}

	obs := observability.NewManager(cfg.Observability)
	if err := obs.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Observability shutdown failed", "error", err)
		}
	}()

	client, err := llms.New(&cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create completion client: %w", err)
	}

	orch, err := pipeline.New(client, cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, orch)
	if err != nil {
		return err
	}

	// Print startup info
	orangeColor := "\033[38;2;249;115;22m"
	resetColor := "\033[0m"
	fmt.Printf("\n%s🚀 CrewForge server ready!%s\n", orangeColor, resetColor)
	fmt.Printf("   Generate:  http://%s/v1/generate\n", cfg.Server.Address())
	fmt.Printf("   Health:    http://%s/healthz\n", cfg.Server.Address())
	fmt.Printf("   Metrics:   http://%s/metrics\n", cfg.Server.Address())
	fmt.Printf("   Provider:  %s (%s)\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Printf("   Framework: %s (default)\n", cfg.Generator.DefaultFramework)
	if cfg.Observability.Tracing.Enabled {
		fmt.Printf("   Tracing:   %s (%s)\n", cfg.Observability.Tracing.Exporter, cfg.Observability.Tracing.Endpoint)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Start server (blocks until the context is cancelled)
	return srv.Start(ctx)
}
