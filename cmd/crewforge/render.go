package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"

	"github.com/crewforge/crewforge/pkg/pipeline"
	"github.com/crewforge/crewforge/pkg/process"
	"github.com/crewforge/crewforge/pkg/renderers"
	"github.com/crewforge/crewforge/pkg/workflow"
)

// RenderCmd renders code from a saved workflow document without calling a
// model.
type RenderCmd struct {
	Workflow  string `required:"" help:"Path to a saved workflow document (JSON or YAML)." type:"path"`
	Framework string `help:"Override the document's target framework."`
	Format    string `help:"Output format (code, json, both)." default:"code"`
	Output    string `short:"o" help:"Write the artifact to a file instead of stdout." type:"path"`
	Force     bool   `help:"Overwrite the output file without confirmation."`
	Watch     bool   `help:"Re-render whenever the workflow document changes."`
}

func (c *RenderCmd) Run(cli *CLI) error {
	out, err := c.renderOnce()
	if err != nil {
		return err
	}
	if err := writeArtifact(c.Output, c.Force, out); err != nil {
		return err
	}

	if !c.Watch {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("Stopping watch...")
		cancel()
	}()

	return c.watchLoop(ctx)
}

// renderOnce loads the document, settles the process for task frameworks,
// validates, and renders in the requested format.
func (c *RenderCmd) renderOnce() (string, error) {
	cfg, err := workflow.LoadDocument(c.Workflow)
	if err != nil {
		return "", err
	}

	if c.Framework != "" {
		fw, err := workflow.ParseFramework(c.Framework)
		if err != nil {
			return "", err
		}
		cfg.Framework = fw
	}

	// Hand-written documents may leave the process undecided; the selector
	// settles it the same way the generation pipeline would.
	if cfg.Framework.UsesTasks() {
		cfg.Process = process.Select(cfg, "")
	}

	if err := cfg.Validate(); err != nil {
		return "", err
	}

	code, err := renderers.Render(cfg)
	if err != nil {
		return "", err
	}

	format, err := pipeline.ParseOutputFormat(c.Format)
	if err != nil {
		return "", err
	}
	return pipeline.Assemble(format, cfg, code)
}

// watchLoop re-renders on every change to the workflow document until the
// context is cancelled. Render failures are logged, not fatal: a half-saved
// document should not end the session.
func (c *RenderCmd) watchLoop(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files on save,
	// which would drop a file-level watch.
	dir := filepath.Dir(c.Workflow)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	base := filepath.Base(c.Workflow)

	slog.Info("Watching workflow document", "path", c.Workflow)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&fsnotify.Write != fsnotify.Write &&
				event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}

			out, err := c.renderOnce()
			if err != nil {
				slog.Error("Render failed", "path", c.Workflow, "error", err)
				continue
			}
			// Re-renders never prompt; the first write settled ownership
			// of the target.
			if err := writeArtifact(c.Output, true, out); err != nil {
				slog.Error("Write failed", "path", c.Output, "error", err)
				continue
			}
			slog.Info("Re-rendered workflow", "path", c.Workflow)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Watcher error", "error", err)
		}
	}
}
