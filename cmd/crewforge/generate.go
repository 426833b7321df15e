package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/crewforge/crewforge/pkg/config"
	"github.com/crewforge/crewforge/pkg/llms"
	"github.com/crewforge/crewforge/pkg/pipeline"
)

// GenerateCmd generates workflow code from a free-text request.
type GenerateCmd struct {
	Text string `arg:"" name:"request" help:"Free-text description of the workflow to generate." placeholder:"TEXT"`

	Framework string `help:"Target framework (crewai, crewai-flow, langgraph, react, react-lcel)."`
	Provider  string `help:"LLM provider (openai, anthropic, gemini, ollama)."`
	Model     string `help:"Model name."`
	APIKey    string `name:"api-key" help:"API key (defaults to the provider's environment variable)."`
	BaseURL   string `name:"base-url" help:"Custom API base URL."`
	Process   string `help:"Process type (auto, sequential, hierarchical)." default:"auto"`
	Format    string `help:"Output format (code, json, both)." default:"code"`
	Output    string `short:"o" help:"Write the artifact to a file instead of stdout." type:"path"`
	Force     bool   `help:"Overwrite the output file without confirmation."`
}

func (c *GenerateCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("Interrupted, cancelling generation...")
		cancel()
	}()

	cfg, loader, err := loadSettings(ctx, cli.Config)
	if err != nil {
		return err
	}
	if loader != nil {
		defer loader.Close()
	}

	// CLI flags override settings. Switching the provider re-resolves the
	// model, API key, and base URL for the new provider.
	if c.Provider != "" && c.Provider != string(cfg.LLM.Provider) {
		cfg.LLM.Provider = config.LLMProvider(c.Provider)
		cfg.LLM.Model = ""
		cfg.LLM.APIKey = ""
		cfg.LLM.BaseURL = ""
	}
	if c.Model != "" {
		cfg.LLM.Model = c.Model
	}
	if c.APIKey != "" {
		cfg.LLM.APIKey = c.APIKey
	}
	if c.BaseURL != "" {
		cfg.LLM.BaseURL = c.BaseURL
	}
	cfg.LLM.SetDefaults()
	if err := cfg.LLM.Validate(); err != nil {
		return fmt.Errorf("invalid llm settings: %w", err)
	}

	client, err := llms.New(&cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create completion client: %w", err)
	}

	orch, err := pipeline.New(client, cfg)
	if err != nil {
		return err
	}

	result, err := orch.Generate(ctx, pipeline.Request{
		Text:      c.Text,
		Framework: c.Framework,
		Process:   c.Process,
		Format:    c.Format,
	})
	if err != nil {
		return err
	}

	return writeArtifact(c.Output, c.Force, result.Output)
}

// writeArtifact writes content to path, or to stdout when path is empty.
// An existing file prompts for confirmation unless force is set.
func writeArtifact(path string, force bool, content string) error {
	if path == "" {
		fmt.Print(content)
		if !strings.HasSuffix(content, "\n") {
			fmt.Println()
		}
		return nil
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			if err := confirmOverwrite(path); err != nil {
				return err
			}
		}
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}

// confirmOverwrite asks before clobbering path. Without a terminal on stdin
// there is nobody to ask, so the caller has to pass --force.
func confirmOverwrite(path string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	fmt.Fprintf(os.Stderr, "%s already exists. Overwrite? [y/N] ", path)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	}
	return fmt.Errorf("aborted, %s left untouched", path)
}
