// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 The CrewForge Authors
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command crewforge turns free-text workflow descriptions into multi-agent
// orchestration code.
//
// Usage:
//
//	crewforge generate "research assistant with a writer" --framework crewai
//	crewforge render --workflow crew.json --format code
//	crewforge serve --config settings.yaml
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/alecthomas/kong"

	crewforge "github.com/crewforge/crewforge"
	"github.com/crewforge/crewforge/pkg/config"
)

// CLI defines the command-line interface.
type CLI struct {
	Generate GenerateCmd `cmd:"" help:"Generate workflow code from a free-text request."`
	Render   RenderCmd   `cmd:"" help:"Render code from a saved workflow document."`
	Validate ValidateCmd `cmd:"" help:"Validate a saved workflow document."`
	Schema   SchemaCmd   `cmd:"" help:"Generate JSON Schema for workflow or settings documents."`
	Serve    ServeCmd    `cmd:"" help:"Start the HTTP generation server."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`

	Config    string `short:"c" help:"Path to settings file." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFile   string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (simple, verbose, or custom)." default:"simple"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	info := crewforge.GetVersion()
	if bi, ok := debug.ReadBuildInfo(); ok {
		if bi.Main.Version != "(devel)" && bi.Main.Version != "" {
			info.Version = bi.Main.Version
		}
	}
	fmt.Println(info.String())
	return nil
}

// loadSettings loads settings from the given file, or builds them from
// defaults and environment variables when no file is specified.
func loadSettings(ctx context.Context, path string) (*config.Config, *config.Loader, error) {
	if path != "" {
		cfg, loader, err := config.LoadConfigFile(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load settings: %w", err)
		}
		slog.Info("Loaded settings", "path", path)
		return cfg, loader, nil
	}

	cfg, err := config.Default()
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("No settings file given, using defaults")
	return cfg, nil, nil
}

// printBanner prints a colored ASCII banner using forge-orange (#f97316)
func printBanner() {
	// Check if stdout is a terminal
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			// Not a terminal, skip banner
			return
		}
	} else {
		return
	}

	// Orange color: #f97316 = RGB(249, 115, 22)
	// Use ANSI RGB color mode: \033[38;2;R;G;Bm
	orangeColor := "\033[38;2;249;115;22m"
	resetColor := "\033[0m"

	banner := `
 ██████╗██████╗ ███████╗██╗    ██╗███████╗ ██████╗ ██████╗  ██████╗ ███████╗
██╔════╝██╔══██╗██╔════╝██║    ██║██╔════╝██╔═══██╗██╔══██╗██╔════╝ ██╔════╝
██║     ██████╔╝█████╗  ██║ █╗ ██║█████╗  ██║   ██║██████╔╝██║  ███╗█████╗
██║     ██╔══██╗██╔══╝  ██║███╗██║██╔══╝  ██║   ██║██╔══██╗██║   ██║██╔══╝
╚██████╗██║  ██║███████╗╚███╔███╔╝██║     ╚██████╔╝██║  ██║╚██████╔╝███████╗
 ╚═════╝╚═╝  ╚═╝╚══════╝ ╚══╝╚══╝ ╚═╝      ╚═════╝ ╚═╝  ╚═╝ ╚═════╝ ╚══════╝
`
	fmt.Printf("%s%s%s\n", orangeColor, banner, resetColor)
}

// shouldSkipBanner checks if command should skip banner.
// Commands that emit a document to stdout skip it so piped output stays
// clean; serve and version keep it.
func shouldSkipBanner(args []string) bool {
	if len(args) < 2 {
		return false
	}

	for _, arg := range args {
		if arg == "generate" || arg == "render" || arg == "validate" || arg == "schema" {
			return true
		}
	}
	return false
}

func main() {
	if !shouldSkipBanner(os.Args) {
		printBanner()
	}

	_ = config.LoadEnvFiles()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("crewforge"),
		kong.Description("CrewForge - natural language to multi-agent workflow code"),
		kong.UsageOnError(),
	)

	// Initialize logger with CLI flags/env vars before any command runs
	_, _, _, cleanup, err := initLoggerFromCLI(cli.LogLevel, cli.LogFile, cli.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	err = ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
