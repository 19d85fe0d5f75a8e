// Package commands implements the leapchat subcommands.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapchat/internal/config"
	"github.com/leapstack-labs/leapchat/internal/dataset"
	"github.com/leapstack-labs/leapchat/internal/orchestrator"
	"github.com/leapstack-labs/leapchat/internal/reason"
	"github.com/leapstack-labs/leapchat/internal/sandbox"
	"github.com/leapstack-labs/leapchat/internal/state"
	"github.com/leapstack-labs/leapchat/pkg/core"
)

// configKey is used to store config in context.
type configKey struct{}

// WithConfig stores the resolved config in a context. Called by the root
// command's PersistentPreRunE.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// getConfig retrieves the config from the command context.
func getConfig(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return &config.Config{}
}

// newLogger builds the CLI logger writing to stderr.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openStore opens the audit store, creating its directory if needed.
func openStore(cfg *config.Config, logger *slog.Logger) (*state.SQLiteStore, error) {
	if dir := filepath.Dir(cfg.StatePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	return store, nil
}

// buildOrchestrator wires the Gemini client and the sandbox into an
// orchestrator. Fails fast when the credential is missing.
func buildOrchestrator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*orchestrator.Orchestrator, error) {
	if err := cfg.RequireCredential(); err != nil {
		return nil, err
	}

	reasoner, err := reason.NewGemini(ctx, reason.GeminiConfig{
		APIKey:  cfg.Reasoning.APIKey,
		Model:   cfg.Reasoning.Model,
		Timeout: cfg.Timeout(),
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	box := sandbox.New(sandbox.Config{
		MaxSteps: cfg.Sandbox.MaxSteps,
		Logger:   logger,
	})

	return orchestrator.New(orchestrator.Config{
		Reasoner: reasoner,
		Executor: box,
		Logger:   logger,
	}), nil
}

// loadDataset ingests a CSV file through the DuckDB loader.
func loadDataset(ctx context.Context, path string) (*core.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("dataset file not found: %s", path)
	}
	return dataset.LoadCSV(ctx, path)
}

// renderProfile writes a dataset profile as a table.
func renderProfile(w io.Writer, p *core.DatasetProfile) {
	fmt.Fprintf(w, "Rows: %d   Columns: %d\n", p.Rows, len(p.Columns))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Type", "Nulls"})
	for _, col := range p.Columns {
		t.AppendRow(table.Row{col, string(p.Types[col]), p.NullCounts[col]})
	}
	t.Render()
}

// renderSample writes the first rows of a dataset as a table.
func renderSample(w io.Writer, ds *core.Dataset, n int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{}
	for _, col := range ds.Columns() {
		header = append(header, col)
	}
	t.AppendHeader(header)

	for _, row := range dataset.Sample(ds, n) {
		r := table.Row{}
		for _, cell := range row {
			r = append(r, cell)
		}
		t.AppendRow(r)
	}
	t.Render()
}
