package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapchat/internal/session"
)

// AskOptions holds options for the ask command.
type AskOptions struct {
	DataPath  string
	ChartPath string
}

// NewAskCommand creates the ask command.
func NewAskCommand() *cobra.Command {
	opts := &AskOptions{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question about a dataset",
		Example: `  # One-shot analysis
  leapchat ask --data sales.csv "what is the correlation between price and units?"

  # Save the rendered chart
  leapchat ask --data sales.csv --chart hist.png "plot a histogram of price"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&opts.DataPath, "data", "d", "", "Path to the CSV dataset")
	cmd.Flags().StringVar(&opts.ChartPath, "chart", "", "Write the rendered chart to this PNG path")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func runAsk(cmd *cobra.Command, opts *AskOptions, question string) error {
	cfg := getConfig(cmd)
	logger := newLogger(cfg)
	ctx := cmd.Context()

	orch, err := buildOrchestrator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ds, err := loadDataset(ctx, opts.DataPath)
	if err != nil {
		return err
	}

	sess, err := session.New(session.Config{
		Name:         filepath.Base(opts.DataPath),
		Dataset:      ds,
		Orchestrator: orch,
		Store:        store,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	st, err := sess.HandleTurn(ctx, question)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if st.Synthesis != "" {
		fmt.Fprintln(out, st.Synthesis)
	} else if st.ErrorMessage != "" {
		fmt.Fprintf(out, "error: %s\n", st.ErrorMessage)
	}

	if st.Execution != nil && len(st.Execution.Image) > 0 && opts.ChartPath != "" {
		if err := os.WriteFile(opts.ChartPath, st.Execution.Image, 0644); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}
		fmt.Fprintf(out, "Chart written to %s\n", opts.ChartPath)
	}

	return nil
}
