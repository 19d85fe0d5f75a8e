package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// TurnsOptions holds options for the turns command.
type TurnsOptions struct {
	SessionID string
}

// NewTurnsCommand creates the turns command.
func NewTurnsCommand() *cobra.Command {
	opts := &TurnsOptions{}

	cmd := &cobra.Command{
		Use:   "turns",
		Short: "List recorded turns for a session",
		Example: `  leapchat turns --session 2f1f6b1c-...`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTurns(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.SessionID, "session", "s", "", "Session id")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func runTurns(cmd *cobra.Command, opts *TurnsOptions) error {
	cfg := getConfig(cmd)
	logger := newLogger(cfg)

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	recs, err := store.ListTurns(opts.SessionID)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No turns recorded for session %s\n", opts.SessionID)
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Question", "Decision", "OK", "Chart", "Error"})
	for _, rec := range recs {
		ok := ""
		if rec.Success {
			ok = "yes"
		}
		chart := ""
		if rec.HasChart {
			chart = "yes"
		}
		t.AppendRow(table.Row{rec.Seq, truncate(rec.Question, 48), string(rec.Decision), ok, chart, truncate(rec.Error, 48)})
	}
	t.Render()
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
