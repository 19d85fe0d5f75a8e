package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapchat/internal/api"
	"github.com/leapstack-labs/leapchat/internal/session"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API consumed by chat frontends.

Datasets are uploaded per session; each session carries its own profile
and conversation history. Turn outcomes and rendered charts are recorded
in the audit store.`,
		Example: `  leapchat serve --port 8080`,
		RunE:    runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
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

	manager := session.NewManager(session.ManagerConfig{
		Orchestrator: orch,
		Store:        store,
		Logger:       logger,
	})

	server := api.NewServer(api.Config{
		Manager: manager,
		Store:   store,
		Port:    cfg.HTTPPort,
		Logger:  logger,
	})

	return server.Serve(ctx)
}
