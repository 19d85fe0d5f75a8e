// Package cli provides the command-line interface for LeapChat.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapchat/internal/cli/commands"
	"github.com/leapstack-labs/leapchat/internal/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "leapchat",
		Short: "LeapChat - Conversational Data Analysis",
		Long: `LeapChat is a conversational data-analysis assistant.

Load a CSV dataset and ask questions in natural language; each turn is
routed through profiling, a reasoning decision, optional sandboxed
analysis-code execution, and a synthesized answer with an optional chart.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			cmd.SetContext(commands.WithConfig(cmd.Context(), cfg))

			if cfg.Verbose && cfgFile != "" {
				fmt.Fprintf(os.Stderr, "Using config file: %s\n", cfgFile)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Built with Go, Starlark, and Gemini
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./leapchat.yaml)")
	rootCmd.PersistentFlags().String("state", "", "Path to the audit state database")
	rootCmd.PersistentFlags().Int("port", 0, "API server port")
	rootCmd.PersistentFlags().String("model", "", "Reasoning model name")
	rootCmd.PersistentFlags().Int("timeout", 0, "Reasoning call timeout in seconds")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(
		commands.NewChatCommand(),
		commands.NewAskCommand(),
		commands.NewProfileCommand(),
		commands.NewServeCommand(),
		commands.NewTurnsCommand(),
	)

	return rootCmd
}
