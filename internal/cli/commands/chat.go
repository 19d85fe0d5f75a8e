package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/leapchat/internal/session"
)

// ChatOptions holds options for the chat command.
type ChatOptions struct {
	DataPath string
	Sample   int
}

// NewChatCommand creates the chat command.
func NewChatCommand() *cobra.Command {
	opts := &ChatOptions{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive analysis conversation over a dataset",
		Long: `Open a REPL over a CSV dataset and ask questions in natural language.

Each line is one turn: the question is routed, analysis code is generated
and executed when needed, and the answer is synthesized back. Rendered
charts can be written to disk with .save.`,
		Example: `  # Chat over a dataset
  leapchat chat --data sales.csv

  # Inside the REPL
  leapchat> how many missing values are there?
  leapchat> plot a histogram of revenue
  leapchat> .save revenue.png`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.DataPath, "data", "d", "", "Path to the CSV dataset")
	cmd.Flags().IntVar(&opts.Sample, "sample", 5, "Rows shown by the .sample command")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func runChat(cmd *cobra.Command, opts *ChatOptions) error {
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

	historyFile := filepath.Join(filepath.Dir(cfg.StatePath), "chat_history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "leapchat> ",
		HistoryFile:     historyFile,
		AutoComplete:    chatCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	style := newChatStyle()

	fmt.Fprintf(out, "LeapChat (%s: %d rows, %d columns)\n",
		sess.Name(), sess.Profile().Rows, len(sess.Profile().Columns))
	fmt.Fprintln(out, "Ask a question, or type .help for commands, .quit to exit")
	fmt.Fprintln(out)

	var lastChart []byte
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			quit := handleChatDotCommand(out, sess, lastChart, opts.Sample, line)
			if quit {
				break
			}
			continue
		}

		st, err := sess.HandleTurn(ctx, line)
		if err != nil {
			fmt.Fprintln(out, style.err("error: "+err.Error()))
			continue
		}

		switch {
		case st.Synthesis != "":
			fmt.Fprintln(out, style.answer(st.Synthesis))
		case st.ErrorMessage != "":
			fmt.Fprintln(out, style.err("error: "+st.ErrorMessage))
		default:
			fmt.Fprintln(out, style.dim("(conversation ended)"))
		}

		if st.Execution != nil && len(st.Execution.Image) > 0 {
			lastChart = st.Execution.Image
			fmt.Fprintln(out, style.dim("[chart rendered - use .save <path> to write it]"))
		}
		fmt.Fprintln(out)
	}

	return nil
}

// handleChatDotCommand processes a REPL dot-command; returns true on quit.
func handleChatDotCommand(out io.Writer, sess *session.Session, lastChart []byte, sampleRows int, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ".quit", ".exit":
		return true
	case ".help":
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  .profile       show the dataset profile")
		fmt.Fprintln(out, "  .sample        show the first rows of the dataset")
		fmt.Fprintln(out, "  .save <path>   write the last rendered chart to a PNG file")
		fmt.Fprintln(out, "  .quit          exit")
	case ".profile":
		renderProfile(out, sess.Profile())
	case ".sample":
		renderSample(out, sess.Dataset(), sampleRows)
	case ".save":
		if len(fields) < 2 {
			fmt.Fprintln(out, "usage: .save <path>")
			break
		}
		if len(lastChart) == 0 {
			fmt.Fprintln(out, "no chart rendered yet")
			break
		}
		if err := os.WriteFile(fields[1], lastChart, 0644); err != nil {
			fmt.Fprintf(out, "failed to write chart: %v\n", err)
			break
		}
		fmt.Fprintf(out, "chart written to %s\n", fields[1])
	default:
		fmt.Fprintf(out, "unknown command: %s (try .help)\n", fields[0])
	}
	return false
}

func chatCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".profile"),
		readline.PcItem(".sample"),
		readline.PcItem(".save"),
		readline.PcItem(".quit"),
	)
}

// chatStyle colors REPL output when stdout is a terminal.
type chatStyle struct {
	output *termenv.Output
	tty    bool
}

func newChatStyle() *chatStyle {
	return &chatStyle{
		output: termenv.NewOutput(os.Stdout),
		tty:    term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func (s *chatStyle) answer(text string) string {
	if !s.tty {
		return text
	}
	return s.output.String(text).Foreground(s.output.Color("6")).String()
}

func (s *chatStyle) err(text string) string {
	if !s.tty {
		return text
	}
	return s.output.String(text).Foreground(s.output.Color("1")).String()
}

func (s *chatStyle) dim(text string) string {
	if !s.tty {
		return text
	}
	return s.output.String(text).Faint().String()
}
