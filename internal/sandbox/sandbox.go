// Package sandbox executes machine-generated Starlark analysis code against
// a private copy of a dataset and captures any chart the code produced.
//
// Isolation comes from the runtime itself: executed code sees only the
// predeclared bindings (df, math, stats, chart), has no load(), and cannot
// reach the filesystem or the network. The host enforces a step ceiling and
// honors context cancellation, so a hostile or runaway fragment is bounded
// in both capability and resource use.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.starlark.net/starlark"

	"github.com/leapstack-labs/leapchat/pkg/core"
)

// DefaultMaxSteps bounds the Starlark interpreter's step counter for one
// execution. Generous for any sane analysis over an in-memory table.
const DefaultMaxSteps = 50_000_000

// Sandbox runs untrusted analysis code. The zero value is not usable; use New.
type Sandbox struct {
	maxSteps uint64
	logger   *slog.Logger
}

// Config holds sandbox configuration.
type Config struct {
	// MaxSteps caps interpreter steps per execution (0 = DefaultMaxSteps).
	MaxSteps uint64
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// New creates a sandbox.
func New(cfg Config) *Sandbox {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	steps := cfg.MaxSteps
	if steps == 0 {
		steps = DefaultMaxSteps
	}
	return &Sandbox{maxSteps: steps, logger: logger}
}

// Execute runs a code fragment against a private copy of the dataset and
// returns the outcome as data; it never returns a Go error. The process-wide
// plotting surface is held for the duration of the call and disposed of
// unconditionally before it is released, on success and failure alike.
func (s *Sandbox) Execute(ctx context.Context, code string, ds *core.Dataset) *core.ExecutionResult {
	execMu.Lock()
	defer execMu.Unlock()
	defer plotSurface.reset()

	var output strings.Builder
	thread := &starlark.Thread{
		Name: "analysis",
		Print: func(_ *starlark.Thread, msg string) {
			output.WriteString(msg)
			output.WriteByte('\n')
		},
	}
	thread.SetMaxExecutionSteps(s.maxSteps)

	if ctx != nil {
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				thread.Cancel(ctx.Err().Error())
			case <-done:
			}
		}()
	}

	globals := predeclared(ds.Clone())
	_, err := starlark.ExecFile(thread, "analysis.star", code, globals) //nolint:staticcheck // SA1019: will migrate to ExecFileOptions later
	if err != nil {
		detail := execErrorDetail(err)
		s.logger.Debug("analysis code failed", "error", detail)
		return &core.ExecutionResult{
			Success:     false,
			Output:      output.String(),
			ErrorDetail: detail,
		}
	}

	result := &core.ExecutionResult{Success: true, Output: output.String()}

	fig := plotSurface.take()
	if fig.populated() {
		png, rerr := renderPNG(fig)
		if rerr != nil {
			s.logger.Debug("chart rendering failed", "error", rerr)
			return &core.ExecutionResult{
				Success:     false,
				Output:      output.String(),
				ErrorDetail: fmt.Sprintf("chart rendering failed: %v", rerr),
			}
		}
		result.Image = png
	}

	return result
}

// execErrorDetail extracts a synthesis-friendly message from a Starlark
// error, preferring the evaluation backtrace when one exists.
func execErrorDetail(err error) string {
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		return evalErr.Backtrace()
	}
	return err.Error()
}
