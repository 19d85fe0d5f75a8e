// Package orchestrator runs the per-turn state machine: ingest the dataset
// profile, ask the reasoning service for a routing decision, optionally
// generate and execute analysis code, then synthesize the user-visible
// answer. Every run exits in the terminal state in finitely many steps.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/leapstack-labs/leapchat/internal/dataset"
	"github.com/leapstack-labs/leapchat/internal/reason"
	"github.com/leapstack-labs/leapchat/pkg/core"
)

// Executor runs generated code against a dataset. Satisfied by
// *sandbox.Sandbox; tests substitute deterministic fakes.
type Executor interface {
	Execute(ctx context.Context, code string, ds *core.Dataset) *core.ExecutionResult
}

// state is the orchestration state for one turn.
type state int

const (
	stateIngest state = iota
	stateRoute
	stateGenerateAndExecute
	stateSynthesize
	stateTerminal
)

func (s state) String() string {
	switch s {
	case stateIngest:
		return "ingest"
	case stateRoute:
		return "route"
	case stateGenerateAndExecute:
		return "generate_and_execute"
	case stateSynthesize:
		return "synthesize"
	case stateTerminal:
		return "terminal"
	}
	return "unknown"
}

// Orchestrator sequences one turn through the state machine.
type Orchestrator struct {
	reasoner reason.Client
	executor Executor
	logger   *slog.Logger
}

// Config holds orchestrator dependencies.
type Config struct {
	Reasoner reason.Client
	Executor Executor
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// New creates an orchestrator.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{reasoner: cfg.Reasoner, executor: cfg.Executor, logger: logger}
}

// Run executes the state machine for one turn, mutating st in place. The
// machine always reaches the terminal state. A non-nil return means the
// reasoning service failed at routing or synthesis; the same message is
// recorded on st.ErrorMessage, so callers can fold the turn back either
// way. Code-generation and execution failures are converted to data on the
// turn and never returned as errors.
func (o *Orchestrator) Run(ctx context.Context, st *core.TurnState) error {
	cur := stateIngest
	for cur != stateTerminal {
		next, err := o.step(ctx, cur, st)
		if err != nil {
			st.ErrorMessage = err.Error()
			o.logger.Warn("turn failed", "state", cur.String(), "error", err)
			return err
		}
		o.logger.Debug("state transition", "from", cur.String(), "to", next.String())
		cur = next
	}
	return nil
}

func (o *Orchestrator) step(ctx context.Context, cur state, st *core.TurnState) (state, error) {
	switch cur {
	case stateIngest:
		return o.ingest(st), nil
	case stateRoute:
		return o.route(ctx, st)
	case stateGenerateAndExecute:
		return o.generateAndExecute(ctx, st), nil
	case stateSynthesize:
		return o.synthesize(ctx, st)
	}
	return stateTerminal, nil
}

// ingest populates the dataset profile if absent. A profile handed in from
// the session is passed through untouched; profiling happens once per
// dataset lifetime.
func (o *Orchestrator) ingest(st *core.TurnState) state {
	if st.Profile == nil {
		st.Profile = dataset.Profile(st.Dataset)
		o.logger.Debug("profiled dataset", "rows", st.Profile.Rows, "columns", len(st.Profile.Columns))
	}
	return stateRoute
}

// route asks the reasoning service to classify the turn and branches on
// the parsed decision.
func (o *Orchestrator) route(ctx context.Context, st *core.TurnState) (state, error) {
	reply, err := o.reasoner.Infer(ctx, reason.BuildRoutingPrompt(st.History, st.UserQuestion, st.Profile))
	if err != nil {
		return stateTerminal, wrapReasoning("route", err)
	}

	decision, ok := ParseRouting(reply)
	if !ok {
		o.logger.Warn("unrecognized routing reply, defaulting to end", "reply", truncate(reply, 120))
	}
	st.Routing = decision
	o.logger.Debug("routing decided", "decision", string(decision))

	switch decision {
	case core.RouteGenerateCode:
		return stateGenerateAndExecute, nil
	case core.RouteSynthesize:
		return stateSynthesize, nil
	default:
		return stateTerminal, nil
	}
}

// generateAndExecute obtains a code fragment and runs it in the sandbox.
// Both the fragment and the execution result are stored on the turn
// regardless of outcome, and the turn always advances to synthesis so a
// failure can be explained to the user.
func (o *Orchestrator) generateAndExecute(ctx context.Context, st *core.TurnState) state {
	reply, err := o.reasoner.Infer(ctx, reason.BuildCodePrompt(st.Profile, st.UserQuestion))
	if err != nil {
		genErr := &core.CodeGenerationError{Err: err}
		st.ErrorMessage = genErr.Error()
		o.logger.Warn("code generation failed", "error", err)
		return stateSynthesize
	}

	code := StripCodeFences(reply)
	if code == "" {
		genErr := &core.CodeGenerationError{Err: errors.New("reasoning service returned no code")}
		st.ErrorMessage = genErr.Error()
		o.logger.Warn("code generation returned empty fragment")
		return stateSynthesize
	}

	st.GeneratedCode = code
	st.Execution = o.executor.Execute(ctx, code, st.Dataset)
	o.logger.Debug("execution finished",
		"success", st.Execution.Success,
		"chart", len(st.Execution.Image) > 0)
	return stateSynthesize
}

// synthesize asks the reasoning service for the final natural-language
// answer over everything the turn produced.
func (o *Orchestrator) synthesize(ctx context.Context, st *core.TurnState) (state, error) {
	reply, err := o.reasoner.Infer(ctx, reason.BuildSynthesisPrompt(st))
	if err != nil {
		return stateTerminal, wrapReasoning("synthesize", err)
	}
	st.Synthesis = reply
	return stateTerminal, nil
}

// wrapReasoning normalizes an inference failure into a
// core.ReasoningServiceError tagged with the orchestration step.
func wrapReasoning(op string, err error) error {
	var rse *core.ReasoningServiceError
	if errors.As(err, &rse) {
		return &core.ReasoningServiceError{Op: op, Err: rse.Err}
	}
	return &core.ReasoningServiceError{Op: op, Err: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
