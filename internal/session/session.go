// Package session owns the persistent per-conversation context: the
// dataset, its cached profile, and the append-only turn transcript. It
// serializes turns so a new run never starts before the previous run's
// state has been folded back.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/leapchat/internal/dataset"
	"github.com/leapstack-labs/leapchat/internal/orchestrator"
	"github.com/leapstack-labs/leapchat/pkg/core"
)

// Session is one conversation over one dataset.
type Session struct {
	id   string
	name string

	mu      sync.Mutex
	ds      *core.Dataset
	profile *core.DatasetProfile
	history []string
	seq     int

	orch   *orchestrator.Orchestrator
	store  core.Store
	logger *slog.Logger
}

// Config holds session dependencies.
type Config struct {
	// Name is a human-readable label, typically the dataset filename.
	Name string
	// Dataset is the loaded table the session owns.
	Dataset *core.Dataset
	// Orchestrator runs each turn.
	Orchestrator *orchestrator.Orchestrator
	// Store is the audit store (optional).
	Store core.Store
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// New creates a session, profiles the dataset once for its lifetime, and
// registers the session with the store when one is configured.
func New(cfg Config) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Session{
		id:      uuid.NewString(),
		name:    cfg.Name,
		ds:      cfg.Dataset,
		profile: dataset.Profile(cfg.Dataset),
		orch:    cfg.Orchestrator,
		store:   cfg.Store,
		logger:  logger,
	}

	if s.store != nil {
		if err := s.store.CreateSession(s.id, s.name, s.profile); err != nil {
			return nil, err
		}
	}

	logger.Info("session created", "session", s.id, "name", s.name,
		"rows", s.profile.Rows, "columns", len(s.profile.Columns))
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Name returns the session label.
func (s *Session) Name() string { return s.name }

// Profile returns the cached dataset profile.
func (s *Session) Profile() *core.DatasetProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Dataset returns the session's dataset.
func (s *Session) Dataset() *core.Dataset { return s.ds }

// History returns a copy of the turn transcript.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// Turns returns the number of processed turns.
func (s *Session) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// HandleTurn processes one user question: it seeds a fresh TurnState from
// session state, runs the orchestrator, and folds the result back. The
// fold happens for error turns too, so the transcript stays a faithful
// total order of everything processed. The returned error mirrors
// TurnState.ErrorMessage for reasoning-service failures.
func (s *Session) HandleTurn(ctx context.Context, question string) (*core.TurnState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &core.TurnState{
		SessionID:    s.id,
		UserQuestion: question,
		Dataset:      s.ds,
		Profile:      s.profile,
		History:      append([]string(nil), s.history...),
	}

	runErr := s.orch.Run(ctx, st)
	s.fold(st)
	return st, runErr
}

// fold applies a terminal TurnState back onto session state and records
// the turn in the audit store.
func (s *Session) fold(st *core.TurnState) {
	s.profile = st.Profile
	s.seq++
	s.history = append(s.history, transcriptEntry(st))

	if st.Execution != nil && !st.Execution.Success {
		s.logger.Warn("analysis execution failed", "session", s.id, "turn", s.seq,
			"error", &core.SandboxExecutionError{Detail: st.Execution.ErrorDetail})
	}

	if s.store == nil {
		return
	}
	rec := &core.TurnRecord{
		ID:        uuid.NewString(),
		SessionID: s.id,
		Seq:       s.seq,
		Question:  st.UserQuestion,
		Decision:  st.Routing,
		Success:   st.ErrorMessage == "" && (st.Execution == nil || st.Execution.Success),
		Error:     st.ErrorMessage,
		CreatedAt: time.Now().UTC(),
	}
	var chart []byte
	if st.Execution != nil {
		chart = st.Execution.Image
	}
	rec.HasChart = len(chart) > 0
	if err := s.store.RecordTurn(rec, chart); err != nil {
		s.logger.Warn("failed to record turn", "session", s.id, "turn", s.seq, "error", err)
	}
}

// transcriptEntry formats one turn for the append-only history.
func transcriptEntry(st *core.TurnState) string {
	answer := st.Synthesis
	if answer == "" {
		switch {
		case st.ErrorMessage != "":
			answer = "(error: " + st.ErrorMessage + ")"
		default:
			answer = "(conversation ended)"
		}
	}
	return "user: " + st.UserQuestion + "\nassistant: " + answer
}
