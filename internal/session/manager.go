package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/leapchat/internal/orchestrator"
	"github.com/leapstack-labs/leapchat/pkg/core"
)

// Manager tracks live sessions for the HTTP API. Sessions are fully
// independent of each other; the only cross-session resource is the
// plotting surface, which the sandbox already serializes.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	orch   *orchestrator.Orchestrator
	store  core.Store
	logger *slog.Logger
}

// ManagerConfig holds manager dependencies.
type ManagerConfig struct {
	Orchestrator *orchestrator.Orchestrator
	Store        core.Store
	Logger       *slog.Logger
}

// NewManager creates a session manager.
func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		sessions: make(map[string]*Session),
		orch:     cfg.Orchestrator,
		store:    cfg.Store,
		logger:   logger,
	}
}

// Create starts a session for a freshly loaded dataset.
func (m *Manager) Create(name string, ds *core.Dataset) (*Session, error) {
	s, err := New(Config{
		Name:         name,
		Dataset:      ds,
		Orchestrator: m.orch,
		Store:        m.store,
		Logger:       m.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}
