package core

// Store is the persistence interface for the turn audit log. It records
// session metadata, per-turn outcomes, and rendered chart artifacts. It
// deliberately does not persist conversation history; the prompt-context
// transcript lives in memory with the session.
type Store interface {
	// CreateSession registers a session and its dataset profile.
	CreateSession(id, name string, profile *DatasetProfile) error

	// RecordTurn persists a turn outcome. chart may be nil when the turn
	// produced no image.
	RecordTurn(rec *TurnRecord, chart []byte) error

	// ListTurns returns the recorded turns for a session in sequence order.
	ListTurns(sessionID string) ([]*TurnRecord, error)

	// GetChart returns the chart artifact for a turn, or nil if the turn
	// produced none.
	GetChart(sessionID string, seq int) ([]byte, error)

	// Close releases the underlying resources.
	Close() error
}
