// Package state persists the turn audit log using SQLite: session
// metadata, per-turn outcomes, and rendered chart artifacts.
package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // sqlite driver
	"github.com/leapstack-labs/leapchat/pkg/core"
)

// SQLiteStore implements core.Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var _ core.Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new store instance. Call Open before use.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens the SQLite database and runs migrations.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path

	if err := s.Migrate(); err != nil {
		_ = db.Close()
		s.db = nil
		return err
	}

	s.logger.Debug("state store opened", "path", path)
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateSession registers a session and its dataset profile.
func (s *SQLiteStore) CreateSession(id, name string, profile *core.DatasetProfile) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	var profileJSON sql.NullString
	if profile != nil {
		data, err := json.Marshal(profile)
		if err != nil {
			return fmt.Errorf("failed to marshal profile: %w", err)
		}
		profileJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO sessions (id, name, profile_json, created_at) VALUES (?, ?, ?, ?)`,
		id, name, profileJSON, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// RecordTurn persists a turn outcome and its chart artifact, atomically.
func (s *SQLiteStore) RecordTurn(rec *core.TurnRecord, chart []byte) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT INTO turns (id, session_id, seq, question, decision, success, error, has_chart, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, rec.Seq, rec.Question, string(rec.Decision),
		boolToInt(rec.Success), nullable(rec.Error), boolToInt(rec.HasChart), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}

	if len(chart) > 0 {
		_, err = tx.Exec(
			`INSERT INTO charts (turn_id, session_id, seq, png) VALUES (?, ?, ?, ?)`,
			rec.ID, rec.SessionID, rec.Seq, chart,
		)
		if err != nil {
			return fmt.Errorf("failed to insert chart: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit turn: %w", err)
	}
	return nil
}

// ListTurns returns the recorded turns for a session in sequence order.
func (s *SQLiteStore) ListTurns(sessionID string) ([]*core.TurnRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, seq, question, decision, success, error, has_chart, created_at
		 FROM turns WHERE session_id = ? ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*core.TurnRecord
	for rows.Next() {
		rec := &core.TurnRecord{}
		var decision string
		var success, hasChart int
		var errMsg sql.NullString
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Seq, &rec.Question,
			&decision, &success, &errMsg, &hasChart, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		rec.Decision = core.RoutingDecision(decision)
		rec.Success = success != 0
		rec.HasChart = hasChart != 0
		if errMsg.Valid {
			rec.Error = errMsg.String
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turns: %w", err)
	}
	return out, nil
}

// GetChart returns the chart artifact for a turn, or nil if the turn
// produced none.
func (s *SQLiteStore) GetChart(sessionID string, seq int) ([]byte, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var png []byte
	err := s.db.QueryRow(
		`SELECT png FROM charts WHERE session_id = ? AND seq = ?`,
		sessionID, seq,
	).Scan(&png)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chart: %w", err)
	}
	return png, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
