package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_key     TEXT PRIMARY KEY,
	session_id      TEXT NOT NULL,
	lens            TEXT NOT NULL,
	current_layer   TEXT NOT NULL,
	completed_count INTEGER NOT NULL DEFAULT 0,
	responses       INTEGER NOT NULL DEFAULT 0,
	payload         TEXT NOT NULL,
	updated_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS event_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	kind          TEXT NOT NULL,
	detail_json   TEXT,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_event_log_session ON event_log(session_id, id);
`

// #endregion schema

// timeLayout keeps a fixed-width fraction so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #region store-struct
// Store persists journey sessions and their event log in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region save-session
// SaveSession upserts the record stored under row.Key. Later writes replace
// earlier ones.
func (s *Store) SaveSession(ctx context.Context, row SessionRow) error {
	if row.Key == "" {
		return fmt.Errorf("save session: empty key")
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_key, session_id, lens, current_layer, completed_count, responses, payload, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_key) DO UPDATE SET
			session_id = excluded.session_id,
			lens = excluded.lens,
			current_layer = excluded.current_layer,
			completed_count = excluded.completed_count,
			responses = excluded.responses,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		row.Key, row.SessionID, row.Lens, row.CurrentLayer, row.CompletedCount, row.Responses,
		string(row.Payload), row.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", row.Key, err)
	}
	return nil
}

// #endregion save-session

// #region load-session
// LoadSession reads the record stored under key.
func (s *Store) LoadSession(ctx context.Context, key string) (SessionRow, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_key, session_id, lens, current_layer, completed_count, responses, payload, updated_at
		 FROM sessions WHERE session_key = ?`, key,
	)
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRow{}, fmt.Errorf("load session %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return SessionRow{}, fmt.Errorf("load session %s: %w", key, err)
	}
	return rec, nil
}

// #endregion load-session

// #region delete-session
// DeleteSession removes the record stored under key. Missing keys are not an error.
func (s *Store) DeleteSession(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_key = ?`, key); err != nil {
		return fmt.Errorf("delete session %s: %w", key, err)
	}
	return nil
}

// #endregion delete-session

// #region list-sessions
// ListSessions returns the most recently updated sessions.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]SessionRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_key, session_id, lens, current_layer, completed_count, responses, payload, updated_at
		 FROM sessions ORDER BY updated_at DESC, session_key ASC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// #endregion list-sessions

// #region list-events
// ListEvents returns the event log of a session in insertion order. A limit
// of 0 returns everything.
func (s *Store) ListEvents(ctx context.Context, sessionID string, limit int) ([]EventRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, kind, detail_json, created_at
		 FROM event_log WHERE session_id = ? ORDER BY id ASC LIMIT ?`, sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var ev EventRecord
		var detail sql.NullString
		var createdStr string
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.Kind, &detail, &createdStr); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if detail.Valid {
			ev.DetailJSON = detail.String
		}
		ev.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// #endregion list-events

// #region helpers
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (SessionRow, error) {
	var rec SessionRow
	var payload string
	var updatedStr string
	err := sc.Scan(&rec.Key, &rec.SessionID, &rec.Lens, &rec.CurrentLayer,
		&rec.CompletedCount, &rec.Responses, &payload, &updatedStr)
	if err != nil {
		return SessionRow{}, err
	}
	rec.Payload = []byte(payload)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return rec, nil
}

// #endregion helpers
