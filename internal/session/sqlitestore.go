package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/shopassist/concierge/internal/engine"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS turns (
	session_id TEXT    NOT NULL,
	seq        INTEGER NOT NULL,
	role       TEXT    NOT NULL,
	content    TEXT    NOT NULL,
	PRIMARY KEY (session_id, seq)
);
CREATE TABLE IF NOT EXISTS memory (
	session_id TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	PRIMARY KEY (session_id, key)
);`

// SQLiteStore persists sessions in a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database and initializes the
// schema. WAL mode allows concurrent readers while a save is in flight.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't support multiple writers well
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load retrieves a session's history and working memory. Unknown sessions
// load as empty.
func (s *SQLiteStore) Load(ctx context.Context, sessionID string) ([]engine.Turn, map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM turns WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var history []engine.Turn
	for rows.Next() {
		var t engine.Turn
		var role string
		if err := rows.Scan(&role, &t.Content); err != nil {
			return nil, nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.Role = engine.MessageRole(role)
		history = append(history, t)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read turns: %w", err)
	}

	memRows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM memory WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query memory: %w", err)
	}
	defer memRows.Close()

	memory := make(map[string]string)
	for memRows.Next() {
		var k, v string
		if err := memRows.Scan(&k, &v); err != nil {
			return nil, nil, fmt.Errorf("failed to scan memory row: %w", err)
		}
		memory[k] = v
	}
	if err := memRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read memory: %w", err)
	}
	if len(memory) == 0 {
		memory = nil
	}
	return history, memory, nil
}

// Save replaces the stored session atomically. The history handed in is
// already capped by the engine, so a delete-and-insert stays cheap.
func (s *SQLiteStore) Save(ctx context.Context, sessionID string, history []engine.Turn, memory map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, updated_at) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		sessionID, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to clear turns: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM memory WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to clear memory: %w", err)
	}

	for i, t := range history {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO turns (session_id, seq, role, content) VALUES (?, ?, ?, ?)`,
			sessionID, i, string(t.Role), t.Content); err != nil {
			return fmt.Errorf("failed to insert turn: %w", err)
		}
	}
	for k, v := range memory {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO memory (session_id, key, value) VALUES (?, ?, ?)`,
			sessionID, k, v); err != nil {
			return fmt.Errorf("failed to insert memory row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// List returns all stored sessions, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]Meta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.updated_at, COUNT(t.seq)
		FROM sessions s LEFT JOIN turns t ON t.session_id = s.id
		GROUP BY s.id ORDER BY s.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var metas []Meta
	for rows.Next() {
		var m Meta
		var updated int64
		if err := rows.Scan(&m.SessionID, &updated, &m.Turns); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		m.UpdatedAt = time.Unix(updated, 0)
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }
