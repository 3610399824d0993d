// Package session persists conversation history and working memory by
// session id. Two backends are provided: JSON files for development and
// SQLite for anything longer-lived. Both implement engine.MemoryStore.
package session

import (
	"context"
	"time"

	"github.com/shopassist/concierge/internal/engine"
)

// record is the persisted shape of one session.
type record struct {
	SessionID string            `json:"session_id"`
	History   []engine.Turn     `json:"history"`
	Memory    map[string]string `json:"memory,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Meta is a lightweight representation for listing sessions.
type Meta struct {
	SessionID string    `json:"session_id"`
	Turns     int       `json:"turns"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a session store with listing support on top of the engine's
// load/save contract.
type Store interface {
	engine.MemoryStore
	List(ctx context.Context) ([]Meta, error)
	Close() error
}
