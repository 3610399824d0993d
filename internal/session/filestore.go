package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopassist/concierge/internal/engine"
)

// FileStore keeps one JSON file per session under a base directory.
type FileStore struct {
	basePath string
}

// NewFileStore creates a file-backed session store.
// basePath is typically ~/.config/concierge/sessions.
func NewFileStore(basePath string) *FileStore {
	return &FileStore{basePath: basePath}
}

func (s *FileStore) filename(sessionID string) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%s.json", sessionID))
}

// Load retrieves a session's history and working memory. A session that was
// never saved loads as empty, not as an error.
func (s *FileStore) Load(_ context.Context, sessionID string) ([]engine.Turn, map[string]string, error) {
	data, err := os.ReadFile(s.filename(sessionID))
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return rec.History, rec.Memory, nil
}

// Save persists a session to disk, replacing any previous contents.
func (s *FileStore) Save(_ context.Context, sessionID string, history []engine.Turn, memory map[string]string) error {
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	rec := record{
		SessionID: sessionID,
		History:   history,
		Memory:    memory,
		UpdatedAt: time.Now(),
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(s.filename(sessionID), data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// List returns all stored sessions, newest first.
func (s *FileStore) List(_ context.Context) ([]Meta, error) {
	entries, err := os.ReadDir(s.basePath)
	if os.IsNotExist(err) {
		return []Meta{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list session directory: %w", err)
	}

	var metas []Meta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.basePath, entry.Name()))
		if err != nil {
			continue // Skip unreadable files
		}
		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue // Skip invalid files
		}
		metas = append(metas, Meta{
			SessionID: rec.SessionID,
			Turns:     len(rec.History),
			UpdatedAt: rec.UpdatedAt,
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error { return nil }
