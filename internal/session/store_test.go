package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopassist/concierge/internal/engine"
)

func testHistory() []engine.Turn {
	return []engine.Turn{
		{Role: engine.RoleUser, Content: "find me a laptop"},
		{Role: engine.RoleAssistant, Content: "here are three options"},
	}
}

// Both backends must behave identically through the Store interface.
func testStoreRoundtrip(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	// Unknown sessions load empty, not as errors.
	history, memory, err := store.Load(ctx, "nope")
	if err != nil {
		t.Fatalf("Load(unknown) error: %v", err)
	}
	if len(history) != 0 || len(memory) != 0 {
		t.Fatalf("Load(unknown) = %v, %v, want empty", history, memory)
	}

	want := testHistory()
	mem := map[string]string{"last_products": "P001"}
	if err := store.Save(ctx, "s1", want, mem); err != nil {
		t.Fatalf("Save: %v", err)
	}

	history, memory, err = store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(history) != len(want) {
		t.Fatalf("history length = %d, want %d", len(history), len(want))
	}
	for i := range want {
		if history[i] != want[i] {
			t.Errorf("turn %d = %+v, want %+v", i, history[i], want[i])
		}
	}
	if memory["last_products"] != "P001" {
		t.Errorf("memory = %v", memory)
	}

	// Saving again replaces, it does not append.
	if err := store.Save(ctx, "s1", want[:1], map[string]string{"last_products": "P002"}); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	history, memory, _ = store.Load(ctx, "s1")
	if len(history) != 1 {
		t.Errorf("history length after replace = %d, want 1", len(history))
	}
	if memory["last_products"] != "P002" {
		t.Errorf("memory not overwritten: %v", memory)
	}

	metas, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 1 || metas[0].SessionID != "s1" {
		t.Errorf("List = %+v, want one entry for s1", metas)
	}
	if metas[0].Turns != 1 {
		t.Errorf("meta turns = %d, want 1", metas[0].Turns)
	}
}

func TestFileStore(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "sessions"))
	defer store.Close()
	testStoreRoundtrip(t, store)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()
	testStoreRoundtrip(t, store)
}

func TestStoresAreSessionScoped(t *testing.T) {
	store, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	if err := store.Save(ctx, "alice", testHistory(), nil); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, "bob", testHistory()[:1], nil); err != nil {
		t.Fatal(err)
	}

	history, _, err := store.Load(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Errorf("bob history = %d turns, want 1", len(history))
	}
}
