// Package testutil provides shared fixtures for FinMate tests: an in-memory
// store, expense builders, and a fake FinMate server.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/finmate/internal/model"
	"github.com/Veraticus/finmate/internal/storage"
)

// SetupTestDB creates a migrated in-memory store that is closed when the
// test ends.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// SetupTestDBAt is SetupTestDB backed by a file, for tests that reopen it.
func SetupTestDBAt(t *testing.T, path string) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// SeedMessages saves a transcript, alternating user and bot turns.
func SeedMessages(t *testing.T, store *storage.SQLiteStorage, texts ...string) {
	t.Helper()

	ctx := context.Background()
	for i, text := range texts {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleBot
		}
		msg := model.NewMessage(role, text)
		if err := store.SaveMessage(ctx, &msg); err != nil {
			t.Fatalf("failed to seed message %q: %v", text, err)
		}
	}
}
