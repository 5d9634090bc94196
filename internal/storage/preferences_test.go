package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/finmate/internal/common"
)

func TestPreferences(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	if _, err := store.GetPreference(ctx, "missing"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.SetPreference(ctx, "greeting", "hello"); err != nil {
		t.Fatalf("SetPreference failed: %v", err)
	}
	if err := store.SetPreference(ctx, "greeting", "namaste"); err != nil {
		t.Fatalf("SetPreference overwrite failed: %v", err)
	}

	got, err := store.GetPreference(ctx, "greeting")
	if err != nil {
		t.Fatalf("GetPreference failed: %v", err)
	}
	if got != "namaste" {
		t.Errorf("got %q, want namaste", got)
	}
}

func TestDarkMode(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	dark, err := store.DarkMode(ctx)
	if err != nil {
		t.Fatalf("DarkMode failed: %v", err)
	}
	if dark {
		t.Error("unset preference should mean light mode")
	}

	dark, err = store.ToggleDarkMode(ctx)
	if err != nil {
		t.Fatalf("ToggleDarkMode failed: %v", err)
	}
	if !dark {
		t.Error("toggle from light should give dark")
	}

	if err := store.SetDarkMode(ctx, false); err != nil {
		t.Fatalf("SetDarkMode failed: %v", err)
	}
	dark, err = store.DarkMode(ctx)
	if err != nil {
		t.Fatalf("DarkMode failed: %v", err)
	}
	if dark {
		t.Error("expected light mode after SetDarkMode(false)")
	}
}

func TestDarkModeRejectsGarbage(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	if err := store.SetPreference(ctx, DarkModeKey, "maybe"); err != nil {
		t.Fatalf("SetPreference failed: %v", err)
	}
	if _, err := store.DarkMode(ctx); !errors.Is(err, common.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
