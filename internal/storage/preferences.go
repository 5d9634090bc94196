package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/Veraticus/finmate/internal/common"
)

// DarkModeKey is the preference holding the theme choice.
const DarkModeKey = "dark_mode"

// GetPreference returns the stored value for key, or common.ErrNotFound.
func (s *SQLiteStorage) GetPreference(ctx context.Context, key string) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateString(key, "key"); err != nil {
		return "", err
	}

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("preference %q: %w", key, common.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get preference %q: %w", key, err)
	}
	return value, nil
}

// SetPreference stores value under key, replacing any previous value.
func (s *SQLiteStorage) SetPreference(ctx context.Context, key, value string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set preference %q: %w", key, err)
	}
	return nil
}

// DarkMode reports the saved theme. An unset preference means light mode.
func (s *SQLiteStorage) DarkMode(ctx context.Context) (bool, error) {
	value, err := s.GetPreference(ctx, DarkModeKey)
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	dark, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", common.ErrInvalidConfig, DarkModeKey, value)
	}
	return dark, nil
}

// SetDarkMode saves the theme choice.
func (s *SQLiteStorage) SetDarkMode(ctx context.Context, dark bool) error {
	return s.SetPreference(ctx, DarkModeKey, strconv.FormatBool(dark))
}

// ToggleDarkMode flips the saved theme and returns the new value.
func (s *SQLiteStorage) ToggleDarkMode(ctx context.Context) (bool, error) {
	dark, err := s.DarkMode(ctx)
	if err != nil {
		return false, err
	}
	if err := s.SetDarkMode(ctx, !dark); err != nil {
		return false, err
	}
	return !dark, nil
}
