package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/finmate/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrInvalidMessage = errors.New("invalid message")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateMessage(msg *model.Message) error {
	if msg == nil {
		return fmt.Errorf("%w: nil", ErrInvalidMessage)
	}
	if msg.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidMessage)
	}
	if msg.Role != model.RoleUser && msg.Role != model.RoleBot {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidMessage, msg.Role)
	}
	if msg.CreatedAt.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidMessage)
	}
	return nil
}
