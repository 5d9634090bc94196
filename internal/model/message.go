package model

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a chat message.
type Role string

const (
	// RoleUser marks messages typed by the user.
	RoleUser Role = "user"
	// RoleBot marks replies produced by the assistant.
	RoleBot Role = "bot"
)

// Message is one entry of the chat transcript.
type Message struct {
	CreatedAt time.Time
	ID        string
	Role      Role
	Text      string
}

// NewMessage stamps a transcript entry with a fresh id and the current time.
func NewMessage(role Role, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
}
