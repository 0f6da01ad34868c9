// Package model defines data structures shared across the service.
package model

import (
	"time"
)

// Role tags a turn with its author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one role-tagged message unit in a conversation's history.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// Documents carries reference document handles attached to this turn.
	// Only preamble turns carry documents.
	Documents []DocumentHandle `json:"documents,omitempty"`
}
