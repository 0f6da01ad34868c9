// Package llm provides the generation client interface and implementations.
package llm

import (
	"context"

	"github.com/aula-labs/tutorbot/internal/model"
)

// Request carries everything one generation call needs. In seed attach mode
// the history already contains the instruction and document turns, and the
// per-call fields stay empty; in per-call mode it is the other way around.
type Request struct {
	// Prompt is the current user message.
	Prompt string

	// History is the conversation so far, oldest first, excluding Prompt.
	History []model.Turn

	// Documents are reference handles re-attached on this call.
	Documents []model.DocumentHandle

	// SystemInstruction is the persona text applied on this call.
	SystemInstruction string

	// Temperature in [0,1]; lower favors reference-grounded answers.
	Temperature float64
}

// Client is the interface for generation providers. Generate either returns
// non-empty text or a classified *Error. Implementations never retry.
type Client interface {
	Generate(ctx context.Context, req *Request) (string, error)

	// Name returns the provider name, used in logs, metrics and events.
	Name() string
}
