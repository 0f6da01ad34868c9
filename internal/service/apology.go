// Package service orchestrates the background handling of one chat message.
package service

import (
	"github.com/aula-labs/tutorbot/internal/llm"
)

// User-facing apologies. The mapping from failure kind to message is kept
// separate from logging: callers log the real error and send only these.
const (
	// ApologyUnavailable is sent when no generation provider is configured.
	ApologyUnavailable = "El modelo de IA no está configurado. Intenta de nuevo más tarde."

	// apologyNotFound is sent when a reference document handle is missing.
	apologyNotFound = "No encuentro el material de estudio en este momento. Intenta de nuevo más tarde."

	// apologyGeneric covers every other upstream failure.
	apologyGeneric = "Ocurrió un error al procesar tu solicitud. Intenta de nuevo en unos segundos."
)

// Apology returns the user-facing message for a generation failure. It is
// total over kinds and never returns an empty string.
func Apology(kind llm.Kind) string {
	if kind == llm.KindNotFound {
		return apologyNotFound
	}
	return apologyGeneric
}
