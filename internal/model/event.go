package model

import (
	"time"
)

// ExchangeOutcome classifies how a background exchange ended.
type ExchangeOutcome string

const (
	OutcomeAnswered    ExchangeOutcome = "answered"
	OutcomeApologized  ExchangeOutcome = "apologized"
	OutcomeUnavailable ExchangeOutcome = "unavailable"
)

// ExchangeEvent is the audit record published after each completed exchange.
type ExchangeEvent struct {
	ID         string          `json:"id"`
	ChatID     int64           `json:"chat_id"`
	Provider   string          `json:"provider,omitempty"`
	Outcome    ExchangeOutcome `json:"outcome"`
	PromptLen  int             `json:"prompt_len"`
	ReplyLen   int             `json:"reply_len"`
	LatencyMs  int64           `json:"latency_ms"`
	ErrorKind  string          `json:"error_kind,omitempty"`
	FinishedAt time.Time       `json:"finished_at"`
}
