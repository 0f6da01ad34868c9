// Package telegram delivers replies to chats through the Bot API.
package telegram

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/aula-labs/tutorbot/pkg/logger"
	"github.com/aula-labs/tutorbot/pkg/metrics"
)

const (
	// MaxReplyRunes is the largest reply delivered as-is; Telegram rejects
	// messages above 4096 characters and we keep headroom for the marker.
	MaxReplyRunes = 4000

	// TruncationSuffix is appended whenever a reply is cut.
	TruncationSuffix = "\n\n(Truncado...)"
)

// Sender posts text messages to chats. Delivery failures are logged and
// swallowed: the webhook contract never surfaces them, and there is no retry.
type Sender struct {
	bot      *bot.Bot
	markdown bool
	logger   *logger.Logger
}

// NewSender creates a sender for the given bot token. Construction does not
// call the Bot API, so startup works without network access.
func NewSender(token string, markdown bool, log *logger.Logger, opts ...bot.Option) (*Sender, error) {
	opts = append([]bot.Option{bot.WithSkipGetMe()}, opts...)
	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, err
	}

	return &Sender{
		bot:      b,
		markdown: markdown,
		logger:   log,
	}, nil
}

// Send delivers text to the chat, truncating oversized payloads first.
func (s *Sender) Send(ctx context.Context, chatID int64, text string) {
	text, truncated := Truncate(text)
	if truncated {
		metrics.RepliesTruncatedTotal.Inc()
	}

	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if s.markdown {
		params.ParseMode = models.ParseModeMarkdown
	}

	if _, err := s.bot.SendMessage(ctx, params); err != nil {
		s.logger.Warn("reply delivery failed",
			zap.Int64("chat_id", chatID),
			zap.Int("text_len", len(text)),
			zap.Error(err),
		)
		metrics.RepliesTotal.WithLabelValues("failed").Inc()
		return
	}

	metrics.RepliesTotal.WithLabelValues("sent").Inc()
}

// Truncate cuts text to MaxReplyRunes and appends the truncation marker when
// it did cut. The returned text is always a prefix of the original plus, at
// most, the marker.
func Truncate(text string) (string, bool) {
	runes := []rune(text)
	if len(runes) <= MaxReplyRunes {
		return text, false
	}
	return string(runes[:MaxReplyRunes]) + TruncationSuffix, true
}
