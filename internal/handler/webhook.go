// Package handler provides the HTTP handlers for the webhook service.
package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/aula-labs/tutorbot/internal/worker"
	"github.com/aula-labs/tutorbot/pkg/logger"
	"github.com/aula-labs/tutorbot/pkg/metrics"
)

// secretTokenHeader is set by Telegram when the webhook is registered with a
// secret token.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// Dispatcher schedules background work for one update.
type Dispatcher interface {
	Submit(task worker.Task) bool
}

// WebhookHandler receives Telegram update deliveries.
//
// The endpoint always answers 200 for well-authenticated requests, even on
// malformed bodies or internal trouble: a non-200 would make Telegram retry
// the update, duplicating side effects.
type WebhookHandler struct {
	dispatcher Dispatcher
	secret     string
	logger     *logger.Logger
}

// NewWebhookHandler creates a webhook handler. An empty secret disables the
// secret-token header check.
func NewWebhookHandler(dispatcher Dispatcher, secret string, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		dispatcher: dispatcher,
		secret:     secret,
		logger:     log,
	}
}

// Receive handles POST /webhook.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" {
		got := r.Header.Get(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			writeError(w, http.StatusForbidden, "invalid webhook secret")
			return
		}
	}

	var update models.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Debug("malformed update payload", zap.Error(err))
		metrics.UpdatesTotal.WithLabelValues("malformed").Inc()
		writeJSON(w, http.StatusOK, map[string]bool{"success": false})
		return
	}

	msg := update.Message
	if msg == nil || msg.Text == "" {
		// Non-text content (stickers, photos, joins) is acknowledged and
		// ignored.
		metrics.UpdatesTotal.WithLabelValues("ignored").Inc()
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	task := worker.Task{ChatID: msg.Chat.ID, Text: msg.Text}
	if h.dispatcher.Submit(task) {
		metrics.UpdatesTotal.WithLabelValues("scheduled").Inc()
	} else {
		metrics.UpdatesTotal.WithLabelValues("dropped").Inc()
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
