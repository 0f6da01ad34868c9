// Package events publishes exchange audit records to NATS when configured.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/aula-labs/tutorbot/internal/model"
	"github.com/aula-labs/tutorbot/pkg/logger"
	"github.com/aula-labs/tutorbot/pkg/metrics"
)

// SubjectPrefix is the prefix for all exchange subjects.
const SubjectPrefix = "tutorbot.exchange"

// Publisher receives one event per completed exchange. Publishing is
// fire-and-forget; implementations never block the responder on failures.
type Publisher interface {
	Publish(ctx context.Context, ev *model.ExchangeEvent)
	Close()
}

// NewNoop returns a publisher that discards everything. Used when NATS_URL is
// not configured, and in tests.
func NewNoop() Publisher {
	return noopPublisher{}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, *model.ExchangeEvent) {}
func (noopPublisher) Close()                                        {}

// NATSPublisher publishes events over a plain NATS connection.
type NATSPublisher struct {
	conn   *nats.Conn
	logger *logger.Logger
}

// Connect establishes a NATS connection for event publishing.
func Connect(url string, log *logger.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn, logger: log}, nil
}

// Publish sends one exchange event. Failures are logged and swallowed.
func (p *NATSPublisher) Publish(_ context.Context, ev *model.ExchangeEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("failed to marshal exchange event", zap.Error(err))
		metrics.EventsPublishedTotal.WithLabelValues("failed").Inc()
		return
	}

	subject := fmt.Sprintf("%s.%d", SubjectPrefix, ev.ChatID)
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn("failed to publish exchange event",
			zap.String("subject", subject),
			zap.Error(err),
		)
		metrics.EventsPublishedTotal.WithLabelValues("failed").Inc()
		return
	}

	metrics.EventsPublishedTotal.WithLabelValues("ok").Inc()
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}
