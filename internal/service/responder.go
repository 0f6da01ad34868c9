package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/aula-labs/tutorbot/internal/events"
	"github.com/aula-labs/tutorbot/internal/llm"
	"github.com/aula-labs/tutorbot/internal/model"
	"github.com/aula-labs/tutorbot/internal/session"
	"github.com/aula-labs/tutorbot/pkg/logger"
	"github.com/aula-labs/tutorbot/pkg/metrics"
)

// ReplySender delivers a text message to a chat. Implementations swallow
// delivery failures.
type ReplySender interface {
	Send(ctx context.Context, chatID int64, text string)
}

// Options configures per-exchange generation behavior.
type Options struct {
	Temperature float64

	// SystemInstruction and Documents are attached to every call in per-call
	// attach mode. In seed mode both stay empty here because the session
	// store seeds them into each new conversation's history instead.
	SystemInstruction string
	Documents         []model.DocumentHandle
	PerCallAttach     bool

	// TaskTimeout bounds one exchange; zero means no timeout, matching the
	// original service's behavior.
	TaskTimeout time.Duration
}

// Responder runs the background portion of one webhook update: session
// lookup, generation, and reply delivery. Process never panics out and never
// returns an error; it always attempts to deliver something.
type Responder struct {
	store     *session.Store
	client    llm.Client // nil when no provider is configured
	sender    ReplySender
	publisher events.Publisher
	logger    *logger.Logger
	opts      Options
	tracer    trace.Tracer
}

// NewResponder creates a responder. A nil client selects the degraded mode in
// which every exchange answers with the fixed unavailable apology.
func NewResponder(
	store *session.Store,
	client llm.Client,
	sender ReplySender,
	publisher events.Publisher,
	log *logger.Logger,
	opts Options,
) *Responder {
	return &Responder{
		store:     store,
		client:    client,
		sender:    sender,
		publisher: publisher,
		logger:    log,
		opts:      opts,
		tracer:    otel.Tracer("tutorbot/responder"),
	}
}

// Process handles one (chat, text) exchange end to end.
func (r *Responder) Process(ctx context.Context, chatID int64, text string) {
	start := time.Now()
	log := r.logger.WithChat(chatID)

	if r.opts.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.TaskTimeout)
		defer cancel()
	}

	ctx, span := r.tracer.Start(ctx, "exchange")
	defer span.End()

	r.store.GetOrCreate(chatID)

	history, err := r.store.History(chatID)
	if err != nil {
		// Cannot happen after GetOrCreate; guard anyway.
		log.Error("history lookup failed", zap.Error(err))
		history = nil
	}

	if err := r.store.AppendTurn(chatID, model.RoleUser, text); err != nil {
		log.Error("failed to record user turn", zap.Error(err))
	}

	reply, outcome, errKind := r.generate(ctx, log, history, text)

	if outcome == model.OutcomeAnswered {
		if err := r.store.AppendTurn(chatID, model.RoleAssistant, reply); err != nil {
			log.Error("failed to record assistant turn", zap.Error(err))
		}
	}

	sendCtx, sendSpan := r.tracer.Start(ctx, "reply")
	r.sender.Send(sendCtx, chatID, reply)
	sendSpan.End()

	r.publisher.Publish(ctx, &model.ExchangeEvent{
		ID:         uuid.NewString(),
		ChatID:     chatID,
		Provider:   r.providerName(),
		Outcome:    outcome,
		PromptLen:  len(text),
		ReplyLen:   len(reply),
		LatencyMs:  time.Since(start).Milliseconds(),
		ErrorKind:  errKind,
		FinishedAt: time.Now(),
	})

	log.Info("exchange finished",
		zap.String("outcome", string(outcome)),
		zap.Duration("duration", time.Since(start)),
	)
}

func (r *Responder) generate(
	ctx context.Context,
	log *logger.Logger,
	history []model.Turn,
	text string,
) (reply string, outcome model.ExchangeOutcome, errKind string) {
	if r.client == nil {
		return ApologyUnavailable, model.OutcomeUnavailable, ""
	}

	req := &llm.Request{
		Prompt:      text,
		History:     history,
		Temperature: r.opts.Temperature,
	}
	if r.opts.PerCallAttach {
		req.Documents = r.opts.Documents
		req.SystemInstruction = r.opts.SystemInstruction
	}

	genCtx, genSpan := r.tracer.Start(ctx, "generate")
	start := time.Now()
	generated, err := r.client.Generate(genCtx, req)
	genSpan.End()

	if err != nil {
		kind := llm.KindOf(err)
		metrics.RecordGenerate(r.client.Name(), kind.String(), time.Since(start).Seconds())
		log.Warn("generation failed",
			zap.String("provider", r.client.Name()),
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
		return Apology(kind), model.OutcomeApologized, kind.String()
	}

	metrics.RecordGenerate(r.client.Name(), "ok", time.Since(start).Seconds())
	return generated, model.OutcomeAnswered, ""
}

func (r *Responder) providerName() string {
	if r.client == nil {
		return ""
	}
	return r.client.Name()
}
