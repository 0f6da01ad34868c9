// Package main is the entry point for the webhook service.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aula-labs/tutorbot/internal/config"
	"github.com/aula-labs/tutorbot/internal/events"
	"github.com/aula-labs/tutorbot/internal/handler"
	"github.com/aula-labs/tutorbot/internal/llm"
	"github.com/aula-labs/tutorbot/internal/middleware"
	"github.com/aula-labs/tutorbot/internal/model"
	"github.com/aula-labs/tutorbot/internal/service"
	"github.com/aula-labs/tutorbot/internal/session"
	"github.com/aula-labs/tutorbot/internal/telegram"
	"github.com/aula-labs/tutorbot/internal/worker"
	"github.com/aula-labs/tutorbot/pkg/logger"
	"github.com/aula-labs/tutorbot/pkg/tracing"
)

// acknowledgement is the fixed assistant reply that closes the seeded
// preamble turn pair.
const acknowledgement = "Entendido. Soy el Asistente de Estudio de Sistemas Inteligentes. Estoy listo para tus preguntas."

func main() {
	_ = godotenv.Load()

	// Load configuration; a missing bot token aborts before serving.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	newLogger := logger.New
	if cfg.LogPretty {
		newLogger = logger.NewDevelopment
	}
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting webhook service")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "tutorbot", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Reference documents shared read-only by all conversations.
	documents := model.ParseDocumentHandles(cfg.GeminiFileNames)
	if len(documents) > 0 {
		log.Info("reference documents configured", zap.Int("count", len(documents)))
	}

	// Session store, seeded per attach mode.
	var preamble *session.Preamble
	if cfg.AttachMode == config.AttachModeSeed {
		preamble = &session.Preamble{
			Instruction:     cfg.SystemInstruction,
			Documents:       documents,
			Acknowledgement: acknowledgement,
		}
	}
	store := session.NewStore(preamble)

	// Generation provider, chosen once at startup. No key at all leaves the
	// client nil and the responder degrades to the fixed apology.
	client := newGenerationClient(cfg, log)

	// Reply sender
	sender, err := telegram.NewSender(cfg.TelegramToken, cfg.MarkdownReplies, log)
	if err != nil {
		log.Error("failed to create Telegram sender", zap.Error(err))
		os.Exit(1)
	}

	// Optional exchange audit trail.
	var publisher events.Publisher = events.NewNoop()
	if cfg.NATSURL != "" {
		natsPub, err := events.Connect(cfg.NATSURL, log)
		if err != nil {
			log.Warn("failed to connect to NATS, exchange events disabled", zap.Error(err))
		} else {
			publisher = natsPub
			defer natsPub.Close()
		}
	}

	// Background responder and worker pool.
	responder := service.NewResponder(store, client, sender, publisher, log, service.Options{
		Temperature:       cfg.Temperature,
		SystemInstruction: cfg.SystemInstruction,
		Documents:         documents,
		PerCallAttach:     cfg.AttachMode == config.AttachModePerCall,
		TaskTimeout:       cfg.TaskTimeout,
	})

	poolCtx, poolCancel := context.WithCancel(ctx)
	defer poolCancel()

	pool := worker.NewPool(cfg.WorkerPoolSize, cfg.WorkerQueueSize, responder.Process, log)
	pool.Start(poolCtx)

	// Handlers
	providerName := ""
	if client != nil {
		providerName = client.Name()
	}
	webhookHandler := handler.NewWebhookHandler(pool, cfg.WebhookSecret, log)
	healthHandler := handler.NewHealthHandler(store, providerName)

	// Create router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		r.Post("/webhook", webhookHandler.Receive)
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	// Drain queued work before dropping the NATS connection.
	pool.Shutdown()

	log.Info("server stopped")
}

// newGenerationClient selects a provider from the configured keys, preferring
// Gemini since it is the only one that can attach reference documents.
func newGenerationClient(cfg *config.Config, log *logger.Logger) llm.Client {
	switch {
	case cfg.GeminiAPIKey != "":
		client, err := llm.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Warn("failed to create Gemini client", zap.Error(err))
			return nil
		}
		log.Info("generation provider ready", zap.String("provider", client.Name()), zap.String("model", cfg.GeminiModel))
		return client

	case cfg.OpenAIAPIKey != "":
		client, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey, "")
		if err != nil {
			log.Warn("failed to create OpenAI client", zap.Error(err))
			return nil
		}
		log.Info("generation provider ready", zap.String("provider", client.Name()))
		return client

	case cfg.AnthropicAPIKey != "":
		client, err := llm.NewAnthropicClient(cfg.AnthropicAPIKey, "")
		if err != nil {
			log.Warn("failed to create Anthropic client", zap.Error(err))
			return nil
		}
		log.Info("generation provider ready", zap.String("provider", client.Name()))
		return client

	default:
		log.Warn("no generation API key configured, replies degrade to a fixed apology")
		return nil
	}
}
