// Package config provides environment configuration for the webhook service.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingToken is returned when TELEGRAM_TOKEN is not set. It is the only
// fatal configuration error: the process refuses to serve traffic without it.
var ErrMissingToken = errors.New("TELEGRAM_TOKEN is required")

// DefaultSystemInstruction is the study-assistant persona applied when
// SYSTEM_INSTRUCTION is not overridden.
const DefaultSystemInstruction = "Eres un Asistente de Estudio experto en Sistemas Inteligentes, " +
	"bots conversacionales, APIs y Webhooks. Tu objetivo es educar. Responde a las preguntas " +
	"del estudiante de manera clara, concisa y profesional, usando la terminología técnica " +
	"adecuada de la materia. Prioriza el contenido de los archivos de contexto para responder " +
	"preguntas sobre la materia principal. Si la información no se encuentra en el material de " +
	"estudio, utiliza tu conocimiento general. Responde siempre en español y recuerda el " +
	"historial de la conversación actual."

// AttachMode controls how the system instruction and reference documents reach
// the generation backend.
type AttachMode string

const (
	// AttachModeSeed injects the instruction and documents once, as the new
	// conversation's first turn pair.
	AttachModeSeed AttachMode = "seed"

	// AttachModePerCall re-attaches them on every generation call and leaves
	// the conversation history unseeded.
	AttachModePerCall AttachMode = "per-call"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Telegram settings
	TelegramToken   string
	WebhookSecret   string
	MarkdownReplies bool

	// Generation settings
	GeminiAPIKey      string
	OpenAIAPIKey      string
	AnthropicAPIKey   string
	GeminiModel       string
	GeminiFileNames   string
	SystemInstruction string
	Temperature       float64
	AttachMode        AttachMode

	// Worker settings
	WorkerPoolSize  int
	WorkerQueueSize int
	TaskTimeout     time.Duration

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Events
	NATSURL string

	// Logging
	LogLevel  string
	LogPretty bool

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables. It fails only when a
// required value is absent; everything else has a default.
func Load() (*Config, error) {
	token := strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN"))
	if token == "" {
		return nil, ErrMissingToken
	}

	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// Telegram
		TelegramToken:   token,
		WebhookSecret:   getEnv("WEBHOOK_SECRET", ""),
		MarkdownReplies: getBoolEnv("MARKDOWN_REPLIES", false),

		// Generation
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiFileNames:   getEnv("GEMINI_FILE_NAMES", ""),
		SystemInstruction: getEnv("SYSTEM_INSTRUCTION", DefaultSystemInstruction),
		Temperature:       getFloatEnv("TEMPERATURE", 0.3),
		AttachMode:        parseAttachMode(getEnv("ATTACH_MODE", string(AttachModeSeed))),

		// Workers
		WorkerPoolSize:  getIntEnv("WORKER_POOL_SIZE", 8),
		WorkerQueueSize: getIntEnv("WORKER_QUEUE_SIZE", 64),
		TaskTimeout:     getDurationEnv("TASK_TIMEOUT", 0),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Events
		NATSURL: getEnv("NATS_URL", ""),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getBoolEnv("LOG_PRETTY", false),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}, nil
}

func parseAttachMode(raw string) AttachMode {
	if AttachMode(strings.ToLower(strings.TrimSpace(raw))) == AttachModePerCall {
		return AttachModePerCall
	}
	return AttachModeSeed
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
