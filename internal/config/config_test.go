package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/aula-labs/tutorbot/internal/config"
)

// clearEnv blanks every variable Load reads so tests see only what they set.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"TELEGRAM_TOKEN", "WEBHOOK_SECRET", "MARKDOWN_REPLIES",
		"PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
		"GEMINI_MODEL", "GEMINI_FILE_NAMES", "SYSTEM_INSTRUCTION",
		"TEMPERATURE", "ATTACH_MODE",
		"WORKER_POOL_SIZE", "WORKER_QUEUE_SIZE", "TASK_TIMEOUT",
		"RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW",
		"NATS_URL", "LOG_LEVEL", "LOG_PRETTY", "TRACING_ENDPOINT", "TRACING_ENABLED",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadRequiresTelegramToken(t *testing.T) {
	clearEnv(t)

	_, err := config.Load()
	if !errors.Is(err, config.ErrMissingToken) {
		t.Fatalf("err = %v, want ErrMissingToken", err)
	}

	t.Setenv("TELEGRAM_TOKEN", "   ")
	if _, err := config.Load(); !errors.Is(err, config.ErrMissingToken) {
		t.Fatalf("whitespace token: err = %v, want ErrMissingToken", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "123:abc")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.Temperature != 0.3 {
		t.Errorf("Temperature = %v", cfg.Temperature)
	}
	if cfg.AttachMode != config.AttachModeSeed {
		t.Errorf("AttachMode = %q", cfg.AttachMode)
	}
	if cfg.SystemInstruction != config.DefaultSystemInstruction {
		t.Errorf("SystemInstruction not defaulted")
	}
	if cfg.WorkerPoolSize != 8 || cfg.WorkerQueueSize != 64 {
		t.Errorf("workers = %d/%d", cfg.WorkerPoolSize, cfg.WorkerQueueSize)
	}
	if cfg.TaskTimeout != 0 {
		t.Errorf("TaskTimeout = %v", cfg.TaskTimeout)
	}
	if cfg.RateLimitRequests != 60 || cfg.RateLimitWindow != time.Minute {
		t.Errorf("rate limit = %d/%v", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	if cfg.MarkdownReplies || cfg.TracingEnabled || cfg.LogPretty {
		t.Error("boolean flags should default off")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("GEMINI_FILE_NAMES", "files/a,files/b")
	t.Setenv("TEMPERATURE", "0.7")
	t.Setenv("ATTACH_MODE", "per-call")
	t.Setenv("WORKER_POOL_SIZE", "2")
	t.Setenv("TASK_TIMEOUT", "45s")
	t.Setenv("MARKDOWN_REPLIES", "true")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.GeminiAPIKey != "g-key" {
		t.Errorf("GeminiAPIKey = %q", cfg.GeminiAPIKey)
	}
	if cfg.GeminiFileNames != "files/a,files/b" {
		t.Errorf("GeminiFileNames = %q", cfg.GeminiFileNames)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature = %v", cfg.Temperature)
	}
	if cfg.AttachMode != config.AttachModePerCall {
		t.Errorf("AttachMode = %q", cfg.AttachMode)
	}
	if cfg.WorkerPoolSize != 2 {
		t.Errorf("WorkerPoolSize = %d", cfg.WorkerPoolSize)
	}
	if cfg.TaskTimeout != 45*time.Second {
		t.Errorf("TaskTimeout = %v", cfg.TaskTimeout)
	}
	if !cfg.MarkdownReplies {
		t.Error("MarkdownReplies should be true")
	}
	if !cfg.LogPretty {
		t.Error("LogPretty should be true")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TEMPERATURE", "not-a-number")
	t.Setenv("WORKER_POOL_SIZE", "many")
	t.Setenv("ATTACH_MODE", "sideways")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want default", cfg.Temperature)
	}
	if cfg.WorkerPoolSize != 8 {
		t.Errorf("WorkerPoolSize = %d, want default", cfg.WorkerPoolSize)
	}
	if cfg.AttachMode != config.AttachModeSeed {
		t.Errorf("AttachMode = %q, want seed fallback", cfg.AttachMode)
	}
}
