package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aula-labs/tutorbot/internal/handler"
	"github.com/aula-labs/tutorbot/internal/session"
)

func TestHealth(t *testing.T) {
	h := handler.NewHealthHandler(session.NewStore(nil), "gemini")

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestReadyReportsProviderAndConversations(t *testing.T) {
	store := session.NewStore(nil)
	store.GetOrCreate(1)
	store.GetOrCreate(2)

	h := handler.NewHealthHandler(store, "gemini")
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var body struct {
		Status        string `json:"status"`
		Provider      string `json:"provider"`
		Conversations int    `json:"conversations"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Status != "ready" || body.Provider != "gemini" {
		t.Errorf("body = %+v", body)
	}
	if body.Conversations != 2 {
		t.Errorf("conversations = %d, want 2", body.Conversations)
	}
}

func TestReadyWithoutProvider(t *testing.T) {
	h := handler.NewHealthHandler(session.NewStore(nil), "")
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["provider"] != "none" {
		t.Errorf(`provider = %v, want "none"`, body["provider"])
	}
}
