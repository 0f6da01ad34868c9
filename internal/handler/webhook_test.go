package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aula-labs/tutorbot/internal/handler"
	"github.com/aula-labs/tutorbot/internal/worker"
	"github.com/aula-labs/tutorbot/pkg/logger"
)

type fakeDispatcher struct {
	tasks []worker.Task
	full  bool
}

func (f *fakeDispatcher) Submit(task worker.Task) bool {
	if f.full {
		return false
	}
	f.tasks = append(f.tasks, task)
	return true
}

func post(t *testing.T, h *handler.WebhookHandler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.Receive(rec, req)
	return rec
}

func decodeSuccess(t *testing.T, rec *httptest.ResponseRecorder) bool {
	t.Helper()
	var body struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return body.Success
}

func TestReceiveSchedulesTextMessage(t *testing.T) {
	d := &fakeDispatcher{}
	h := handler.NewWebhookHandler(d, "", logger.NewNop())

	rec := post(t, h, `{"update_id":1,"message":{"message_id":10,"chat":{"id":42},"text":"hola"}}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !decodeSuccess(t, rec) {
		t.Fatal("expected success:true")
	}
	if len(d.tasks) != 1 {
		t.Fatalf("scheduled %d tasks, want 1", len(d.tasks))
	}
	if d.tasks[0].ChatID != 42 || d.tasks[0].Text != "hola" {
		t.Errorf("task = %+v", d.tasks[0])
	}
}

func TestReceiveIgnoresNonTextUpdate(t *testing.T) {
	d := &fakeDispatcher{}
	h := handler.NewWebhookHandler(d, "", logger.NewNop())

	cases := map[string]string{
		"no message":   `{"update_id":2}`,
		"empty text":   `{"update_id":3,"message":{"message_id":11,"chat":{"id":42},"text":""}}`,
		"sticker only": `{"update_id":4,"message":{"message_id":12,"chat":{"id":42}}}`,
	}
	for name, body := range cases {
		rec := post(t, h, body, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", name, rec.Code)
		}
		if !decodeSuccess(t, rec) {
			t.Errorf("%s: expected success:true", name)
		}
	}
	if len(d.tasks) != 0 {
		t.Fatalf("ignored updates must not schedule work, got %d tasks", len(d.tasks))
	}
}

func TestReceiveMalformedBodyStillAcks(t *testing.T) {
	d := &fakeDispatcher{}
	h := handler.NewWebhookHandler(d, "", logger.NewNop())

	rec := post(t, h, `{"update_id": not json`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("malformed body must still return 200, got %d", rec.Code)
	}
	if decodeSuccess(t, rec) {
		t.Fatal("expected success:false for a malformed body")
	}
	if len(d.tasks) != 0 {
		t.Fatal("malformed updates must not schedule work")
	}
}

func TestReceiveSecretToken(t *testing.T) {
	d := &fakeDispatcher{}
	h := handler.NewWebhookHandler(d, "s3cret", logger.NewNop())
	body := `{"update_id":1,"message":{"message_id":10,"chat":{"id":42},"text":"hola"}}`

	rec := post(t, h, body, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("missing secret header: status = %d, want 403", rec.Code)
	}

	rec = post(t, h, body, map[string]string{"X-Telegram-Bot-Api-Secret-Token": "wrong"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("wrong secret: status = %d, want 403", rec.Code)
	}
	if len(d.tasks) != 0 {
		t.Fatal("rejected requests must not schedule work")
	}

	rec = post(t, h, body, map[string]string{"X-Telegram-Bot-Api-Secret-Token": "s3cret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("correct secret: status = %d, want 200", rec.Code)
	}
	if len(d.tasks) != 1 {
		t.Fatalf("scheduled %d tasks, want 1", len(d.tasks))
	}
}

func TestReceiveFullQueueStillAcks(t *testing.T) {
	d := &fakeDispatcher{full: true}
	h := handler.NewWebhookHandler(d, "", logger.NewNop())

	rec := post(t, h, `{"update_id":1,"message":{"message_id":10,"chat":{"id":42},"text":"hola"}}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("dropped update must still return 200, got %d", rec.Code)
	}
	if !decodeSuccess(t, rec) {
		t.Fatal("dropped updates still acknowledge with success:true")
	}
}
