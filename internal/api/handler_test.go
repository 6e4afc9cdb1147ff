package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/llamasql/llamasql/internal/agent"
	"github.com/llamasql/llamasql/internal/payload"
)

// mockResponder returns a canned payload string, recording the history it saw.
type mockResponder struct {
	content string
	err     error
	history []agent.Message
}

func (m *mockResponder) Respond(_ context.Context, history []agent.Message) (string, error) {
	m.history = history
	return m.content, m.err
}

func postChat(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	h := NewHandler(&mockResponder{}, 0)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var body map[string]string
	json.NewDecoder(rr.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Errorf("body = %v, want status=ok", body)
	}
}

func TestSchema(t *testing.T) {
	h := NewHandler(&mockResponder{}, 0)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/schema", nil)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var body map[string]string
	json.NewDecoder(rr.Body).Decode(&body)
	for _, table := range []string{"patients", "doctors", "admissions", "province_names"} {
		if !strings.Contains(body["ddl"], table) {
			t.Errorf("ddl missing table %s", table)
		}
	}
}

func TestChat_ReturnsAIMessage(t *testing.T) {
	want := `{"ok":true,"sql":"SELECT 1","rows":[{"1":1}],"rowCount":1,"scalar":1}`
	responder := &mockResponder{content: want}
	h := NewHandler(responder, 0)

	rr := postChat(t, h, `{"messages":[{"role":"human","content":"one please"}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var reply agent.Message
	if err := json.NewDecoder(rr.Body).Decode(&reply); err != nil {
		t.Fatalf("decoding reply: %v", err)
	}
	if reply.Role != "ai" {
		t.Errorf("role = %q, want ai", reply.Role)
	}
	if reply.Content != want {
		t.Errorf("content = %q, want the payload verbatim", reply.Content)
	}

	if len(responder.history) != 1 || responder.history[0].Content != "one please" {
		t.Errorf("responder saw history %v", responder.history)
	}
}

func TestChat_ResponderErrorBecomesFailurePayload(t *testing.T) {
	responder := &mockResponder{err: errors.New("model unreachable")}
	h := NewHandler(responder, 0)

	rr := postChat(t, h, `{"messages":[{"role":"human","content":"hi"}]}`)

	// Orchestrator failures still render in the chat thread, so they travel
	// with a 200 as an error payload.
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var reply agent.Message
	if err := json.NewDecoder(rr.Body).Decode(&reply); err != nil {
		t.Fatalf("decoding reply: %v", err)
	}

	var p payload.Payload
	if err := json.Unmarshal([]byte(reply.Content), &p); err != nil {
		t.Fatalf("content is not a payload: %v", err)
	}
	if p.OK {
		t.Fatal("expected failure payload")
	}
	if !strings.Contains(p.Error, "model unreachable") {
		t.Errorf("error = %q, want the responder error", p.Error)
	}
}

func TestChat_InvalidBody(t *testing.T) {
	h := NewHandler(&mockResponder{}, 0)

	rr := postChat(t, h, `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body.Error.Type != "invalid_request_error" {
		t.Errorf("error type = %q", body.Error.Type)
	}
}

func TestChat_EmptyMessages(t *testing.T) {
	h := NewHandler(&mockResponder{}, 0)

	rr := postChat(t, h, `{"messages":[]}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestChat_TurnTimeoutApplied(t *testing.T) {
	var sawDeadline bool
	responder := responderFunc(func(ctx context.Context, _ []agent.Message) (string, error) {
		_, sawDeadline = ctx.Deadline()
		return payload.Failure("", "n/a").Encode(), nil
	})
	h := NewHandler(responder, 50*time.Millisecond)

	postChat(t, h, `{"messages":[{"role":"human","content":"hi"}]}`)
	if !sawDeadline {
		t.Error("turn context carried no deadline")
	}
}

type responderFunc func(ctx context.Context, history []agent.Message) (string, error)

func (f responderFunc) Respond(ctx context.Context, history []agent.Message) (string, error) {
	return f(ctx, history)
}

func TestUIServedAtRoot(t *testing.T) {
	h := NewHandler(&mockResponder{}, 0)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if !strings.Contains(rr.Body.String(), "llamasql") {
		t.Error("index page missing app markup")
	}
}
