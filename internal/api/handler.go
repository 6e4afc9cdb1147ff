// Package api exposes the chat service over HTTP and MCP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/llamasql/llamasql/internal/agent"
	"github.com/llamasql/llamasql/internal/api/uistatic"
	"github.com/llamasql/llamasql/internal/payload"
	"github.com/llamasql/llamasql/internal/schema"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Responder runs one chat turn and returns a payload string.
type Responder interface {
	Respond(ctx context.Context, history []agent.Message) (string, error)
}

// NewHandler returns the HTTP API. turnTimeout bounds a single chat turn;
// zero disables the bound.
func NewHandler(responder Responder, turnTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Get("/schema", handleSchema)
	r.Post("/chat", handleChat(responder, turnTimeout))
	r.Handle("/*", uistatic.Handler())

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"ddl": schema.DDL()})
}

// chatRequest carries the full stored conversation; the server keeps no
// session state of its own.
type chatRequest struct {
	Messages []agent.Message `json:"messages"`
}

func handleChat(responder Responder, turnTimeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if len(req.Messages) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "messages is required and must not be empty")
			return
		}

		ctx := r.Context()
		if turnTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, turnTimeout)
			defer cancel()
		}

		turnID := uuid.New().String()
		start := time.Now()
		content, err := responder.Respond(ctx, req.Messages)
		if err != nil {
			// Runtime failures still travel as payload data so the UI
			// renders them like any other failed query.
			slog.Error("chat turn failed", "turn_id", turnID, "error", err)
			content = payload.Failure("", err.Error()).Encode()
		}
		slog.Info("chat turn complete", "turn_id", turnID, "duration_ms", time.Since(start).Milliseconds())

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(agent.Message{Role: "ai", Content: content})
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
