// Package agent orchestrates one chat turn: it runs the LLM tool-call loop
// with the single get_from_db capability, then decides what payload the turn
// produced — a tool result, a SQL statement recovered from the model's final
// text, or a structured failure.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/llamasql/llamasql/internal/ollama"
	"github.com/llamasql/llamasql/internal/payload"
	"github.com/llamasql/llamasql/internal/schema"
	"github.com/llamasql/llamasql/internal/store"
)

// NoSignalError is returned when the agent produced neither a tool result
// nor an identifiable SQL statement. The wording is part of the UI contract.
const NoSignalError = "No tool output or executable SQL was produced. Please rephrase your request."

const defaultMaxToolRounds = 5

// Message is one stored conversation message as the UI serializes it.
// Role is "system", "human", or "ai"; ai content may itself be a payload
// string produced by a previous turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatEngine abstracts the Ollama chat API so tests can script replies.
type ChatEngine interface {
	Chat(ctx context.Context, model string, messages []ollama.Message, tools []ollama.Tool) (ollama.Message, error)
}

// Executor abstracts the query store.
type Executor interface {
	Execute(ctx context.Context, sql string) store.Raw
}

// Orchestrator owns the per-turn decision loop.
type Orchestrator struct {
	engine        ChatEngine
	exec          Executor
	model         string
	maxToolRounds int
}

// New creates an Orchestrator. maxToolRounds bounds the tool-call loop;
// pass 0 for the default.
func New(engine ChatEngine, exec Executor, model string, maxToolRounds int) *Orchestrator {
	if maxToolRounds <= 0 {
		maxToolRounds = defaultMaxToolRounds
	}
	return &Orchestrator{
		engine:        engine,
		exec:          exec,
		model:         model,
		maxToolRounds: maxToolRounds,
	}
}

// Respond runs a single turn over the given history and returns exactly one
// JSON payload string. Query and extraction failures come back as failure
// payloads; a non-nil error is returned only when the agent runtime itself
// fails (model unreachable, context cancelled), in which case the caller
// owns the failure payload.
func (o *Orchestrator) Respond(ctx context.Context, history []Message) (string, error) {
	msgs := toChatMessages(history)
	tools := []ollama.Tool{getFromDBTool()}

	// Trace of messages produced during this turn, in order. The stored
	// history itself never re-enters the trace.
	var trace []ollama.Message

	for round := 0; round < o.maxToolRounds; round++ {
		reply, err := o.engine.Chat(ctx, o.model, msgs, tools)
		if err != nil {
			return "", fmt.Errorf("agent chat: %w", err)
		}

		msgs = append(msgs, reply)
		trace = append(trace, reply)

		if len(reply.ToolCalls) == 0 {
			break
		}
		for _, tc := range reply.ToolCalls {
			result := o.callTool(ctx, tc)
			toolMsg := ollama.Message{Role: "tool", Content: result}
			msgs = append(msgs, toolMsg)
			trace = append(trace, toolMsg)
		}
	}

	// Most recent tool result wins: it is the payload this component itself
	// produced, so it is the most trustworthy outcome of the turn.
	for i := len(trace) - 1; i >= 0; i-- {
		if trace[i].Role == "tool" && trace[i].Content != "" {
			return trace[i].Content, nil
		}
	}

	// No tool result: best-effort recovery from the final assistant text.
	if sqlText := ExtractSQL(finalAssistantText(trace)); sqlText != "" {
		slog.Info("executing extracted sql", "sql", sqlText)
		raw := o.exec.Execute(ctx, sqlText)
		return payload.Normalize(sqlText, raw).Encode(), nil
	}

	return payload.Failure("", NoSignalError).Encode(), nil
}

// callTool handles one get_from_db invocation and returns the payload
// string that becomes the tool result.
func (o *Orchestrator) callTool(ctx context.Context, tc ollama.ToolCall) string {
	if tc.Function.Name != schema.ToolName {
		return payload.Failure("", fmt.Sprintf("unknown tool %q", tc.Function.Name)).Encode()
	}

	var args struct {
		SQL string `json:"sql"`
	}
	if len(tc.Function.Arguments) > 0 {
		if err := json.Unmarshal(tc.Function.Arguments, &args); err != nil {
			slog.Warn("malformed tool arguments", "error", err)
		}
	}
	if strings.TrimSpace(args.SQL) == "" {
		return payload.Failure("", "Missing SQL").Encode()
	}

	slog.Info("executing sql", "sql", args.SQL)
	raw := o.exec.Execute(ctx, args.SQL)
	return payload.Normalize(args.SQL, raw).Encode()
}

// toChatMessages maps stored roles onto the Ollama chat roles and prepends
// the canonical system prompt when the history carries none.
func toChatMessages(history []Message) []ollama.Message {
	msgs := make([]ollama.Message, 0, len(history)+1)
	hasSystem := false
	for _, m := range history {
		role := m.Role
		switch role {
		case "system":
			hasSystem = true
		case "human":
			role = "user"
		case "ai":
			role = "assistant"
		}
		msgs = append(msgs, ollama.Message{Role: role, Content: m.Content})
	}
	if !hasSystem {
		msgs = append([]ollama.Message{{Role: "system", Content: schema.SystemPrompt()}}, msgs...)
	}
	return msgs
}

func finalAssistantText(trace []ollama.Message) string {
	for i := len(trace) - 1; i >= 0; i-- {
		if trace[i].Role == "assistant" {
			return trace[i].Content
		}
	}
	return ""
}

func getFromDBTool() ollama.Tool {
	return ollama.Tool{
		Type: "function",
		Function: ollama.ToolFunction{
			Name:        schema.ToolName,
			Description: schema.ToolDescription(),
			Parameters: ollama.ToolParameters{
				Type: "object",
				Properties: map[string]ollama.ToolProperty{
					"sql": {
						Type:        "string",
						Description: `A valid SQLite query. Always double-quote identifiers (e.g., SELECT "first_name" FROM "patients").`,
					},
				},
				Required: []string{"sql"},
			},
		},
	}
}
