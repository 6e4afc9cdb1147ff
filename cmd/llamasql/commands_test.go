package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/llamasql/llamasql/internal/agent"
	"github.com/llamasql/llamasql/internal/payload"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":{"message":"not found","type":"not_found"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

var ctx = context.Background()

func TestAsk_RequestAndPayloadDecoding(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /chat": `{"role":"ai","content":"{\"ok\":true,\"sql\":\"SELECT COUNT(*) as c FROM \\\"patients\\\"\",\"rows\":[{\"c\":15}],\"rowCount\":1,\"scalar\":15}"}`,
	})
	client := ts.client()

	req := map[string]any{
		"messages": []agent.Message{{Role: "human", Content: "How many patients are there?"}},
	}
	resp, err := client.post(ctx, "/chat", req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	var reply agent.Message
	if err := decodeJSON(resp, &reply); err != nil {
		t.Fatalf("decodeJSON: %v", err)
	}
	if reply.Role != "ai" {
		t.Errorf("role = %q, want ai", reply.Role)
	}

	var p payload.Payload
	if err := json.Unmarshal([]byte(reply.Content), &p); err != nil {
		t.Fatalf("content is not a payload: %v", err)
	}
	if !p.OK || !p.HasScalar || p.Scalar != float64(15) {
		t.Errorf("payload = %+v, want scalar 15", p)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("server saw %d requests, want 1", len(ts.requests))
	}
	got := ts.requests[0]
	if got.Method != "POST" || got.Path != "/chat" {
		t.Errorf("request = %s %s, want POST /chat", got.Method, got.Path)
	}

	var sent struct {
		Messages []agent.Message `json:"messages"`
	}
	if err := json.Unmarshal([]byte(got.Body), &sent); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if len(sent.Messages) != 1 || sent.Messages[0].Role != "human" {
		t.Errorf("sent messages = %+v", sent.Messages)
	}
}

func TestGet_Schema(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /schema": `{"ddl":"CREATE TABLE IF NOT EXISTS patients (...)"}`,
	})
	client := ts.client()

	resp, err := client.get(ctx, "/schema")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	var body map[string]string
	if err := decodeJSON(resp, &body); err != nil {
		t.Fatalf("decodeJSON: %v", err)
	}
	if body["ddl"] == "" {
		t.Error("ddl missing from response")
	}
}

func TestDecodeJSON_ErrorStatus(t *testing.T) {
	ts := newTestServer(t, nil)
	client := ts.client()

	resp, err := client.get(ctx, "/missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	var ignored map[string]any
	if err := decodeJSON(resp, &ignored); err == nil {
		t.Fatal("expected an error for a 404 response")
	}
}

func TestPost_ServerDown(t *testing.T) {
	ts := newTestServer(t, nil)
	client := ts.client()
	ts.server.Close()

	if _, err := client.post(ctx, "/chat", map[string]any{}); err == nil {
		t.Fatal("expected an error when the server is unreachable")
	}
}
