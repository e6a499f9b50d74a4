package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kalambet/intervu/internal/generator"
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
		w.Write([]byte(`{"error":{"message":"not found","type":"not_found_error"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		httpClient: ts.server.Client(),
	}
}

var ctx = context.Background()

func TestAPIClient_PostEncodesBody(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /start_interview": `{"session_id":"abc","status":"generating_questions"}`,
	})
	client := ts.client()

	resp, err := client.post(ctx, "/start_interview", map[string]any{
		"role":  "software engineer",
		"level": "mid",
	})
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}

	var result struct {
		SessionID string `json:"session_id"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if result.SessionID != "abc" {
		t.Errorf("session_id = %q, want abc", result.SessionID)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(ts.requests))
	}
	got := ts.requests[0]
	if got.Method != "POST" || got.Path != "/start_interview" {
		t.Errorf("request = %s %s", got.Method, got.Path)
	}
	if !strings.Contains(got.Body, `"role":"software engineer"`) {
		t.Errorf("body = %s, want role field", got.Body)
	}
}

func TestDecodeJSON_ErrorStatusIncludesBody(t *testing.T) {
	ts := newTestServer(t, nil)
	client := ts.client()

	resp, err := client.get(ctx, "/reports/missing")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	var out any
	err = decodeJSON(resp, &out)
	if err == nil {
		t.Fatal("expected error for 404 response, got nil")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %q, want it to mention the status code", err)
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %q, want it to include the body", err)
	}
}

// TestAnswerResponse_DecodesServerFeedback round-trips a score record
// through the exact JSON the submit_answer handler emits, so the CLI
// field tags cannot drift from the server's.
func TestAnswerResponse_DecodesServerFeedback(t *testing.T) {
	record := generator.FallbackScore(
		"Describe a system you designed.",
		"I designed a microservices pipeline with a shared database and an api gateway",
	)

	payload, err := json.Marshal(map[string]any{
		"session_id":             "s1",
		"feedback":               record,
		"interview_complete":     false,
		"next_question":          "What tradeoffs did you make?",
		"current_question_index": 1,
		"total_questions":        3,
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var result answerResponse
	if err := json.Unmarshal(payload, &result); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	got := result.Feedback.Scores
	if got.Overall != record.Scores.Overall {
		t.Errorf("Overall = %v, want %v", got.Overall, record.Scores.Overall)
	}
	if got.Overall == 0 {
		t.Error("Overall decoded as zero from a non-zero record")
	}
	if got.Content != record.Scores.Content || got.Technical != record.Scores.Technical ||
		got.Communication != record.Scores.Communication || got.Relevance != record.Scores.Relevance {
		t.Errorf("category scores = %+v, want %+v", got, record.Scores)
	}
	if len(result.Feedback.Suggestions) != len(record.Suggestions) {
		t.Errorf("suggestions = %d, want %d", len(result.Feedback.Suggestions), len(record.Suggestions))
	}
	if result.NextQuestion != "What tradeoffs did you make?" {
		t.Errorf("NextQuestion = %q", result.NextQuestion)
	}
}

func TestShortID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0b6c9a4e-8f21-4c55-9c0f-0a4d2f1e7b63", "0b6c9a4e"},
		{"short", "short"},
		{"", ""},
		{"12345678", "12345678"},
	}
	for _, tt := range tests {
		if got := shortID(tt.in); got != tt.want {
			t.Errorf("shortID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWaitForQuestions_ReturnsWhenReady(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /interview_status/s1": `{"status":"ready","questions_ready":true,"total_questions":3,"first_question":"Tell me about yourself"}`,
	})

	status, err := waitForQuestions(ctx, ts.client(), "s1")
	if err != nil {
		t.Fatalf("waitForQuestions failed: %v", err)
	}
	if status.TotalQuestions != 3 {
		t.Errorf("TotalQuestions = %d, want 3", status.TotalQuestions)
	}
	if status.FirstQuestion != "Tell me about yourself" {
		t.Errorf("FirstQuestion = %q", status.FirstQuestion)
	}
}
