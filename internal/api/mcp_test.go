package api

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kalambet/intervu/internal/generator"
	"github.com/kalambet/intervu/internal/session"
	"github.com/kalambet/intervu/internal/storage"
)

func newTestMCPDeps(t *testing.T) MCPDeps {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return MCPDeps{
		Sessions: session.NewService(session.Deps{
			Store:     session.NewMemoryStore(),
			Generator: generator.New(nil, nil),
		}),
		Store: store,
	}
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

// toolText extracts the text payload of a tool result and fails the test
// if the result is an error.
func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result.IsError {
		t.Fatalf("tool returned error result: %v", result.Content)
	}
	if len(result.Content) != 1 {
		t.Fatalf("content length = %d, want 1", len(result.Content))
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want mcp.TextContent", result.Content[0])
	}
	return text.Text
}

func toolJSON(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var v map[string]any
	if err := json.Unmarshal([]byte(toolText(t, result)), &v); err != nil {
		t.Fatalf("tool result is not valid JSON: %v", err)
	}
	return v
}

// mcpStartAndWait starts a session through the tool surface and polls
// until questions are ready.
func mcpStartAndWait(t *testing.T, deps MCPDeps, count int) string {
	t.Helper()
	result, err := mcpStartInterview(deps)(context.Background(), makeCallToolRequest("start_interview", map[string]interface{}{
		"role":           "software engineer",
		"level":          "mid",
		"question_count": count,
	}))
	if err != nil {
		t.Fatalf("start_interview failed: %v", err)
	}
	started := toolJSON(t, result)
	id, _ := started["session_id"].(string)
	if id == "" {
		t.Fatalf("start_interview returned no session_id: %v", started)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		result, err := mcpInterviewStatus(deps)(context.Background(), makeCallToolRequest("interview_status", map[string]interface{}{
			"session_id": id,
		}))
		if err != nil {
			t.Fatalf("interview_status failed: %v", err)
		}
		if status := toolJSON(t, result); status["questions_ready"] == true {
			return id
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session %s never became ready", id)
	return ""
}

func TestMCPStartInterview_RequiresRole(t *testing.T) {
	deps := newTestMCPDeps(t)

	result, err := mcpStartInterview(deps)(context.Background(), makeCallToolRequest("start_interview", map[string]interface{}{
		"level": "mid",
	}))
	if err != nil {
		t.Fatalf("handler returned transport error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for missing role")
	}
}

func TestMCPInterviewStatus_NotFound(t *testing.T) {
	deps := newTestMCPDeps(t)

	result, err := mcpInterviewStatus(deps)(context.Background(), makeCallToolRequest("interview_status", map[string]interface{}{
		"session_id": "nope",
	}))
	if err != nil {
		t.Fatalf("handler returned transport error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for unknown session")
	}
}

func TestMCPFullInterview(t *testing.T) {
	deps := newTestMCPDeps(t)
	id := mcpStartAndWait(t, deps, 2)

	submit := func(index int) map[string]any {
		result, err := mcpSubmitAnswer(deps)(context.Background(), makeCallToolRequest("submit_answer", map[string]interface{}{
			"session_id":     id,
			"question_index": index,
			"answer":         "I built the api on a microservices pipeline with a shared database",
		}))
		if err != nil {
			t.Fatalf("submit_answer(%d) failed: %v", index, err)
		}
		return toolJSON(t, result)
	}

	first := submit(0)
	if first["interview_complete"] != false {
		t.Fatalf("first answer marked complete: %v", first)
	}
	if q, _ := first["next_question"].(string); q == "" {
		t.Error("first answer missing next_question")
	}

	second := submit(1)
	if second["interview_complete"] != true {
		t.Fatalf("second answer did not complete interview: %v", second)
	}
	if _, ok := second["overall_score"]; !ok {
		t.Error("final result missing overall_score")
	}
	if _, ok := second["performance_feedback"]; !ok {
		t.Error("final result missing performance_feedback")
	}
}

func TestMCPSubmitAnswer_OutOfOrder(t *testing.T) {
	deps := newTestMCPDeps(t)
	id := mcpStartAndWait(t, deps, 2)

	result, err := mcpSubmitAnswer(deps)(context.Background(), makeCallToolRequest("submit_answer", map[string]interface{}{
		"session_id":     id,
		"question_index": 1,
		"answer":         "skipping ahead",
	}))
	if err != nil {
		t.Fatalf("handler returned transport error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for out-of-order submission")
	}
}

func TestMCPResourceReports(t *testing.T) {
	deps := newTestMCPDeps(t)

	if err := deps.Store.SaveReport(storage.InterviewReport{
		SessionID:      "sess-mcp",
		Role:           "data engineer",
		Level:          "senior",
		OverallScore:   8.2,
		TotalQuestions: 5,
		ReportJSON:     `{"overall_score":8.2}`,
		CompletedAt:    time.Now().UTC(),
	}); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	contents, err := mcpResourceReports(deps)(context.Background(), makeReadResourceRequest("reports://recent"))
	if err != nil {
		t.Fatalf("reading resource failed: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents length = %d, want 1", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents type = %T, want mcp.TextResourceContents", contents[0])
	}

	var summaries []map[string]any
	if err := json.Unmarshal([]byte(text.Text), &summaries); err != nil {
		t.Fatalf("resource payload is not valid JSON: %v", err)
	}
	if len(summaries) != 1 || summaries[0]["session_id"] != "sess-mcp" {
		t.Errorf("summaries = %v, want one entry for sess-mcp", summaries)
	}
}
