package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/intervu/internal/session"
	"github.com/kalambet/intervu/internal/storage"
)

// MCPDeps holds dependencies for the MCP server. Store is optional; when
// nil the reports resource returns an empty list.
type MCPDeps struct {
	Sessions *session.Service
	Store    *storage.Store
}

// NewMCPServer creates an MCP server exposing the interview pipeline as
// tools, so an agent can run a full mock interview over stdio.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"intervu",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("intervu — mock interview sessions with per-answer scoring and a final performance report."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("start_interview",
			mcp.WithDescription("Start a mock interview session. Questions are generated in the background; poll interview_status until questions_ready."),
			mcp.WithString("role", mcp.Description("Target job role, e.g. \"software engineer\""), mcp.Required()),
			mcp.WithString("level", mcp.Description("Experience level, e.g. \"junior\", \"mid\", \"senior\""), mcp.Required()),
			mcp.WithNumber("question_count", mcp.Description("Number of questions (1-100, default 10)")),
		),
		mcpStartInterview(deps),
	)

	s.AddTool(
		mcp.NewTool("interview_status",
			mcp.WithDescription("Get the current state of an interview session."),
			mcp.WithString("session_id", mcp.Description("Session identifier from start_interview"), mcp.Required()),
		),
		mcpInterviewStatus(deps),
	)

	s.AddTool(
		mcp.NewTool("submit_answer",
			mcp.WithDescription("Submit the answer to the current question and receive scored feedback. Questions must be answered strictly in order."),
			mcp.WithString("session_id", mcp.Description("Session identifier"), mcp.Required()),
			mcp.WithNumber("question_index", mcp.Description("Index of the question being answered; must equal the session cursor"), mcp.Required()),
			mcp.WithString("answer", mcp.Description("Free-text answer"), mcp.Required()),
		),
		mcpSubmitAnswer(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"reports://recent",
			"Recent Interview Reports",
			mcp.WithResourceDescription("Last 10 completed interview reports (summaries only)"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceReports(deps),
	)

	return s
}

func mcpStartInterview(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		role, err := req.RequireString("role")
		if err != nil {
			return mcpError("role is required"), nil
		}
		level, err := req.RequireString("level")
		if err != nil {
			return mcpError("level is required"), nil
		}
		count := req.GetInt("question_count", session.DefaultQuestionCount)

		started := deps.Sessions.Create(role, level, "", count)

		b, err := json.Marshal(map[string]any{
			"session_id":     started.SessionID,
			"status":         started.State,
			"question_count": started.QuestionCount,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpInterviewStatus(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("session_id")
		if err != nil {
			return mcpError("session_id is required"), nil
		}

		snap, err := deps.Sessions.Status(id)
		if errors.Is(err, session.ErrNotFound) {
			return mcpError(fmt.Sprintf("session %q not found", id)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("reading status: %v", err)), nil
		}

		b, err := json.Marshal(statusResponse{
			Status:               snap.State,
			QuestionsReady:       snap.QuestionsReady,
			CurrentQuestionIndex: snap.Cursor,
			TotalQuestions:       snap.TotalQuestions,
			InterviewComplete:    snap.Complete,
			OverallScore:         snap.OverallScore,
			FirstQuestion:        snap.FirstQuestion,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal status: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSubmitAnswer(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("session_id")
		if err != nil {
			return mcpError("session_id is required"), nil
		}
		index, err := req.RequireInt("question_index")
		if err != nil {
			return mcpError("question_index is required"), nil
		}
		answer, err := req.RequireString("answer")
		if err != nil {
			return mcpError("answer is required"), nil
		}

		result, err := deps.Sessions.SubmitAnswer(ctx, id, index, answer)
		switch {
		case errors.Is(err, session.ErrNotFound):
			return mcpError(fmt.Sprintf("session %q not found", id)), nil
		case errors.Is(err, session.ErrNotReady):
			return mcpError("questions are still being generated"), nil
		case errors.Is(err, session.ErrOutOfOrder):
			return mcpError(fmt.Sprintf("question_index %d does not match the current question", index)), nil
		case err != nil:
			return mcpError(fmt.Sprintf("submitting answer: %v", err)), nil
		}

		payload := map[string]any{
			"session_id":         result.SessionID,
			"feedback":           result.Feedback,
			"interview_complete": result.Complete,
			"total_questions":    result.TotalQuestions,
		}
		if result.Complete {
			payload["overall_score"] = result.FinalReport.OverallScore
			payload["category_scores"] = result.FinalReport.CategoryScores
			payload["performance_feedback"] = result.FinalReport.PerformanceFeedback
		} else {
			payload["next_question"] = result.NextQuestion
			payload["current_question_index"] = result.Cursor
		}

		b, err := json.Marshal(payload)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceReports(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		summaries := []reportSummary{}
		if deps.Store != nil {
			reports, err := deps.Store.ListReports(10)
			if err != nil {
				return nil, fmt.Errorf("failed to list reports: %w", err)
			}
			for _, rep := range reports {
				summaries = append(summaries, reportSummary{
					SessionID:      rep.SessionID,
					Role:           rep.Role,
					Level:          rep.Level,
					OverallScore:   rep.OverallScore,
					TotalQuestions: rep.TotalQuestions,
					CompletedAt:    rep.CompletedAt.Format(time.RFC3339),
				})
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal reports: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
