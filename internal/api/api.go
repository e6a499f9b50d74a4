// Package api exposes the interview pipeline over HTTP and MCP.
package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/kalambet/intervu/internal/session"
	"github.com/kalambet/intervu/internal/storage"
)

const maxRequestBodySize = 1 << 20    // 1MB
const maxProfileBodySize = 10 << 20   // 10MB, PDFs arrive base64-encoded
const defaultListLimit = 20
const maxListLimit = 100

// Deps holds the HTTP handler dependencies. Metrics is mounted at
// /metrics when non-nil.
type Deps struct {
	Sessions *session.Service
	Store    *storage.Store
	Metrics  http.Handler
}

// NewHandler returns the HTTP handler for the interview service.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth(deps))
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	r.Post("/start_interview", handleStartInterview(deps))
	r.Get("/interview_status/{session_id}", handleInterviewStatus(deps))
	r.Post("/submit_answer", handleSubmitAnswer(deps))

	r.Get("/reports", handleListReports(deps))
	r.Get("/reports/{session_id}", handleGetReport(deps))

	r.Post("/role_profiles", handleCreateRoleProfile(deps))
	r.Get("/role_profiles", handleListRoleProfiles(deps))

	return r
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":        "ok",
			"live_sessions": deps.Sessions.Count(),
		})
	}
}

type startInterviewRequest struct {
	Role          string `json:"role"`
	Level         string `json:"level"`
	QuestionCount int    `json:"question_count"`
	RoleProfileID string `json:"role_profile_id"`
}

func handleStartInterview(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req startInterviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Role == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "role is required")
			return
		}
		if req.Level == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "level is required")
			return
		}
		if req.QuestionCount == 0 {
			req.QuestionCount = session.DefaultQuestionCount
		}

		var jobContext string
		if req.RoleProfileID != "" {
			profile, err := deps.Store.GetRoleProfile(req.RoleProfileID)
			if errors.Is(err, storage.ErrNotFound) {
				httpError(w, http.StatusNotFound, "not_found_error", "role profile %q not found", req.RoleProfileID)
				return
			}
			if err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "loading role profile: %v", err)
				return
			}
			jobContext = profile.Content
		}

		started := deps.Sessions.Create(req.Role, req.Level, jobContext, req.QuestionCount)

		writeJSON(w, http.StatusOK, map[string]any{
			"session_id":     started.SessionID,
			"status":         started.State,
			"message":        "Generating personalized interview questions...",
			"question_count": started.QuestionCount,
		})
	}
}

type statusResponse struct {
	Status               session.State `json:"status"`
	QuestionsReady       bool          `json:"questions_ready"`
	CurrentQuestionIndex int           `json:"current_question_index"`
	TotalQuestions       int           `json:"total_questions"`
	InterviewComplete    bool          `json:"interview_complete"`
	OverallScore         float64       `json:"overall_score"`
	FirstQuestion        string        `json:"first_question,omitempty"`
}

func handleInterviewStatus(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "session_id")

		snap, err := deps.Sessions.Status(id)
		if errors.Is(err, session.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "session %q not found", id)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "reading session status: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, statusResponse{
			Status:               snap.State,
			QuestionsReady:       snap.QuestionsReady,
			CurrentQuestionIndex: snap.Cursor,
			TotalQuestions:       snap.TotalQuestions,
			InterviewComplete:    snap.Complete,
			OverallScore:         snap.OverallScore,
			FirstQuestion:        snap.FirstQuestion,
		})
	}
}

type submitAnswerRequest struct {
	SessionID     string `json:"session_id"`
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
}

func handleSubmitAnswer(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req submitAnswerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.SessionID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "session_id is required")
			return
		}

		result, err := deps.Sessions.SubmitAnswer(r.Context(), req.SessionID, req.QuestionIndex, req.Answer)
		switch {
		case errors.Is(err, session.ErrNotFound):
			httpError(w, http.StatusNotFound, "not_found_error", "session %q not found", req.SessionID)
			return
		case errors.Is(err, session.ErrNotReady):
			httpError(w, http.StatusBadRequest, "invalid_request_error", "questions are still being generated")
			return
		case errors.Is(err, session.ErrOutOfOrder):
			httpError(w, http.StatusConflict, "invalid_request_error",
				"question_index %d does not match the current question", req.QuestionIndex)
			return
		case err != nil:
			httpError(w, http.StatusInternalServerError, "api_error", "submitting answer: %v", err)
			return
		}

		if result.Complete {
			writeJSON(w, http.StatusOK, map[string]any{
				"session_id":           result.SessionID,
				"feedback":             result.Feedback,
				"interview_complete":   true,
				"overall_score":        result.FinalReport.OverallScore,
				"category_scores":      result.FinalReport.CategoryScores,
				"performance_feedback": result.FinalReport.PerformanceFeedback,
				"total_questions":      result.FinalReport.TotalQuestions,
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"session_id":             result.SessionID,
			"feedback":               result.Feedback,
			"interview_complete":     false,
			"next_question":          result.NextQuestion,
			"current_question_index": result.Cursor,
			"total_questions":        result.TotalQuestions,
		})
	}
}

type reportSummary struct {
	SessionID      string  `json:"session_id"`
	Role           string  `json:"role"`
	Level          string  `json:"level"`
	OverallScore   float64 `json:"overall_score"`
	TotalQuestions int     `json:"total_questions"`
	CompletedAt    string  `json:"completed_at"`
}

func handleListReports(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reports, err := deps.Store.ListReports(parseLimit(r))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing reports: %v", err)
			return
		}

		summaries := make([]reportSummary, len(reports))
		for i, rep := range reports {
			summaries[i] = reportSummary{
				SessionID:      rep.SessionID,
				Role:           rep.Role,
				Level:          rep.Level,
				OverallScore:   rep.OverallScore,
				TotalQuestions: rep.TotalQuestions,
				CompletedAt:    rep.CompletedAt.Format(time.RFC3339),
			}
		}
		writeJSON(w, http.StatusOK, summaries)
	}
}

func handleGetReport(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "session_id")

		rep, err := deps.Store.GetReport(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "report %q not found", id)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading report: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"session_id":   rep.SessionID,
			"role":         rep.Role,
			"level":        rep.Level,
			"completed_at": rep.CompletedAt.Format(time.RFC3339),
			"report":       json.RawMessage(rep.ReportJSON),
		})
	}
}

type roleProfileRequest struct {
	Title   string `json:"title"`
	Type    string `json:"type"`    // "text" (default) or "pdf"
	Content string `json:"content"` // plain text, or base64 for pdf
}

func handleCreateRoleProfile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxProfileBodySize)
		defer r.Body.Close()

		var req roleProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Content == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "content is required")
			return
		}
		if req.Type == "" {
			req.Type = "text"
		}

		var content string
		switch req.Type {
		case "text":
			content = req.Content
		case "pdf":
			decoded, err := base64.StdEncoding.DecodeString(req.Content)
			if err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "content is not valid base64: %v", err)
				return
			}
			content, err = extractPDFText(decoded)
			if err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "extracting pdf text: %v", err)
				return
			}
		default:
			httpError(w, http.StatusBadRequest, "invalid_request_error", "type must be \"text\" or \"pdf\"")
			return
		}

		profile := storage.RoleProfile{
			ID:        uuid.New().String(),
			Title:     req.Title,
			Content:   content,
			Source:    req.Type,
			CreatedAt: time.Now().UTC(),
		}
		if err := deps.Store.SaveRoleProfile(profile); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "saving role profile: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"id":     profile.ID,
			"status": "stored",
		})
	}
}

func handleListRoleProfiles(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profiles, err := deps.Store.ListRoleProfiles(parseLimit(r))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing role profiles: %v", err)
			return
		}

		type profileSummary struct {
			ID        string `json:"id"`
			Title     string `json:"title"`
			Source    string `json:"source"`
			CreatedAt string `json:"created_at"`
		}
		summaries := make([]profileSummary, len(profiles))
		for i, p := range profiles {
			summaries[i] = profileSummary{
				ID:        p.ID,
				Title:     p.Title,
				Source:    p.Source,
				CreatedAt: p.CreatedAt.Format(time.RFC3339),
			}
		}
		writeJSON(w, http.StatusOK, summaries)
	}
}

// extractPDFText returns the plain text of a PDF document.
func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("reading pdf: %w", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", fmt.Errorf("reading extracted text: %w", err)
	}
	return buf.String(), nil
}

func parseLimit(r *http.Request) int {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
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
