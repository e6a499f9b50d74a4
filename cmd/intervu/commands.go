package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// --- begin ---

var beginCmd = &cobra.Command{
	Use:   "begin",
	Short: "Start a mock interview session",
	Long: `Start a mock interview session.

Examples:
  intervu begin --role "software engineer" --level mid
  intervu begin --role "data analyst" --level junior --count 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		level, _ := cmd.Flags().GetString("level")
		count, _ := cmd.Flags().GetInt("count")
		profileID, _ := cmd.Flags().GetString("profile")

		if role == "" || level == "" {
			return fmt.Errorf("--role and --level are required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		req := map[string]any{
			"role":  role,
			"level": level,
		}
		if count > 0 {
			req["question_count"] = count
		}
		if profileID != "" {
			req["role_profile_id"] = profileID
		}

		resp, err := client.post(cmd.Context(), "/start_interview", req)
		if err != nil {
			return err
		}

		var started struct {
			SessionID string `json:"session_id"`
		}
		if err := decodeJSON(resp, &started); err != nil {
			return err
		}

		printStep("Generating questions...")

		status, err := waitForQuestions(cmd.Context(), client, started.SessionID)
		if err != nil {
			return err
		}

		printSuccess("Session %s ready (%d questions)", started.SessionID, status.TotalQuestions)
		printQuestion(1, status.TotalQuestions, status.FirstQuestion)
		fmt.Printf("\nAnswer with:\n  intervu answer %s \"your answer\"\n", started.SessionID)
		return nil
	},
}

type sessionStatus struct {
	Status               string  `json:"status"`
	QuestionsReady       bool    `json:"questions_ready"`
	CurrentQuestionIndex int     `json:"current_question_index"`
	TotalQuestions       int     `json:"total_questions"`
	InterviewComplete    bool    `json:"interview_complete"`
	OverallScore         float64 `json:"overall_score"`
	FirstQuestion        string  `json:"first_question"`
}

func waitForQuestions(ctx context.Context, client *apiClient, sessionID string) (sessionStatus, error) {
	deadline := time.Now().Add(2 * time.Minute)
	for {
		resp, err := client.get(ctx, "/interview_status/"+sessionID)
		if err != nil {
			return sessionStatus{}, err
		}
		var status sessionStatus
		if err := decodeJSON(resp, &status); err != nil {
			return sessionStatus{}, err
		}
		if status.QuestionsReady {
			return status, nil
		}
		if time.Now().After(deadline) {
			return sessionStatus{}, fmt.Errorf("timed out waiting for questions on session %s", sessionID)
		}
		select {
		case <-ctx.Done():
			return sessionStatus{}, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func init() {
	beginCmd.Flags().String("role", "", "target job role, e.g. \"software engineer\"")
	beginCmd.Flags().String("level", "", "experience level: junior, mid, or senior")
	beginCmd.Flags().Int("count", 0, "number of questions (1-100, default 10)")
	beginCmd.Flags().String("profile", "", "role profile id for a job-specific interview")
}

// --- answer ---

var answerCmd = &cobra.Command{
	Use:   "answer <session-id> <answer...>",
	Short: "Answer the current interview question",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]
		answer := strings.Join(args[1:], " ")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		// The server enforces in-order answering; fetch the cursor so
		// the user never has to track indexes by hand.
		statusResp, err := client.get(cmd.Context(), "/interview_status/"+sessionID)
		if err != nil {
			return err
		}
		var status sessionStatus
		if err := decodeJSON(statusResp, &status); err != nil {
			return err
		}
		if status.InterviewComplete {
			printWarning("Interview already complete (overall score %.1f)", status.OverallScore)
			return nil
		}
		if !status.QuestionsReady {
			printWarning("Questions are still being generated, try again shortly")
			return nil
		}

		resp, err := client.post(cmd.Context(), "/submit_answer", map[string]any{
			"session_id":     sessionID,
			"question_index": status.CurrentQuestionIndex,
			"answer":         answer,
		})
		if err != nil {
			return err
		}

		var result answerResponse
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		renderAnswerResult(result)
		return nil
	},
}

// answerScores mirrors the scores object inside the server's feedback
// payload; the field tags must match report.Scores.
type answerScores struct {
	Content       float64 `json:"content_score"`
	Technical     float64 `json:"technical_score"`
	Communication float64 `json:"communication_score"`
	Relevance     float64 `json:"relevance_score"`
	Overall       float64 `json:"overall_question_score"`
}

type answerResponse struct {
	Feedback struct {
		Scores      answerScores `json:"scores"`
		Suggestions []string     `json:"improvement_suggestions"`
	} `json:"feedback"`
	InterviewComplete    bool               `json:"interview_complete"`
	NextQuestion         string             `json:"next_question"`
	CurrentQuestionIndex int                `json:"current_question_index"`
	TotalQuestions       int                `json:"total_questions"`
	OverallScore         float64            `json:"overall_score"`
	CategoryScores       map[string]float64 `json:"category_scores"`
	PerformanceFeedback  []string           `json:"performance_feedback"`
}

func renderAnswerResult(result answerResponse) {
	printAnswerScores(result.Feedback.Scores)
	printSuggestions(result.Feedback.Suggestions)

	if result.InterviewComplete {
		fmt.Println()
		printSuccess("Interview complete — overall score %.1f", result.OverallScore)
		for category, score := range result.CategoryScores {
			printStatus(category, "%.1f", score)
		}
		fmt.Println()
		for _, line := range result.PerformanceFeedback {
			fmt.Println(line)
		}
		return
	}

	printQuestion(result.CurrentQuestionIndex+1, result.TotalQuestions, result.NextQuestion)
}

// --- reports ---

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Browse completed interview reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent interview reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/reports?limit=%d", limit))
		if err != nil {
			return err
		}

		var reports []struct {
			SessionID      string  `json:"session_id"`
			Role           string  `json:"role"`
			Level          string  `json:"level"`
			OverallScore   float64 `json:"overall_score"`
			TotalQuestions int     `json:"total_questions"`
			CompletedAt    string  `json:"completed_at"`
		}
		if err := decodeJSON(resp, &reports); err != nil {
			return err
		}

		if len(reports) == 0 {
			fmt.Println("No reports found.")
			return nil
		}

		for _, r := range reports {
			fmt.Printf("%s  %.1f  %s (%s)  %s\n",
				colorize(colorCyan, shortID(r.SessionID)),
				r.OverallScore,
				r.Role,
				r.Level,
				r.CompletedAt,
			)
		}
		return nil
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a single interview report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/reports/"+args[0])
		if err != nil {
			return err
		}

		var report any
		if err := decodeJSON(resp, &report); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	reportsListCmd.Flags().Int("limit", 20, "maximum number of reports to list")
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
}
