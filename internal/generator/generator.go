// Package generator produces interview questions and answer evaluations
// via an external chat-completion provider, with a deterministic local
// fallback. Both operations are total: any network failure, malformed
// output, or question shortfall is absorbed by the fallback, so callers
// never see an error from this package.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kalambet/intervu/internal/report"
)

const (
	opQuestions = "generate_questions"
	opScore     = "score_answer"

	questionTemperature = 0.7
	questionMaxTokens   = 2000
	scoringTemperature  = 0.5
	scoringMaxTokens    = 1500
)

// Chatter is the chat-completion boundary. Implemented by *Client.
type Chatter interface {
	Chat(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error)
}

// Recorder receives generator call outcomes for operability metrics.
type Recorder interface {
	ObserveGeneratorRequest(op string, success bool)
	ObserveFallback(op string)
}

// Generator wraps a Chatter with parsing and fallback. A nil client
// runs in offline mode: every call goes straight to the fallback.
type Generator struct {
	client   Chatter
	recorder Recorder
	logger   *slog.Logger
}

// New creates a Generator. client may be nil (offline mode); recorder
// may be nil to disable metrics.
func New(client Chatter, recorder Recorder) *Generator {
	return &Generator{
		client:   client,
		recorder: recorder,
		logger:   slog.Default(),
	}
}

// GenerateQuestions returns exactly count questions for the role/level.
// jobContext optionally carries a job description to tailor questions.
func (g *Generator) GenerateQuestions(ctx context.Context, role, level, jobContext string, count int) []string {
	if g.client == nil {
		g.observeFallback(opQuestions)
		return FallbackQuestions(role, count)
	}

	questions, err := g.generateQuestions(ctx, role, level, jobContext, count)
	g.observeRequest(opQuestions, err == nil)
	if err != nil {
		g.logger.Warn("question generation failed, using fallback catalog",
			"role", role, "level", level, "count", count, "error", err)
		g.observeFallback(opQuestions)
		return FallbackQuestions(role, count)
	}
	return questions
}

func (g *Generator) generateQuestions(ctx context.Context, role, level, jobContext string, count int) ([]string, error) {
	raw, err := g.client.Chat(ctx, buildQuestionPrompt(role, level, jobContext, count), questionTemperature, questionMaxTokens)
	if err != nil {
		return nil, err
	}

	var questions []string
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, fmt.Errorf("parsing questions: %w", err)
	}
	if len(questions) < count {
		return nil, fmt.Errorf("expected %d questions, got %d", count, len(questions))
	}
	return questions[:count], nil
}

// ScoreAnswer evaluates one answer. On any failure the deterministic
// fallback scorer is used, so the returned record is always valid.
func (g *Generator) ScoreAnswer(ctx context.Context, question, answer, role, level string) report.ScoreRecord {
	if g.client == nil {
		g.observeFallback(opScore)
		return FallbackScore(question, answer)
	}

	record, err := g.scoreAnswer(ctx, question, answer, role, level)
	g.observeRequest(opScore, err == nil)
	if err != nil {
		g.logger.Warn("answer scoring failed, using fallback scorer",
			"role", role, "level", level, "error", err)
		g.observeFallback(opScore)
		return FallbackScore(question, answer)
	}
	return record
}

// scoredAnswer mirrors the JSON object the provider is asked to return.
type scoredAnswer struct {
	ContentScore           float64  `json:"content_score"`
	TechnicalScore         float64  `json:"technical_score"`
	CommunicationScore     float64  `json:"communication_score"`
	RelevanceScore         float64  `json:"relevance_score"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
	OverallAssessment      string   `json:"overall_assessment"`
}

func (g *Generator) scoreAnswer(ctx context.Context, question, answer, role, level string) (report.ScoreRecord, error) {
	raw, err := g.client.Chat(ctx, buildScoringPrompt(question, answer, role, level), scoringTemperature, scoringMaxTokens)
	if err != nil {
		return report.ScoreRecord{}, err
	}

	var parsed scoredAnswer
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return report.ScoreRecord{}, fmt.Errorf("parsing feedback: %w", err)
	}
	if len(parsed.ImprovementSuggestions) == 0 {
		return report.ScoreRecord{}, fmt.Errorf("feedback missing improvement suggestions")
	}

	scores := report.Scores{
		Content:       report.Round1(report.Clamp(parsed.ContentScore)),
		Technical:     report.Round1(report.Clamp(parsed.TechnicalScore)),
		Communication: report.Round1(report.Clamp(parsed.CommunicationScore)),
		Relevance:     report.Round1(report.Clamp(parsed.RelevanceScore)),
	}
	scores.Overall = report.QuestionAverage(scores)

	return report.ScoreRecord{
		Question:    question,
		Answer:      answer,
		Scores:      scores,
		Suggestions: parsed.ImprovementSuggestions,
		Assessment:  parsed.OverallAssessment,
	}, nil
}

func (g *Generator) observeRequest(op string, success bool) {
	if g.recorder != nil {
		g.recorder.ObserveGeneratorRequest(op, success)
	}
}

func (g *Generator) observeFallback(op string) {
	if g.recorder != nil {
		g.recorder.ObserveFallback(op)
	}
}
