package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/intervu/internal/report"
)

const (
	// DefaultQuestionCount is used when a start request omits the count.
	DefaultQuestionCount = 10
	minQuestionCount     = 1
	maxQuestionCount     = 100
)

// Generator produces questions and answer evaluations. Both operations
// are total: implementations absorb external failures via a fallback.
type Generator interface {
	GenerateQuestions(ctx context.Context, role, level, jobContext string, count int) []string
	ScoreAnswer(ctx context.Context, question, answer, role, level string) report.ScoreRecord
}

// CompletedInterview is handed to the Archiver when a session finishes.
type CompletedInterview struct {
	SessionID   string
	Role        string
	Level       string
	Report      report.FinalReport
	CompletedAt time.Time
}

// Archiver receives completed interviews for persistence. Implementations
// must not block: completion happens inside an answer submission.
type Archiver interface {
	Archive(rec CompletedInterview)
}

// Recorder receives session lifecycle events for operability metrics.
type Recorder interface {
	InterviewStarted()
	InterviewCompleted()
	AnswerScored()
}

// Deps holds the Service dependencies. Archiver and Recorder are
// optional.
type Deps struct {
	Store     Store
	Generator Generator
	Archiver  Archiver
	Recorder  Recorder
}

// Service owns interview sessions: creation with background question
// population, status reads, and in-order answer submission.
type Service struct {
	store    Store
	gen      Generator
	archiver Archiver
	recorder Recorder
	logger   *slog.Logger
}

// NewService creates a Service from deps.
func NewService(deps Deps) *Service {
	return &Service{
		store:    deps.Store,
		gen:      deps.Generator,
		archiver: deps.Archiver,
		recorder: deps.Recorder,
		logger:   slog.Default(),
	}
}

// Started is the immediate result of Create, returned before question
// generation finishes.
type Started struct {
	SessionID     string
	State         State
	QuestionCount int
}

// ClampCount bounds a requested question count to [1,100]; zero and
// negative values clamp to the minimum.
func ClampCount(count int) int {
	if count < minQuestionCount {
		return minQuestionCount
	}
	if count > maxQuestionCount {
		return maxQuestionCount
	}
	return count
}

// Create allocates a pending session and schedules question population
// in the background. It returns without waiting for generation; callers
// poll Status until the session is ready. Population runs to completion
// even if the session is abandoned; there is no cancellation.
func (s *Service) Create(role, level, jobContext string, count int) Started {
	count = ClampCount(count)

	sess := &Session{
		ID:         uuid.New().String(),
		Role:       role,
		Level:      level,
		JobContext: jobContext,
		CreatedAt:  time.Now().UTC(),
	}
	s.store.Put(sess)

	if s.recorder != nil {
		s.recorder.InterviewStarted()
	}
	s.logger.Info("interview session created",
		"session_id", sess.ID, "role", role, "level", level, "count", count)

	go s.populate(sess, count)

	return Started{
		SessionID:     sess.ID,
		State:         StatePending,
		QuestionCount: count,
	}
}

// populate generates the question list and installs it atomically. The
// generator contract is total, so the session always becomes ready.
func (s *Service) populate(sess *Session, count int) {
	questions := s.gen.GenerateQuestions(context.Background(), sess.Role, sess.Level, sess.JobContext, count)
	sess.populate(questions)
	s.logger.Info("questions ready", "session_id", sess.ID, "count", len(questions))
}

// Count returns the number of live sessions in the store.
func (s *Service) Count() int {
	return s.store.Len()
}

// Status returns a consistent snapshot of the session state.
func (s *Service) Status(id string) (Snapshot, error) {
	sess, ok := s.store.Get(id)
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return sess.snapshot(), nil
}

// AnswerResult is returned from SubmitAnswer: the score record for this
// answer plus either the next question or the final report.
type AnswerResult struct {
	SessionID      string
	Feedback       report.ScoreRecord
	Complete       bool
	NextQuestion   string
	Cursor         int
	TotalQuestions int
	FinalReport    report.FinalReport
}

// SubmitAnswer records an answer for the question at index, scores it
// synchronously, and advances the cursor. index must equal the cursor;
// concurrent submissions to the same session are serialized so cursor
// advancement stays strictly sequential.
func (s *Service) SubmitAnswer(ctx context.Context, id string, index int, answer string) (AnswerResult, error) {
	sess, ok := s.store.Get(id)
	if !ok {
		return AnswerResult{}, ErrNotFound
	}

	sess.submitMu.Lock()
	defer sess.submitMu.Unlock()

	sess.mu.Lock()
	if !sess.questionsReady {
		sess.mu.Unlock()
		return AnswerResult{}, ErrNotReady
	}
	if sess.complete || index != sess.cursor {
		sess.mu.Unlock()
		return AnswerResult{}, ErrOutOfOrder
	}
	question := sess.questions[index]
	role, level := sess.Role, sess.Level
	sess.mu.Unlock()

	// Scoring happens outside the state lock so status polls stay
	// responsive; submitMu still keeps submissions sequential.
	record := s.gen.ScoreAnswer(ctx, question, answer, role, level)

	sess.mu.Lock()
	sess.answers = append(sess.answers, Answer{
		QuestionIndex: index,
		Question:      question,
		Answer:        answer,
	})
	sess.feedback = append(sess.feedback, record)
	sess.cursor++

	result := AnswerResult{
		SessionID:      sess.ID,
		Feedback:       record,
		Cursor:         sess.cursor,
		TotalQuestions: len(sess.questions),
	}

	completed := sess.cursor == len(sess.questions)
	if completed {
		sess.complete = true
		sess.finalReport = report.Aggregate(sess.feedback)
		sess.overallScore = sess.finalReport.OverallScore
		result.Complete = true
		result.FinalReport = sess.finalReport
	} else {
		result.NextQuestion = sess.questions[sess.cursor]
	}
	sess.mu.Unlock()

	if s.recorder != nil {
		s.recorder.AnswerScored()
	}

	if completed {
		s.logger.Info("interview complete",
			"session_id", sess.ID, "overall_score", result.FinalReport.OverallScore)
		if s.recorder != nil {
			s.recorder.InterviewCompleted()
		}
		if s.archiver != nil {
			s.archiver.Archive(CompletedInterview{
				SessionID:   sess.ID,
				Role:        role,
				Level:       level,
				Report:      result.FinalReport,
				CompletedAt: time.Now().UTC(),
			})
		}
	}

	return result, nil
}
