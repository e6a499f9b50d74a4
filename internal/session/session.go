// Package session implements the interview session state machine: one
// session per interview attempt, moving pending → ready → complete as
// questions are populated and answers are scored in strict order.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/kalambet/intervu/internal/report"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// ErrNotReady is returned when an answer arrives before question
// generation has finished.
var ErrNotReady = errors.New("questions are still being generated")

// ErrOutOfOrder is returned when the submitted question index does not
// match the session cursor. Answers are strictly sequential; there is no
// re-answering and no answering ahead.
var ErrOutOfOrder = errors.New("answer out of order")

// State is the lifecycle phase of a session. Transitions only move
// forward: StatePending → StateReady → StateComplete.
type State string

const (
	StatePending  State = "generating_questions"
	StateReady    State = "ready"
	StateComplete State = "complete"
)

// Answer is one accepted submission.
type Answer struct {
	QuestionIndex int    `json:"question_index"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
}

// Session tracks one interview attempt. The zero cursor points at the
// next unanswered question; feedback stays index-aligned with answers.
//
// mu guards all mutable fields. submitMu serializes whole answer
// submissions (including the scoring call) so two concurrent submits
// cannot both pass the cursor check; status reads only take mu and stay
// responsive while scoring is in flight.
type Session struct {
	ID         string
	Role       string
	Level      string
	JobContext string
	CreatedAt  time.Time

	mu             sync.Mutex
	submitMu       sync.Mutex
	questions      []string
	questionsReady bool
	answers        []Answer
	feedback       []report.ScoreRecord
	cursor         int
	complete       bool
	overallScore   float64
	finalReport    report.FinalReport
}

// Snapshot is a consistent read-only view of a session's state.
type Snapshot struct {
	ID             string
	Role           string
	Level          string
	State          State
	QuestionsReady bool
	Cursor         int
	TotalQuestions int
	Complete       bool
	OverallScore   float64
	FirstQuestion  string
	FinalReport    report.FinalReport
}

// populate installs the generated questions as a single atomic replace
// and flips the ready flag. The question list never changes afterwards.
func (s *Session) populate(questions []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.questionsReady {
		return
	}
	s.questions = questions
	s.questionsReady = true
}

// snapshot returns a consistent view under the state lock.
func (s *Session) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:             s.ID,
		Role:           s.Role,
		Level:          s.Level,
		State:          StatePending,
		QuestionsReady: s.questionsReady,
		Cursor:         s.cursor,
		TotalQuestions: len(s.questions),
		Complete:       s.complete,
		OverallScore:   s.overallScore,
		FinalReport:    s.finalReport,
	}
	if s.questionsReady {
		snap.State = StateReady
		snap.FirstQuestion = s.questions[0]
	}
	if s.complete {
		snap.State = StateComplete
	}
	return snap
}
