package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// InterviewReport is the persisted record of a completed interview.
// ReportJSON holds the serialized report.FinalReport.
type InterviewReport struct {
	SessionID      string
	Role           string
	Level          string
	OverallScore   float64
	TotalQuestions int
	ReportJSON     string
	CompletedAt    time.Time
}

// RoleProfile is an ingested job description used to tailor question
// generation. Source records how it arrived ("text" or "pdf").
type RoleProfile struct {
	ID        string
	Title     string
	Content   string
	Source    string
	CreatedAt time.Time
}
