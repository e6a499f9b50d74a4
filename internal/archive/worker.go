// Package archive persists completed interview reports in the
// background. Submissions must not stall on storage, so completion
// events are queued and written by a worker goroutine.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kalambet/intervu/internal/session"
	"github.com/kalambet/intervu/internal/storage"
)

// ReportStore abstracts the persistence operation the worker needs.
// Implemented by storage.Store.
type ReportStore interface {
	SaveReport(r storage.InterviewReport) error
}

// Worker drains completed interviews from an internal queue into the
// report store. It implements session.Archiver.
type Worker struct {
	store  ReportStore
	queue  chan session.CompletedInterview
	logger *slog.Logger
}

// NewWorker creates a Worker with the given queue capacity.
// If queueSize is <= 0, it defaults to 64.
func NewWorker(store ReportStore, queueSize int) *Worker {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Worker{
		store:  store,
		queue:  make(chan session.CompletedInterview, queueSize),
		logger: slog.Default(),
	}
}

// Archive enqueues a completed interview for persistence. It never
// blocks: if the queue is full the record is dropped with a log entry
// rather than stalling an answer submission.
func (w *Worker) Archive(rec session.CompletedInterview) {
	select {
	case w.queue <- rec:
	default:
		w.logger.Error("archive queue full, dropping report", "session_id", rec.SessionID)
	}
}

// Run processes queued reports until ctx is cancelled, then drains
// whatever is already queued before returning.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case rec := <-w.queue:
			w.persist(rec)
		case <-ctx.Done():
			for {
				select {
				case rec := <-w.queue:
					w.persist(rec)
				default:
					return
				}
			}
		}
	}
}

// RunOnce persists a single queued report if one is available.
// Returns true if a record was processed.
func (w *Worker) RunOnce() bool {
	select {
	case rec := <-w.queue:
		w.persist(rec)
		return true
	default:
		return false
	}
}

func (w *Worker) persist(rec session.CompletedInterview) {
	if err := w.process(rec); err != nil {
		w.logger.Error("archiving report failed", "session_id", rec.SessionID, "error", err)
	}
}

func (w *Worker) process(rec session.CompletedInterview) error {
	reportJSON, err := json.Marshal(rec.Report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	err = w.store.SaveReport(storage.InterviewReport{
		SessionID:      rec.SessionID,
		Role:           rec.Role,
		Level:          rec.Level,
		OverallScore:   rec.Report.OverallScore,
		TotalQuestions: rec.Report.TotalQuestions,
		ReportJSON:     string(reportJSON),
		CompletedAt:    rec.CompletedAt,
	})
	if err != nil {
		return fmt.Errorf("saving report %s: %w", rec.SessionID, err)
	}

	w.logger.Info("report archived", "session_id", rec.SessionID, "overall_score", rec.Report.OverallScore)
	return nil
}
