package session

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/kalambet/intervu/internal/report"
)

// stubGenerator returns numbered questions and a fixed score per answer.
type stubGenerator struct {
	mu         sync.Mutex
	scoreCalls int
	delay      time.Duration
}

func (g *stubGenerator) GenerateQuestions(_ context.Context, role, level, _ string, count int) []string {
	questions := make([]string, count)
	for i := range questions {
		questions[i] = fmt.Sprintf("%s/%s question %d", role, level, i+1)
	}
	return questions
}

func (g *stubGenerator) ScoreAnswer(_ context.Context, question, answer, _, _ string) report.ScoreRecord {
	g.mu.Lock()
	g.scoreCalls++
	g.mu.Unlock()
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	scores := report.Scores{Content: 8, Technical: 8, Communication: 8, Relevance: 8}
	scores.Overall = report.QuestionAverage(scores)
	return report.ScoreRecord{
		Question:    question,
		Answer:      answer,
		Scores:      scores,
		Suggestions: []string{"keep going"},
		Assessment:  "fine",
	}
}

type recordingArchiver struct {
	mu      sync.Mutex
	records []CompletedInterview
}

func (a *recordingArchiver) Archive(rec CompletedInterview) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
}

func (a *recordingArchiver) list() []CompletedInterview {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]CompletedInterview(nil), a.records...)
}

func newTestService(t *testing.T, gen Generator) (*Service, *recordingArchiver) {
	t.Helper()
	arch := &recordingArchiver{}
	svc := NewService(Deps{
		Store:     NewMemoryStore(),
		Generator: gen,
		Archiver:  arch,
	})
	return svc, arch
}

// waitReady polls Status until questions are ready.
func waitReady(t *testing.T, svc *Service, id string) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := svc.Status(id)
		if err != nil {
			t.Fatalf("Status(%q) failed: %v", id, err)
		}
		if snap.QuestionsReady {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session %q never became ready", id)
	return Snapshot{}
}

func TestCreate_ClampsCount(t *testing.T) {
	tests := []struct {
		requested int
		want      int
	}{
		{0, 1},
		{-5, 1},
		{1, 1},
		{10, 10},
		{100, 100},
		{250, 100},
	}

	for _, tt := range tests {
		svc, _ := newTestService(t, &stubGenerator{})
		started := svc.Create("software engineer", "mid", "", tt.requested)
		if started.QuestionCount != tt.want {
			t.Errorf("Create(count=%d).QuestionCount = %d, want %d", tt.requested, started.QuestionCount, tt.want)
		}
		if started.State != StatePending {
			t.Errorf("Create state = %q, want %q", started.State, StatePending)
		}

		snap := waitReady(t, svc, started.SessionID)
		if snap.TotalQuestions != tt.want {
			t.Errorf("TotalQuestions = %d, want %d", snap.TotalQuestions, tt.want)
		}
	}
}

func TestStatus_UnknownSession(t *testing.T) {
	svc, _ := newTestService(t, &stubGenerator{})

	_, err := svc.Status("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Status(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestStatus_Idempotent(t *testing.T) {
	svc, _ := newTestService(t, &stubGenerator{})
	started := svc.Create("software engineer", "mid", "", 3)
	waitReady(t, svc, started.SessionID)

	a, err := svc.Status(started.SessionID)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	b, err := svc.Status(started.SessionID)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated Status calls differ:\n%+v\n%+v", a, b)
	}
}

func TestSubmitAnswer_BeforeReady(t *testing.T) {
	// Generator that never finishes within the test window.
	blocked := make(chan struct{})
	t.Cleanup(func() { close(blocked) })
	gen := &blockingGenerator{unblock: blocked}

	svc, _ := newTestService(t, gen)
	started := svc.Create("software engineer", "mid", "", 2)

	_, err := svc.SubmitAnswer(context.Background(), started.SessionID, 0, "too soon")
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("SubmitAnswer before ready = %v, want ErrNotReady", err)
	}
}

type blockingGenerator struct {
	stubGenerator
	unblock <-chan struct{}
}

func (g *blockingGenerator) GenerateQuestions(ctx context.Context, role, level, jobContext string, count int) []string {
	<-g.unblock
	return g.stubGenerator.GenerateQuestions(ctx, role, level, jobContext, count)
}

func TestSubmitAnswer_OutOfOrder(t *testing.T) {
	svc, _ := newTestService(t, &stubGenerator{})
	started := svc.Create("software engineer", "mid", "", 3)
	waitReady(t, svc, started.SessionID)

	for _, index := range []int{1, 2, -1, 5} {
		_, err := svc.SubmitAnswer(context.Background(), started.SessionID, index, "answer")
		if !errors.Is(err, ErrOutOfOrder) {
			t.Errorf("SubmitAnswer(index=%d) = %v, want ErrOutOfOrder", index, err)
		}
	}

	// Failed submissions must not advance state.
	snap, err := svc.Status(started.SessionID)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if snap.Cursor != 0 {
		t.Errorf("cursor = %d after rejected submissions, want 0", snap.Cursor)
	}
}

func TestSubmitAnswer_UnknownSession(t *testing.T) {
	svc, _ := newTestService(t, &stubGenerator{})

	_, err := svc.SubmitAnswer(context.Background(), "nope", 0, "answer")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("SubmitAnswer(unknown) = %v, want ErrNotFound", err)
	}
}

func TestFullInterviewFlow(t *testing.T) {
	gen := &stubGenerator{}
	svc, arch := newTestService(t, gen)

	started := svc.Create("software engineer", "mid", "", 3)
	snap := waitReady(t, svc, started.SessionID)
	if snap.FirstQuestion != "software engineer/mid question 1" {
		t.Errorf("FirstQuestion = %q", snap.FirstQuestion)
	}

	for i := 0; i < 3; i++ {
		res, err := svc.SubmitAnswer(context.Background(), started.SessionID, i, fmt.Sprintf("answer %d", i))
		if err != nil {
			t.Fatalf("SubmitAnswer(%d) failed: %v", i, err)
		}
		if res.Cursor != i+1 {
			t.Errorf("cursor after answer %d = %d, want %d", i, res.Cursor, i+1)
		}

		if i < 2 {
			if res.Complete {
				t.Errorf("answer %d marked complete", i)
			}
			want := fmt.Sprintf("software engineer/mid question %d", i+2)
			if res.NextQuestion != want {
				t.Errorf("NextQuestion = %q, want %q", res.NextQuestion, want)
			}
		} else {
			if !res.Complete {
				t.Fatal("final answer did not complete the interview")
			}
			if res.FinalReport.OverallScore != 8.0 {
				t.Errorf("OverallScore = %v, want 8.0", res.FinalReport.OverallScore)
			}
			if res.FinalReport.TotalQuestions != 3 {
				t.Errorf("TotalQuestions = %d, want 3", res.FinalReport.TotalQuestions)
			}
		}
	}

	// Completion is terminal: no further submissions, score stays put.
	_, err := svc.SubmitAnswer(context.Background(), started.SessionID, 3, "extra")
	if !errors.Is(err, ErrOutOfOrder) {
		t.Errorf("SubmitAnswer after complete = %v, want ErrOutOfOrder", err)
	}

	snap, err = svc.Status(started.SessionID)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if snap.State != StateComplete || !snap.Complete {
		t.Errorf("state = %q complete=%v, want complete", snap.State, snap.Complete)
	}
	if snap.OverallScore != 8.0 {
		t.Errorf("OverallScore = %v, want 8.0", snap.OverallScore)
	}

	records := arch.list()
	if len(records) != 1 {
		t.Fatalf("archived %d records, want 1", len(records))
	}
	if records[0].SessionID != started.SessionID {
		t.Errorf("archived session = %q, want %q", records[0].SessionID, started.SessionID)
	}
	if records[0].Report.OverallScore != 8.0 {
		t.Errorf("archived score = %v, want 8.0", records[0].Report.OverallScore)
	}
}

func TestSubmitAnswer_ConcurrentSubmissionsSerialized(t *testing.T) {
	gen := &stubGenerator{delay: 10 * time.Millisecond}
	svc, _ := newTestService(t, gen)

	started := svc.Create("software engineer", "mid", "", 1)
	waitReady(t, svc, started.SessionID)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SubmitAnswer(context.Background(), started.SessionID, 0, "racing answer")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var accepted int
	for err := range errs {
		if err == nil {
			accepted++
		} else if !errors.Is(err, ErrOutOfOrder) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if accepted != 1 {
		t.Errorf("%d submissions accepted for the same cursor, want exactly 1", accepted)
	}

	gen.mu.Lock()
	calls := gen.scoreCalls
	gen.mu.Unlock()
	if calls != 1 {
		t.Errorf("generator scored %d times, want 1", calls)
	}
}

func TestStatus_NonBlockingWhileScoring(t *testing.T) {
	gen := &stubGenerator{delay: 200 * time.Millisecond}
	svc, _ := newTestService(t, gen)

	started := svc.Create("software engineer", "mid", "", 2)
	waitReady(t, svc, started.SessionID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := svc.SubmitAnswer(context.Background(), started.SessionID, 0, "slow"); err != nil {
			t.Errorf("SubmitAnswer failed: %v", err)
		}
	}()

	// Give the submission time to enter the scoring call.
	time.Sleep(20 * time.Millisecond)

	start := time.Now()
	if _, err := svc.Status(started.SessionID); err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Status blocked for %v while scoring was in flight", elapsed)
	}

	<-done
}
