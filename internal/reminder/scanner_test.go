package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/codelens/taskhub/internal/db"
	"github.com/codelens/taskhub/internal/domain/task"
	"github.com/codelens/taskhub/internal/notifications"
)

type fakeTaskSource struct {
	dueSoonFn func(ctx context.Context, from, to time.Time) ([]task.DueReminder, error)
}

func (f *fakeTaskSource) DueSoon(ctx context.Context, q db.DBTX, from, to time.Time) ([]task.DueReminder, error) {
	if f.dueSoonFn != nil {
		return f.dueSoonFn(ctx, from, to)
	}

	return nil, nil
}

type fakeNotifier struct {
	sendFn func(ctx context.Context, in notifications.SendDueTaskReminderInput) error
	sent   []notifications.SendDueTaskReminderInput
}

func (f *fakeNotifier) SendDueTaskReminder(ctx context.Context, in notifications.SendDueTaskReminderInput) error {
	if f.sendFn != nil {
		if err := f.sendFn(ctx, in); err != nil {
			return err
		}
	}

	f.sent = append(f.sent, in)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScanner(source *fakeTaskSource, notifier *fakeNotifier) *Scanner {
	return New(Config{
		PollInterval: time.Minute,
		Window:       24 * time.Hour,
		MaxAttempts:  3,
	}, nil, source, notifier, nil, testLogger())
}

func dueTomorrow(id string) task.DueReminder {
	return task.DueReminder{
		TaskID:       id,
		Title:        "Write migration",
		DueDate:      time.Now().Add(20 * time.Hour),
		ProjectTitle: "Backend rewrite",
		OwnerEmail:   "dev@example.com",
	}
}

func TestScan_SendsOncePerTask(t *testing.T) {
	rem := dueTomorrow("task-1")

	source := &fakeTaskSource{
		dueSoonFn: func(ctx context.Context, from, to time.Time) ([]task.DueReminder, error) {
			return []task.DueReminder{rem}, nil
		},
	}
	notifier := &fakeNotifier{}

	s := newTestScanner(source, notifier)

	// the task stays inside the window across passes; only the first pass
	// may notify
	s.scan(context.Background())
	s.scan(context.Background())

	if len(notifier.sent) != 1 {
		t.Fatalf("got %d sends, want 1", len(notifier.sent))
	}

	got := notifier.sent[0]
	if got.TaskID != "task-1" || got.Email != "dev@example.com" || got.ProjectTitle != "Backend rewrite" {
		t.Fatalf("reminder fields not carried through: %+v", got)
	}
}

func TestScan_SourceErrorSendsNothing(t *testing.T) {
	source := &fakeTaskSource{
		dueSoonFn: func(ctx context.Context, from, to time.Time) ([]task.DueReminder, error) {
			return nil, errors.New("db error")
		},
	}
	notifier := &fakeNotifier{}

	s := newTestScanner(source, notifier)
	s.scan(context.Background())

	if len(notifier.sent) != 0 {
		t.Fatalf("got %d sends after a failed scan, want 0", len(notifier.sent))
	}
}

func TestScan_FailedSendBacksOff(t *testing.T) {
	rem := dueTomorrow("task-1")

	source := &fakeTaskSource{
		dueSoonFn: func(ctx context.Context, from, to time.Time) ([]task.DueReminder, error) {
			return []task.DueReminder{rem}, nil
		},
	}

	attempts := 0
	notifier := &fakeNotifier{
		sendFn: func(ctx context.Context, in notifications.SendDueTaskReminderInput) error {
			attempts++
			return errors.New("provider down")
		},
	}

	s := newTestScanner(source, notifier)

	s.scan(context.Background())

	if attempts != 1 {
		t.Fatalf("got %d attempts, want 1", attempts)
	}

	// the immediate next pass falls inside the backoff window
	s.scan(context.Background())

	if attempts != 1 {
		t.Fatalf("retry fired before the backoff elapsed, attempts=%d", attempts)
	}

	st, ok := s.retries["task-1"]
	if !ok {
		t.Fatalf("expected retry state for the failed task")
	}
	if st.attempts != 1 {
		t.Fatalf("got %d recorded attempts, want 1", st.attempts)
	}
}

func TestScan_AbandonsAfterMaxAttempts(t *testing.T) {
	rem := dueTomorrow("task-1")

	source := &fakeTaskSource{
		dueSoonFn: func(ctx context.Context, from, to time.Time) ([]task.DueReminder, error) {
			return []task.DueReminder{rem}, nil
		},
	}

	attempts := 0
	notifier := &fakeNotifier{
		sendFn: func(ctx context.Context, in notifications.SendDueTaskReminderInput) error {
			attempts++
			return errors.New("provider down")
		},
	}

	s := newTestScanner(source, notifier)

	// force eligibility each pass by clearing the backoff clock
	for i := 0; i < 10; i++ {
		s.scan(context.Background())

		if st, ok := s.retries["task-1"]; ok {
			st.notBefore = time.Time{}
			s.retries["task-1"] = st
		}
	}

	if attempts != s.cfg.MaxAttempts {
		t.Fatalf("got %d attempts, want %d", attempts, s.cfg.MaxAttempts)
	}

	if _, ok := s.retries["task-1"]; ok {
		t.Fatalf("retry state should be cleared after abandonment")
	}

	if _, ok := s.sent["task-1"]; !ok {
		t.Fatalf("abandoned task should be marked to stop further attempts")
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := New(Config{PollInterval: 10 * time.Millisecond}, nil, &fakeTaskSource{}, &fakeNotifier{}, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("scanner did not stop after cancellation")
	}
}
