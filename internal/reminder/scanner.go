package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/codelens/taskhub/internal/db"
	"github.com/codelens/taskhub/internal/domain/task"
	"github.com/codelens/taskhub/internal/notifications"
	"github.com/codelens/taskhub/internal/observability"
)

type TaskSource interface {
	DueSoon(ctx context.Context, q db.DBTX, from, to time.Time) ([]task.DueReminder, error)
}

type Config struct {
	PollInterval time.Duration // how often to scan for due tasks
	Window       time.Duration // how far ahead a task counts as "due soon"
	MaxAttempts  int           // give up on a task after this many failed sends
}

// Scanner periodically looks for tasks due inside the window and pushes a
// reminder through the notifier. Send failures are retried on later passes
// with exponential backoff, tracked per task in memory.
type Scanner struct {
	cfg      Config
	q        db.DBTX
	tasks    TaskSource
	notifier notifications.Notifier
	prom     *observability.Prom
	log      *slog.Logger

	// taskID -> send bookkeeping for this process lifetime
	sent    map[string]time.Time
	retries map[string]retryState
}

type retryState struct {
	attempts  int
	notBefore time.Time
}

func New(cfg Config, q db.DBTX, tasks TaskSource, notifier notifications.Notifier, prom *observability.Prom, log *slog.Logger) *Scanner {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	if cfg.Window <= 0 {
		cfg.Window = 24 * time.Hour
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}

	return &Scanner{
		cfg:      cfg,
		q:        q,
		tasks:    tasks,
		notifier: notifier,
		prom:     prom,
		log:      log,
		sent:     make(map[string]time.Time),
		retries:  make(map[string]retryState),
	}
}

func (s *Scanner) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder scanner received shutdown signal")
			return nil

		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

// scan runs one pass: fetch due tasks, skip already-notified ones, send the
// rest. One pass never fails the loop; errors are logged and retried later.
func (s *Scanner) scan(ctx context.Context) {
	start := time.Now()

	defer func() {
		if s.prom != nil {
			s.prom.ReminderScanTime.Observe(time.Since(start).Seconds())
		}
	}()

	now := time.Now()
	due, err := s.tasks.DueSoon(ctx, s.q, now, now.Add(s.cfg.Window))

	if err != nil {
		s.log.Error("due task scan failed", "err", err)
		return
	}

	s.prune(now)

	for _, rem := range due {
		if _, ok := s.sent[rem.TaskID]; ok {
			continue
		}

		if st, ok := s.retries[rem.TaskID]; ok && now.Before(st.notBefore) {
			continue
		}

		s.deliver(ctx, rem, now)
	}
}

func (s *Scanner) deliver(ctx context.Context, rem task.DueReminder, now time.Time) {
	err := s.notifier.SendDueTaskReminder(ctx, notifications.SendDueTaskReminderInput{
		Email:        rem.OwnerEmail,
		TaskID:       rem.TaskID,
		TaskTitle:    rem.Title,
		ProjectTitle: rem.ProjectTitle,
		DueDate:      rem.DueDate,
	})

	if err == nil {
		s.sent[rem.TaskID] = now
		delete(s.retries, rem.TaskID)

		if s.prom != nil {
			s.prom.RemindersSent.WithLabelValues("sent").Inc()
		}

		s.log.Info("reminder sent", "task_id", rem.TaskID, "email", rem.OwnerEmail)
		return
	}

	if s.prom != nil {
		s.prom.RemindersSent.WithLabelValues("failed").Inc()
	}

	st := s.retries[rem.TaskID]
	st.attempts++

	if st.attempts >= s.cfg.MaxAttempts {
		// mark as sent so we stop hammering a permanently failing address
		s.sent[rem.TaskID] = now
		delete(s.retries, rem.TaskID)
		s.log.Error("reminder abandoned", "task_id", rem.TaskID, "attempts", st.attempts, "err", err)
		return
	}

	st.notBefore = now.Add(ExponentialBackoff(st.attempts))
	s.retries[rem.TaskID] = st

	s.log.Warn("reminder send failed", "task_id", rem.TaskID, "attempt", st.attempts, "err", err)
}

// prune drops bookkeeping for tasks whose window has long passed so the maps
// don't grow forever.
func (s *Scanner) prune(now time.Time) {
	cutoff := now.Add(-2 * s.cfg.Window)

	for id, at := range s.sent {
		if at.Before(cutoff) {
			delete(s.sent, id)
		}
	}
}
