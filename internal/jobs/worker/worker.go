package worker

import (
	"context"
	"time"

	"github.com/yungbote/spacekeeper-backend/internal/observability"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
	"github.com/yungbote/spacekeeper-backend/internal/services"
)

const DefaultPollInterval = 30 * time.Second

// ReminderWorker periodically fires due item reminders.
type ReminderWorker struct {
	log       *logger.Logger
	reminders services.ReminderService
	interval  time.Duration
	now       func() time.Time
}

func NewReminderWorker(baseLog *logger.Logger, reminders services.ReminderService, interval time.Duration) *ReminderWorker {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &ReminderWorker{
		log:       baseLog.With("component", "ReminderWorker"),
		reminders: reminders,
		interval:  interval,
		now:       time.Now,
	}
}

// Run polls until ctx is cancelled. It runs one pass immediately so reminders
// that came due while the server was down fire on start.
func (w *ReminderWorker) Run(ctx context.Context) error {
	w.log.Info("Starting reminder worker", "interval", w.interval.String())
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Reminder worker stopped")
			return nil
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *ReminderWorker) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Reminder pass panic", "panic", r)
		}
	}()
	n, err := w.reminders.ProcessDue(ctx, w.now())
	observability.Current().ObserveReminderPass(n, err)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Warn("Reminder pass failed", "error", err, "fired", n)
		}
		return
	}
	if n > 0 {
		w.log.Debug("Reminder pass", "fired", n)
	}
}
