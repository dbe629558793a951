package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/spacekeeper-backend/internal/data/repos"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
	"github.com/yungbote/spacekeeper-backend/internal/pkg/dbctx"
	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

const (
	DefaultReminderWindow = 72 * time.Hour
	MaxReminderWindow     = 90 * 24 * time.Hour

	reminderBatchSize = 100
)

type ReminderService interface {
	// Upcoming lists the caller's pending and recently fired reminders due
	// within the window. A zero window means DefaultReminderWindow.
	Upcoming(ctx context.Context, within time.Duration) ([]*types.Item, error)
	// ProcessDue marks every unsent reminder due at now as sent and notifies
	// its owner. Only reminders this call claimed are notified, so concurrent
	// workers never fire the same reminder twice. It returns how many fired.
	ProcessDue(ctx context.Context, now time.Time) (int, error)
}

type reminderService struct {
	db       *gorm.DB
	log      *logger.Logger
	itemRepo repos.ItemRepo
	notify   InventoryNotifier
	now      func() time.Time
}

func NewReminderService(db *gorm.DB, log *logger.Logger, itemRepo repos.ItemRepo, notify InventoryNotifier) ReminderService {
	return &reminderService{
		db:       db,
		log:      log.With("service", "ReminderService"),
		itemRepo: itemRepo,
		notify:   notify,
		now:      time.Now,
	}
}

func (rs *reminderService) Upcoming(ctx context.Context, within time.Duration) ([]*types.Item, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if within == 0 {
		within = DefaultReminderWindow
	}
	if within < 0 || within > MaxReminderWindow {
		return nil, apierr.BadRequest("invalid_window", "within must be positive and at most %s", MaxReminderWindow)
	}
	now := rs.now().UTC()
	items, err := rs.itemRepo.ListUpcomingReminders(dbctx.New(ctx), userID, now, now.Add(within))
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return items, nil
}

func (rs *reminderService) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		var due []*types.Item
		seen := 0
		err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			dbc := dbctx.Context{Ctx: ctx, Tx: tx}
			items, err := rs.itemRepo.ListDueReminders(dbc, now, reminderBatchSize)
			if err != nil {
				return fmt.Errorf("list due reminders: %w", err)
			}
			seen = len(items)
			for _, it := range items {
				claimed, err := rs.itemRepo.ClaimReminder(dbc, it.ID, now)
				if err != nil {
					return fmt.Errorf("claim reminder: %w", err)
				}
				if claimed {
					due = append(due, it)
				}
			}
			return nil
		})
		if err != nil {
			return total, err
		}
		for _, it := range due {
			sent := now
			it.ReminderSentAt = &sent
			rs.notify.ItemReminderDue(it.UserID, it)
		}
		total += len(due)
		if seen < reminderBatchSize {
			break
		}
	}
	if total > 0 {
		rs.log.Info("Reminders fired", "count", total)
	}
	return total, nil
}
