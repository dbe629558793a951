package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/spacekeeper-backend/internal/data/repos"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
	"github.com/yungbote/spacekeeper-backend/internal/pkg/dbctx"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
	"github.com/yungbote/spacekeeper-backend/internal/platform/sendgrid"
)

const reminderMailTimeout = 15 * time.Second

// reminderMailNotifier emails the owner when a reminder comes due. Every
// other notification passes straight through.
type reminderMailNotifier struct {
	InventoryNotifier
	log      *logger.Logger
	userRepo repos.UserRepo
	mailer   sendgrid.Client
}

func NewReminderMailNotifier(log *logger.Logger, userRepo repos.UserRepo, mailer sendgrid.Client, next InventoryNotifier) InventoryNotifier {
	return &reminderMailNotifier{
		InventoryNotifier: next,
		log:               log.With("component", "ReminderMailer"),
		userRepo:          userRepo,
		mailer:            mailer,
	}
}

// ItemReminderDue never fails the reminder pass; a mail error is logged and
// the realtime event still goes out.
func (n *reminderMailNotifier) ItemReminderDue(userID uuid.UUID, item *types.Item) {
	n.InventoryNotifier.ItemReminderDue(userID, item)
	if item == nil || userID == uuid.Nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), reminderMailTimeout)
	defer cancel()

	users, err := n.userRepo.GetByIDs(dbctx.New(ctx), []uuid.UUID{userID})
	if err != nil || len(users) == 0 {
		n.log.Warn("Reminder mail skipped: owner lookup failed", "user_id", userID, "item_id", item.ID, "error", err)
		return
	}
	owner := users[0]
	if _, err := n.mailer.Send(ctx, reminderMail(owner, item)); err != nil {
		n.log.Warn("Reminder mail failed", "user_id", userID, "item_id", item.ID, "error", err)
		return
	}
	n.log.Debug("Reminder mail sent", "user_id", userID, "item_id", item.ID)
}

func reminderMail(owner *types.User, item *types.Item) sendgrid.SendEmailRequest {
	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\n", strings.TrimSpace(owner.FirstName))
	fmt.Fprintf(&body, "Your reminder for %q is due", item.Name)
	if item.ReminderAt != nil {
		fmt.Fprintf(&body, " (%s)", item.ReminderAt.UTC().Format("Mon Jan 2 15:04 MST"))
	}
	body.WriteString(".\n")
	if note := strings.TrimSpace(item.ReminderNote); note != "" {
		fmt.Fprintf(&body, "\nNote: %s\n", note)
	}
	return sendgrid.SendEmailRequest{
		To: []sendgrid.EmailAddress{{
			Email: owner.Email,
			Name:  strings.TrimSpace(owner.FirstName + " " + owner.LastName),
		}},
		Subject:    "Reminder: " + item.Name,
		Text:       body.String(),
		Categories: []string{"reminder"},
		CustomArgs: map[string]string{"item_id": item.ID.String(), "space_id": item.SpaceID.String()},
	}
}
