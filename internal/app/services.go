package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/spacekeeper-backend/internal/data/repos"
	"github.com/yungbote/spacekeeper-backend/internal/platform/gcp"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
	"github.com/yungbote/spacekeeper-backend/internal/platform/sendgrid"
	"github.com/yungbote/spacekeeper-backend/internal/realtime/bus"
	"github.com/yungbote/spacekeeper-backend/internal/services"
)

type Services struct {
	Images    services.ImageService
	Auth      services.AuthService
	User      services.UserService
	Space     services.SpaceService
	Grid      services.GridService
	Item      services.ItemService
	Search    services.SearchService
	Reminders services.ReminderService
	Notifier  services.InventoryNotifier
}

// wireServices builds the domain services. Change notifications go through
// sseBus so every node's hub sees them.
func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r repos.Repos, bucket gcp.BucketService, sseBus bus.Bus) (Services, error) {
	log.Info("Wiring services...")

	images, err := services.NewImageService(log, bucket)
	if err != nil {
		return Services{}, fmt.Errorf("init image service: %w", err)
	}
	notify := services.NewInventoryNotifier(&services.BusEmitter{Bus: sseBus, Log: log})

	reminderNotify := notify
	if cfg.SendGridAPIKey != "" {
		mailer, err := sendgrid.New(log, sendgrid.Config{
			APIKey:           cfg.SendGridAPIKey,
			BaseURL:          cfg.SendGridBaseURL,
			DefaultFromEmail: cfg.SendGridFromEmail,
			DefaultFromName:  cfg.SendGridFromName,
			MaxRetries:       3,
		})
		if err != nil {
			return Services{}, fmt.Errorf("init sendgrid: %w", err)
		}
		reminderNotify = services.NewReminderMailNotifier(log, r.User, mailer, notify)
	} else {
		log.Info("SENDGRID_API_KEY not set; reminder emails disabled")
	}

	return Services{
		Images:    images,
		Auth:      services.NewAuthService(db, log, r.User, r.UserToken, images, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		User:      services.NewUserService(db, log, r.User, images),
		Space:     services.NewSpaceService(db, log, r.Space, r.Grid, r.Item, images, notify),
		Grid:      services.NewGridService(db, log, r.Space, r.Grid, r.Item, notify),
		Item:      services.NewItemService(db, log, r.Space, r.Grid, r.Item, images, notify),
		Search:    services.NewSearchService(log, r.Space, r.Item),
		Reminders: services.NewReminderService(db, log, r.Item, reminderNotify),
		Notifier:  notify,
	}, nil
}
