package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/spacekeeper-backend/internal/http/handlers"
	httpMW "github.com/yungbote/spacekeeper-backend/internal/http/middleware"
	"github.com/yungbote/spacekeeper-backend/internal/platform/gcp"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
	"github.com/yungbote/spacekeeper-backend/internal/realtime"
)

type Handlers struct {
	Auth     *httpH.AuthHandler
	User     *httpH.UserHandler
	Space    *httpH.SpaceHandler
	Grid     *httpH.GridHandler
	Item     *httpH.ItemHandler
	Search   *httpH.SearchHandler
	Reminder *httpH.ReminderHandler
	Realtime *httpH.RealtimeHandler
	Health   *httpH.HealthHandler
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireHandlers(log *logger.Logger, db *gorm.DB, svc Services, bucket gcp.BucketService, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:     httpH.NewAuthHandler(svc.Auth),
		User:     httpH.NewUserHandler(svc.User),
		Space:    httpH.NewSpaceHandler(svc.Space, bucket),
		Grid:     httpH.NewGridHandler(svc.Grid),
		Item:     httpH.NewItemHandler(svc.Item, bucket),
		Search:   httpH.NewSearchHandler(svc.Search, bucket),
		Reminder: httpH.NewReminderHandler(svc.Reminders, bucket),
		Realtime: httpH.NewRealtimeHandler(log, hub),
		Health:   httpH.NewHealthHandler(db),
	}
}

func wireMiddleware(log *logger.Logger, svc Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, svc.Auth),
	}
}
