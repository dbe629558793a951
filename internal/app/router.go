package app

import (
	httpapi "github.com/yungbote/spacekeeper-backend/internal/http"
	httpMW "github.com/yungbote/spacekeeper-backend/internal/http/middleware"
	"github.com/yungbote/spacekeeper-backend/internal/observability"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

const serviceName = "spacekeeper"

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics, mediaRoot string) *httpapi.Server {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = httpMW.DefaultAllowedOrigins
	}
	routerCfg := httpapi.RouterConfig{
		Log:             log,
		AllowedOrigins:  origins,
		MediaRoot:       mediaRoot,
		AuthMiddleware:  middleware.Auth,
		AuthHandler:     handlers.Auth,
		UserHandler:     handlers.User,
		SpaceHandler:    handlers.Space,
		GridHandler:     handlers.Grid,
		ItemHandler:     handlers.Item,
		SearchHandler:   handlers.Search,
		ReminderHandler: handlers.Reminder,
		RealtimeHandler: handlers.Realtime,
		HealthHandler:   handlers.Health,
	}
	if cfg.OtelEnabled {
		routerCfg.ServiceName = serviceName
	}
	if metrics != nil {
		routerCfg.Metrics = metrics
	}
	return httpapi.NewServer(routerCfg)
}
