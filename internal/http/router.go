package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/spacekeeper-backend/internal/observability"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
	"github.com/yungbote/spacekeeper-backend/internal/services"

	httpH "github.com/yungbote/spacekeeper-backend/internal/http/handlers"
	httpMW "github.com/yungbote/spacekeeper-backend/internal/http/middleware"
)

const streamRoute = "/api/sse/stream"

// uploadBodyLimit leaves room for multipart framing around the image.
const uploadBodyLimit = services.MaxImageBytes + 1<<20

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Metrics        *observability.Metrics
	// MediaRoot serves locally stored uploads under /media when set.
	MediaRoot string

	AuthMiddleware  *httpMW.AuthMiddleware
	AuthHandler     *httpH.AuthHandler
	UserHandler     *httpH.UserHandler
	SpaceHandler    *httpH.SpaceHandler
	GridHandler     *httpH.GridHandler
	ItemHandler     *httpH.ItemHandler
	SearchHandler   *httpH.SearchHandler
	ReminderHandler *httpH.ReminderHandler
	RealtimeHandler *httpH.RealtimeHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.RequestIDs())
	r.Use(httpMW.AccessLog(cfg.Log, streamRoute, "/healthcheck", "/readyz", "/metrics"))
	r.Use(httpMW.Metrics(cfg.Metrics, streamRoute))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}
	if cfg.MediaRoot != "" {
		r.Static("/media", cfg.MediaRoot)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	if cfg.AuthMiddleware == nil {
		return r
	}

	// Realtime (SSE); EventSource cannot send headers.
	if cfg.RealtimeHandler != nil {
		r.GET(streamRoute, cfg.AuthMiddleware.RequireStreamAuth(), cfg.RealtimeHandler.SSEStream)
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me", cfg.UserHandler.UpdateMe)
		}

		// Spaces
		if cfg.SpaceHandler != nil {
			protected.GET("/spaces", cfg.SpaceHandler.ListSpaces)
			protected.POST("/spaces", cfg.SpaceHandler.CreateSpace)
			protected.GET("/spaces/:id", cfg.SpaceHandler.GetSpace)
			protected.PUT("/spaces/:id", cfg.SpaceHandler.UpdateSpace)
			protected.DELETE("/spaces/:id", cfg.SpaceHandler.DeleteSpace)
			protected.POST("/spaces/:id/image", httpMW.LimitBody(uploadBodyLimit), cfg.SpaceHandler.UploadSpaceImage)
		}

		// Grids
		if cfg.GridHandler != nil {
			protected.GET("/spaces/:id/grids", cfg.GridHandler.ListGrids)
			protected.POST("/spaces/:id/grids", cfg.GridHandler.CreateGrid)
			protected.PUT("/grids/:id", cfg.GridHandler.UpdateGrid)
			protected.DELETE("/grids/:id", cfg.GridHandler.DeleteGrid)
		}

		// Items
		if cfg.ItemHandler != nil {
			protected.GET("/items", cfg.ItemHandler.ListItems)
			protected.POST("/items", cfg.ItemHandler.CreateItem)
			protected.GET("/items/:id", cfg.ItemHandler.GetItem)
			protected.PUT("/items/:id", cfg.ItemHandler.UpdateItem)
			protected.DELETE("/items/:id", cfg.ItemHandler.DeleteItem)
			protected.POST("/items/:id/image", httpMW.LimitBody(uploadBodyLimit), cfg.ItemHandler.UploadItemImage)
		}

		if cfg.SearchHandler != nil {
			protected.GET("/search", cfg.SearchHandler.Search)
		}
		if cfg.ReminderHandler != nil {
			protected.GET("/reminders", cfg.ReminderHandler.Upcoming)
		}
	}

	return r
}
