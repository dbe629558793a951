package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/spacekeeper-backend/internal/data/db"
	"github.com/yungbote/spacekeeper-backend/internal/data/repos"
	httpapi "github.com/yungbote/spacekeeper-backend/internal/http"
	"github.com/yungbote/spacekeeper-backend/internal/jobs/worker"
	"github.com/yungbote/spacekeeper-backend/internal/observability"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
	"github.com/yungbote/spacekeeper-backend/internal/realtime"
	"github.com/yungbote/spacekeeper-backend/internal/realtime/bus"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    repos.Repos
	Services Services
	Server   *httpapi.Server
	SSEHub   *realtime.SSEHub
	Metrics  *observability.Metrics

	database *db.DatabaseService
	sseBus   bus.Bus
	worker   *worker.ReminderWorker
}

// New builds the whole process from cfg. Nothing is started until Run.
func New(cfg Config) (*App, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	database, err := db.NewDatabaseService(log, cfg.Database())
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := database.AutoMigrateAll(); err != nil {
		_ = database.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := database.DB()

	fail := func(err error) (*App, error) {
		_ = database.Close()
		log.Sync()
		return nil, err
	}

	bucket, storageCfg, err := resolveBucketService(log, cfg)
	if err != nil {
		return fail(err)
	}

	sseBus, err := bus.NewSSEBus(log, bus.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Channel:  cfg.RedisChannel,
	})
	if err != nil {
		return fail(fmt.Errorf("init sse bus: %w", err))
	}
	hub := realtime.NewSSEHub(log)
	metrics := observability.Init(cfg.MetricsEnabled)

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, bucket, sseBus)
	if err != nil {
		_ = sseBus.Close()
		return fail(err)
	}

	mediaRoot := ""
	if storageCfg.IsLocalMode() {
		mediaRoot = storageCfg.LocalDir
	}
	handlerset := wireHandlers(log, theDB, serviceset, bucket, hub)
	middleware := wireMiddleware(log, serviceset)
	server := wireRouter(log, cfg, handlerset, middleware, metrics, mediaRoot)
	// Open streams never finish on their own; close them so shutdown can drain.
	server.OnShutdown = append(server.OnShutdown, hub.CloseAll)

	return &App{
		Log:      log,
		DB:       theDB,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Server:   server,
		SSEHub:   hub,
		Metrics:  metrics,
		database: database,
		sseBus:   sseBus,
		worker:   worker.NewReminderWorker(log, serviceset.Reminders, cfg.ReminderPollInterval),
	}, nil
}

// Run serves HTTP and runs the reminder worker until ctx is cancelled or
// one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	shutdownOtel := observability.InitOTel(ctx, a.Log, a.Cfg.Otel())
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			a.Log.Warn("OTel shutdown failed", "error", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	if err := a.sseBus.StartForwarder(gctx, a.SSEHub.Broadcast); err != nil {
		return fmt.Errorf("start sse forwarder: %w", err)
	}
	a.Metrics.StartServer(gctx, a.Log, a.Cfg.MetricsAddr)
	a.Metrics.StartDBCollector(gctx, a.Log, a.DB)
	a.Metrics.StartRedisCollector(gctx, a.Log, a.Cfg.RedisAddr)

	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.Addr())
		return a.Server.Run(gctx, a.Cfg.Addr())
	})
	g.Go(func() error {
		return a.worker.Run(gctx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.sseBus != nil {
		if err := a.sseBus.Close(); err != nil {
			a.Log.Warn("SSE bus close failed", "error", err)
		}
	}
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			a.Log.Warn("Database close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
