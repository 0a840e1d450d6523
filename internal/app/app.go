package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/memequiz-backend/internal/data/db"
	"github.com/yungbote/memequiz-backend/internal/http"
	"github.com/yungbote/memequiz-backend/internal/observability"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *db.Service
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics

	server        *http.Server
	shutdownTrace func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envLogMode())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTrace := observability.InitOTel(ctx, log, cfg.Otel)

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	database, err := db.NewService(log, cfg.DB)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(database.DB()); err != nil {
		_ = database.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	reposet := wireRepos(database.DB(), log)

	clients, err := wireClients(ctx, log, cfg, metrics)
	if err != nil {
		_ = database.Close()
		log.Sync()
		return nil, err
	}

	serviceset, err := wireServices(database.DB(), log, cfg, reposet, clients)
	if err != nil {
		_ = clients.Close()
		_ = database.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, database, serviceset, clients)
	middleware := wireMiddleware(log, cfg, serviceset, clients)
	router := wireRouter(log, cfg, metrics, clients, handlerset, middleware)

	return &App{
		Log:           log,
		DB:            database,
		Router:        router,
		Cfg:           cfg,
		Repos:         reposet,
		Clients:       clients,
		Services:      serviceset,
		Metrics:       metrics,
		shutdownTrace: shutdownTrace,
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.server = http.NewEngineServer(a.Router)

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.Addr)
		errCh <- a.server.Run(a.Cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errCh
}

func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.shutdownTrace != nil {
		if err := a.shutdownTrace(ctx); err != nil {
			a.Log.Warn("Trace shutdown failed", "error", err)
		}
	}
	if err := a.Clients.Close(); err != nil {
		a.Log.Warn("Client shutdown failed", "error", err)
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("Database close failed", "error", err)
		}
	}
	a.Log.Sync()
}
