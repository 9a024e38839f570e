package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/godilite/mind-compass/internal/config"
	handler "github.com/godilite/mind-compass/internal/grpc"
	"github.com/godilite/mind-compass/internal/httpapi"
	"github.com/godilite/mind-compass/internal/repository"
	"github.com/godilite/mind-compass/internal/service"
	"github.com/godilite/mind-compass/pkg/cache"
	dbbuilder "github.com/godilite/mind-compass/pkg/database"
	grpcsrv "github.com/godilite/mind-compass/pkg/grpc/server"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	events     *service.EventLogger
	grpcServer *grpcsrv.Server
	httpServer *httpapi.Server
}

// newBackend opens the configured event store and identity provider.
func newBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.Backend, *sql.DB, error) {
	switch cfg.BackendDriver {
	case config.DriverSQLite:
		dbPool, err := dbbuilder.New(ctx,
			dbbuilder.WithDriver(cfg.DBDriver),
			dbbuilder.WithDataSource(cfg.DBPath),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("database init failed: %w", err)
		}
		repo := repository.NewEventRepository(dbPool)
		if err := repo.Migrate(ctx); err != nil {
			dbPool.Close()
			return nil, nil, fmt.Errorf("database migration failed: %w", err)
		}
		logger.Info("sqlite backend initialized", zap.String("path", cfg.DBPath))
		return repo, dbPool, nil

	case config.DriverREST:
		logger.Info("rest backend initialized", zap.String("url", cfg.BackendURL))
		return repository.NewRemoteEventRepository(cfg.BackendURL, cfg.BackendAPIKey), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend driver %q", cfg.BackendDriver)
	}
}

// corsOrigins returns the browser origins allowed to call the HTTP API.
func corsOrigins(origin string) []string {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://") {
		return []string{origin}
	}
	return nil
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	backend, dbPool, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	cacheClient, err := cache.New(ctx,
		cache.WithAddress(cfg.RedisAddr),
		cache.WithPrefix("mindcompass:"),
	)
	if err != nil {
		if dbPool != nil {
			dbPool.Close()
		}
		return nil, fmt.Errorf("cache init failed: %w", err)
	}
	logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))

	events := service.NewEventLogger(backend, logger, cfg.EventWriteTimeout)
	identity := service.NewIdentityService(backend, logger)
	stats := service.NewStatsService(backend, logger)
	quizService := service.NewQuizService(nil, identity, events, cfg.PublicOrigin, logger)

	grpcHandlers := handler.NewGRPCHandlers(quizService, stats, cacheClient, logger, cfg.StatsCacheTTL)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
		grpcsrv.WithRecovery(true),
	)
	if err != nil {
		cacheClient.Close()
		if dbPool != nil {
			dbPool.Close()
		}
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterServiceWithHealth(handler.CompassServiceName, func(s *grpc.Server) {
		handler.RegisterCompassServer(s, grpcHandlers)
	})

	httpHandler := httpapi.NewHandler(quizService, stats, cacheClient, logger, cfg.ProgressTTL)
	router := httpapi.NewRouter(httpHandler, logger, corsOrigins(cfg.PublicOrigin))
	httpServer := httpapi.NewServer(cfg.HTTPAddr, router, logger)

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		events:     events,
		grpcServer: grpcServer,
		httpServer: httpServer,
	}, nil
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.grpcServer.Start()
	a.httpServer.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return a.Shutdown(ctx)
}

// Shutdown stops the servers, drains pending event writes and closes
// connections.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := a.grpcServer.Shutdown(ctx); err != nil {
		a.logger.Error("gRPC server shutdown error", zap.Error(err))
	}
	if err := a.events.Close(ctx); err != nil {
		a.logger.Warn("pending event writes abandoned", zap.Error(err))
	}

	if err := a.cache.Close(); err != nil {
		a.logger.Error("cache shutdown error", zap.Error(err))
	}
	if a.dbPool != nil {
		if err := a.dbPool.Close(); err != nil {
			a.logger.Error("database shutdown error", zap.Error(err))
		}
	}

	if ctx.Err() == context.DeadlineExceeded {
		a.logger.Warn("shutdown completed but deadline exceeded")
	} else {
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return nil
}
