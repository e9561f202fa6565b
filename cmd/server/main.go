// Command server runs the learning record store HTTP service.
//
// Wiring happens here and only here: configuration, storage, cache,
// event bus, application handlers, HTTP server, graceful shutdown.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/enumverse/lrs-hub/config"
	"github.com/enumverse/lrs-hub/internal/application/command"
	"github.com/enumverse/lrs-hub/internal/application/eventhandler"
	"github.com/enumverse/lrs-hub/internal/application/query"
	"github.com/enumverse/lrs-hub/internal/domain/interpretation"
	"github.com/enumverse/lrs-hub/internal/domain/record"
	"github.com/enumverse/lrs-hub/internal/domain/statement"
	"github.com/enumverse/lrs-hub/internal/infrastructure/messaging"
	"github.com/enumverse/lrs-hub/internal/infrastructure/persistence/memory"
	"github.com/enumverse/lrs-hub/internal/infrastructure/persistence/postgres"
	"github.com/enumverse/lrs-hub/internal/infrastructure/persistence/redis"
	httpapi "github.com/enumverse/lrs-hub/internal/interface/http"
	"github.com/enumverse/lrs-hub/pkg/logger"
)

// reportCacheTTL bounds how stale a cached comprehensive report may be.
const reportCacheTTL = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})

	log.Info("starting",
		logger.String("app", cfg.App.Name),
		logger.String("version", cfg.App.Version),
		logger.String("environment", string(cfg.App.Environment)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─────────────────────────────────────────────────────────────────────────
	// Storage
	// ─────────────────────────────────────────────────────────────────────────
	var (
		statements statement.Repository
		records    record.Repository
		conn       *postgres.Connection
	)

	if cfg.Database.URL != "" {
		conn, err = postgres.NewConnectionFromURL(ctx, cfg.Database.URL, postgres.PoolOptions{
			MaxConns:         int32(cfg.Database.MaxConns),
			MinConns:         int32(cfg.Database.MinConns),
			MaxConnLifetime:  cfg.Database.ConnMaxLifetime,
			MaxConnIdleTime:  cfg.Database.ConnMaxIdleTime,
			StatementTimeout: cfg.Database.QueryTimeout,
			LogQueries:       cfg.Database.LogQueries,
			Logger:           log,
		})
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer conn.Close()

		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}

		statements = postgres.NewStatementRepository(conn)
		records = postgres.NewRecordRepository(conn)
		log.Info("using postgres storage")
	} else {
		// Development fallback. Production requires DATABASE_URL; config
		// validation enforces that before we get here.
		statements = memory.NewStatementRepository()
		records = memory.NewRecordRepository()
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Redis: report cache and statement notifier. Both are optional; the
	// service degrades to fresh computation and log-only notifications.
	// ─────────────────────────────────────────────────────────────────────────
	var (
		cache    *redis.Cache
		notifier eventhandler.Notifier
	)

	if !cfg.Redis.Disabled {
		if cfg.Redis.URL != "" {
			cache, err = redis.NewCacheFromURL(cfg.Redis.URL)
		} else {
			cache, err = redis.NewCache(redis.Config{
				Host:         cfg.Redis.Host,
				Port:         cfg.Redis.Port,
				Password:     cfg.Redis.Password,
				DB:           cfg.Redis.DB,
				PoolSize:     cfg.Redis.PoolSize,
				MinIdleConns: cfg.Redis.MinIdleConns,
				DialTimeout:  cfg.Redis.DialTimeout,
				ReadTimeout:  cfg.Redis.ReadTimeout,
				WriteTimeout: cfg.Redis.WriteTimeout,
			})
		}
		if err != nil {
			log.Warn("redis unavailable, continuing without cache and notifications", logger.Err(err))
			cache = nil
		} else {
			defer cache.Close()
			notifier = redis.NewStatementNotifier(cache, cfg.Redis.NotifyChannel)
			log.Info("redis connected", logger.String("channel", cfg.Redis.NotifyChannel))
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Event bus and subscribers
	// ─────────────────────────────────────────────────────────────────────────
	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel(cfg.Observability.LogLevel),
	}))
	bus := messaging.NewInMemoryEventBus(busConfig)
	defer bus.Close()

	created := eventhandler.NewStatementCreatedHandler(notifier, log)
	if err := created.Register(bus); err != nil {
		return fmt.Errorf("register event handler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Application handlers
	// ─────────────────────────────────────────────────────────────────────────
	engine := interpretation.NewEngine(interpretation.Namespaces{
		Verb:         cfg.Namespaces.Verb,
		Activity:     cfg.Namespaces.Activity,
		ActivityType: cfg.Namespaces.ActivityType,
		Extension:    cfg.Namespaces.Extension,
	})

	createStatement := command.NewCreateStatementHandler(statements, bus, log)
	deleteStatement := command.NewDeleteStatementHandler(statements, bus, log)
	ingest := command.NewIngestLearningEventHandler(engine, createStatement, bus, log)
	recordWrites := command.NewLearningRecordHandler(records, log)

	statementQueries := query.NewStatementQueryHandler(statements, log)
	recordQueries := query.NewRecordQueryHandler(records, log)

	var reportCache query.Cache
	if cache != nil {
		reportCache = cache
	}
	reportQueries := query.NewReportQueryHandler(statements, reportCache, reportCacheTTL, cfg.App.Location, log)

	// ─────────────────────────────────────────────────────────────────────────
	// HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	readiness := make(map[string]func(ctx context.Context) error)
	if conn != nil {
		readiness["database"] = conn.Ping
	}
	if cache != nil {
		readiness["cache"] = cache.Ping
	}

	server := httpapi.NewServer(httpapi.Config{
		Host:           cfg.HTTP.Host,
		Port:           cfg.HTTP.Port,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		EnableCORS:     cfg.HTTP.EnableCORS,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, httpapi.Dependencies{
		CreateStatement:  createStatement,
		DeleteStatement:  deleteStatement,
		IngestEvent:      ingest,
		Records:          recordWrites,
		StatementQueries: statementQueries,
		RecordQueries:    recordQueries,
		ReportQueries:    reportQueries,
		ReadinessChecks:  readiness,
		Version:          cfg.App.Version,
		Logger:           log,
	})

	errCh := server.StartAsync()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	log.Info("stopped")
	return nil
}

// slogLevel maps the configured level string onto slog's scale for the
// event bus logger.
func slogLevel(level string) slog.Level {
	switch logger.ParseLevel(level) {
	case logger.LevelDebug:
		return slog.LevelDebug
	case logger.LevelWarn:
		return slog.LevelWarn
	case logger.LevelError, logger.LevelFatal:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
