package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"printerp/internal/domain/audit"
	"printerp/internal/domain/auth"
	"printerp/internal/domain/commission"
	"printerp/internal/platform/cache"
	"printerp/internal/platform/config"
	"printerp/internal/platform/db"
	"printerp/internal/platform/jobs"
	"printerp/internal/platform/logging"
	"printerp/internal/platform/metrics"
	commissionhandler "printerp/internal/transport/http/handlers/commission"
	"printerp/internal/transport/http/middleware"
)

type App struct {
	Config     config.Config
	Logger     *slog.Logger
	DB         *pgxpool.Pool
	Redis      *cache.Redis
	Metrics    *metrics.Collector
	Commission *commission.Service
	Jobs       *jobs.Service
	Router     http.Handler
}

type runStore interface {
	jobs.RunStore
	jobs.RunLister
}

// commissionMetrics adapts the Prometheus collector to commission.Recorder.
type commissionMetrics struct {
	collector *metrics.Collector
}

func (m commissionMetrics) CalculationObserved(structureType commission.StructureType, outcome string) {
	m.collector.Calculation(string(structureType), outcome)
}

func (m commissionMetrics) BulkObserved(employees int, duration time.Duration) {
	m.collector.Bulk(employees, duration)
}

// New wires the application. With DATABASE_URL set every store is backed by
// PostgreSQL; otherwise the YAML fixtures and in-memory stores are used.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger, Metrics: metrics.New()}

	var (
		directory   commission.EmployeeDirectory
		periods     commission.FinancialPeriods
		runs        runStore
		auditor     commissionhandler.Auditor
		perms       middleware.PermissionStore
		idempotency middleware.IdempotencyStore
	)

	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		app.DB = pool
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
				app.Close()
				return nil, fmt.Errorf("migrations: %w", err)
			}
		}
		store := commission.NewStore(pool)
		directory, periods = store, store
		runs = jobs.NewPgRunStore(pool)
		auditor = audit.New(pool)
		perms = auth.NewStore(pool)
		idempotency = middleware.NewPgIdempotencyStore(pool)
	} else {
		fixtures, err := commission.LoadFixtures(cfg.FixturesPath)
		if err != nil {
			return nil, err
		}
		logger.Info("using commission fixtures", "path", cfg.FixturesPath)
		directory, periods = fixtures, fixtures
		runs = jobs.NewMemoryRunStore()
		auditor = audit.LogRecorder{Logger: logger}
		perms = auth.StaticPermissions{}
		idempotency = middleware.NewMemoryIdempotencyStore()
	}

	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("redis connect: %w", err)
		}
		app.Redis = cache.NewRedis(client)
		periods = commission.NewCachedPeriods(periods, app.Redis, cfg.FinancialCacheTTL, logger)
	}

	app.Commission = commission.NewService(directory, periods,
		commission.WithLogger(logger),
		commission.WithRecorder(commissionMetrics{collector: app.Metrics}),
		commission.WithBulkWorkers(cfg.BulkWorkers),
	)
	app.Jobs = jobs.New(runs, app.Metrics, logger)

	handler := &commissionhandler.Handler{
		Service:     app.Commission,
		Directory:   directory,
		Jobs:        app.Jobs,
		Runs:        runs,
		Perms:       perms,
		Audit:       auditor,
		Idempotency: idempotency,
		CompanyName: cfg.CompanyName,
	}
	app.Router = app.routes(handler)
	return app, nil
}

func (a *App) routes(handler *commissionhandler.Handler) http.Handler {
	cfg := a.Config
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(a.Logger))
	router.Use(middleware.Metrics(a.Metrics))
	router.Use(middleware.Recoverer(a.Logger))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if a.DB != nil {
			if err := a.DB.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		if a.Redis != nil {
			if err := a.Redis.Ping(ctx); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Handle("/metrics", a.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.ExpensiveOperationRateLimit(cfg.RateLimitPerMinute, time.Minute))
		handler.RegisterRoutes(r)
	})
	return router
}

// Start launches the job worker and, when configured, the periodic bulk run.
func (a *App) Start(ctx context.Context) {
	a.Jobs.Start(ctx)
	a.Jobs.ScheduleCommissionBulk(ctx, a.Config.BulkRunInterval, func(ctx context.Context, period string) (any, error) {
		return a.Commission.CalculateBulk(ctx, period).Totals(), nil
	})
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("redis close failed", "err", err)
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func Run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel, cfg.Environment)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()
	app.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("commission server listening", "addr", cfg.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
