package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cncideas/storefront/internal/backend"
	"github.com/cncideas/storefront/internal/config"
	"github.com/cncideas/storefront/internal/event"
	handler "github.com/cncideas/storefront/internal/handler/http"
	"github.com/cncideas/storefront/internal/preview"
	postgresrepo "github.com/cncideas/storefront/internal/repository/postgres"
	"github.com/cncideas/storefront/internal/repository/postgres/migrations"
	redisrepo "github.com/cncideas/storefront/internal/repository/redis"
	"github.com/cncideas/storefront/internal/service"
	"github.com/cncideas/storefront/pkg/database"
	"github.com/cncideas/storefront/pkg/health"
	"github.com/cncideas/storefront/pkg/httpclient"
	pkgkafka "github.com/cncideas/storefront/pkg/kafka"
	"github.com/cncideas/storefront/pkg/middleware"
	"github.com/cncideas/storefront/pkg/tracing"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	rdb             *redis.Client
	pool            *pgxpool.Pool
	producer        *pkgkafka.Producer
	catalog         *service.CatalogService
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Tracing.
	tracingShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  "storefront",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTELEndpoint,
		SampleRate:   cfg.OTELSampleRate,
		Enabled:      cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// Redis: cart store.
	redisCfg := cfg.Redis()
	rdb, err := database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", redisCfg.Addr()),
		slog.Int("db", redisCfg.DB),
	)

	// PostgreSQL: checkout sessions.
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// Kafka producer.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Catalog backend client.
	backendClient := backend.New(
		httpclient.New(httpclient.Config{
			Timeout:    cfg.BackendTimeout(),
			MaxRetries: cfg.BackendMaxRetries,
		}),
		cfg.BackendBaseURL,
		logger,
	)

	// Preview cache directory.
	previewDir := cfg.PreviewCacheDir
	if previewDir == "" {
		previewDir = filepath.Join(os.TempDir(), "storefront-previews")
	}
	if err := os.MkdirAll(previewDir, 0o750); err != nil {
		return nil, fmt.Errorf("create preview cache dir: %w", err)
	}

	// Build the dependency graph.
	eventProducer := event.NewProducer(producer, logger)
	bus := event.NewBus()

	cartRepo := redisrepo.NewCartRepository(rdb, cfg.CartTTL())
	cartService := service.NewCartService(cartRepo, eventProducer, bus, logger)

	catalogService := service.NewCatalogService(
		backendClient,
		preview.NewCache(previewDir, logger),
		logger,
	)

	checkoutRepo := postgresrepo.NewCheckoutRepository(pool)
	checkoutService := service.NewCheckoutService(
		checkoutRepo,
		cartService,
		backendClient,
		eventProducer,
		service.ShippingPolicy{
			FreeShippingThreshold: cfg.FreeShippingThreshold,
			FlatShippingFee:       cfg.FlatShippingFee,
		},
		cfg.CheckoutTTL(),
		logger,
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(
		cartService,
		catalogService,
		checkoutService,
		healthHandler,
		corsCfg,
		logger,
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		rdb:             rdb,
		pool:            pool,
		producer:        producer,
		catalog:         catalogService,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	// Release cached preview files.
	a.catalog.Close()

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	if a.tracingShutdown != nil {
		if err := a.tracingShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}
