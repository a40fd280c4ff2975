package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/CatalogueGo/internal/catalogue"
	"github.com/utafrali/CatalogueGo/internal/config"
	"github.com/utafrali/CatalogueGo/internal/engine"
	esengine "github.com/utafrali/CatalogueGo/internal/engine/elasticsearch"
	"github.com/utafrali/CatalogueGo/internal/engine/memory"
	"github.com/utafrali/CatalogueGo/internal/event"
	handler "github.com/utafrali/CatalogueGo/internal/handler/http"
	"github.com/utafrali/CatalogueGo/internal/indexer"
	"github.com/utafrali/CatalogueGo/internal/pricing"
	"github.com/utafrali/CatalogueGo/internal/repository/postgres"
	"github.com/utafrali/CatalogueGo/internal/service"
	"github.com/utafrali/CatalogueGo/pkg/database"
	"github.com/utafrali/CatalogueGo/pkg/health"
	pkgkafka "github.com/utafrali/CatalogueGo/pkg/kafka"
)

// App wires together all dependencies and runs the catalogue service.
type App struct {
	cfg         *config.Config
	logger      *slog.Logger
	pool        *pgxpool.Pool
	redisClient *redis.Client
	consumers   []*pkgkafka.Consumer
	httpServer  *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	// PostgreSQL pool and repositories.
	pool, err := database.NewPostgresPool(ctx, cfg.PostgresConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("init postgres pool: %w", err)
	}

	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	stockRepo := postgres.NewStockRecordRepository(pool)

	// The document schema is fixed at startup from the catalogue's attribute
	// option groups. Adding a group requires a restart and a full rebuild.
	schema, err := indexer.BuildSchema(ctx, productRepo)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("build document schema: %w", err)
	}
	logger.Info("document schema built",
		slog.Any("dynamic_facets", schema.DynamicFacetFields()),
	)

	// Search engine.
	var eng engine.SearchEngine
	var esEng *esengine.Engine
	switch cfg.SearchEngine {
	case "elasticsearch":
		esEng, err = esengine.New(cfg.ElasticsearchURL, cfg.ElasticsearchIndex, schema, logger)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init elasticsearch engine: %w", err)
		}
		eng = esEng
		logger.Info("elasticsearch search engine initialized",
			slog.String("url", cfg.ElasticsearchURL),
			slog.String("index", cfg.ElasticsearchIndex),
		)
	default:
		eng = memory.New(schema)
		logger.Info("in-memory search engine initialized")
	}

	// Redis-backed index checkpoint; fall back to in-memory when Redis is
	// unreachable so the service still comes up (at the cost of full
	// rebuilds).
	var checkpoints indexer.CheckpointStore
	redisClient, err := database.NewRedisClient(ctx, cfg.RedisConfig())
	if err != nil {
		logger.Warn("redis unavailable, using in-memory index checkpoint",
			slog.String("error", err.Error()),
		)
		checkpoints = indexer.NewMemoryCheckpoint()
	} else {
		checkpoints = indexer.NewRedisCheckpoint(redisClient)
	}

	// Document building and indexing.
	pricingResolver := pricing.NewStockRecordResolver(stockRepo, cfg.TaxRatePtr())
	builder := indexer.NewBuilder(pricingResolver, productRepo, schema, cfg.PriceBucketBreakpoints, logger)
	ix := indexer.New(productRepo, builder, eng, checkpoints, logger)

	// Category resolution and the service layer.
	resolver := catalogue.NewResolver(categoryRepo, logger)
	searchService := service.NewSearchService(eng, logger)
	browseService := service.NewBrowseService(searchService, logger)

	// Kafka consumers for product change events.
	eventConsumer := event.NewConsumer(ix, logger)

	topics := []string{
		event.TopicProductCreated,
		event.TopicProductUpdated,
		event.TopicProductDeleted,
	}

	var consumers []*pkgkafka.Consumer
	for _, topic := range topics {
		consumerCfg := pkgkafka.ConsumerConfig{
			Brokers:  cfg.KafkaBrokers,
			GroupID:  "catalogue-service",
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6, // 10 MB
		}
		c := pkgkafka.NewConsumer(consumerCfg, eventConsumer.Handle, logger)
		consumers = append(consumers, c)
	}
	logger.Info("kafka consumers initialized",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.Int("topic_count", len(topics)),
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if esEng != nil {
		healthHandler.Register("elasticsearch", esEng.Ping)
	}
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
	})

	// HTTP router.
	router := handler.NewRouter(resolver, browseService, searchService, schema, ix, healthHandler, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:         cfg,
		logger:      logger,
		pool:        pool,
		redisClient: redisClient,
		consumers:   consumers,
		httpServer:  httpServer,
	}, nil
}

// Run starts the HTTP server and Kafka consumers, blocking until the context
// is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		c := c
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

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

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
