package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Falling-dow/Jobs-NYC-Postings/common/cache"
	"github.com/Falling-dow/Jobs-NYC-Postings/common/cache/memory"
	"github.com/Falling-dow/Jobs-NYC-Postings/common/cache/redis"
	"github.com/Falling-dow/Jobs-NYC-Postings/common/database"
	"github.com/Falling-dow/Jobs-NYC-Postings/common/telemetry"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/config"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/dataset"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/events"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/messaging"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/normalizer"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/processor"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", cfg.ServiceName)), nil
}

func newNATSConnection(cfg *config.Config, lc fx.Lifecycle) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Timeout(cfg.NATSConnTimeout),
		nats.Name(cfg.ServiceName),
		nats.RetryOnFailedConnect(true),
	}
	nc, err := nats.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return nc.Drain()
		},
	})
	return nc, nil
}

func newCache(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) cache.Cache {
	opts := cache.Options{
		DefaultTTL:    cfg.CacheTTL,
		RedisURL:      cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	}

	var c cache.Cache
	if cfg.RedisAddr != "" {
		logger.Info("using redis cache", zap.String("addr", cfg.RedisAddr))
		c = redis.New(opts)
	} else {
		logger.Info("using in-memory cache")
		c = memory.New(opts)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return c.Close()
		},
	})
	return c
}

// newDataset loads the configured sources once at startup. Subscriptions
// depend on it, so requests are only served after the dataset is ready.
func newDataset(cfg *config.Config, logger *zap.Logger, c cache.Cache) (*dataset.Dataset, error) {
	ctx := context.Background()
	n := normalizer.New(logger, cfg.DateLayouts...)

	switch cfg.DatasetSource {
	case config.SourceHTTP:
		client := &http.Client{Timeout: cfg.DatasetHTTPTimeout}
		src := dataset.NewHTTPSource(cfg.DatasetURL, client, c, cfg.CacheTTL, logger)
		return dataset.LoadAll(ctx, logger, n, src)

	case config.SourceClickHouse:
		db, err := database.New(ctx, database.Options{
			DSN:             cfg.ClickHouseDSN,
			MaxOpenConns:    cfg.ClickHouseMaxOpenConns,
			MaxIdleConns:    cfg.ClickHouseMaxIdleConns,
			ConnMaxLifetime: cfg.ClickHouseConnMaxLife,
			Username:        cfg.ClickHouseUsername,
			Password:        cfg.ClickHousePassword,
			Database:        cfg.ClickHouseDatabase,
		}, logger)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return dataset.LoadAll(ctx, logger, n, dataset.NewClickHouseSource(db.Conn(), logger))

	case config.SourceFile:
		return dataset.LoadAll(ctx, logger, n, dataset.FileSources(cfg.DatasetPaths...)...)
	}
	return nil, fmt.Errorf("unsupported dataset source %q", cfg.DatasetSource)
}

func newPublisher(logger *zap.Logger, nc *nats.Conn, lc fx.Lifecycle) messaging.Publisher {
	publisher := messaging.NewPublisher(logger, nc)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			publisher.Close()
			return nil
		},
	})
	return publisher
}

func newTracer() trace.Tracer {
	return telemetry.GetTracer("jobs-nyc/trends")
}

func initTracing(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) error {
	if cfg.OTELCollectorURL == "" {
		logger.Info("tracing disabled, OTEL_COLLECTOR_URL not set")
		return nil
	}
	shutdown, err := telemetry.InitTracer(context.Background(), telemetry.Options{
		ServiceName:  cfg.ServiceName,
		CollectorURL: cfg.OTELCollectorURL,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: shutdown,
	})
	return nil
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			newLogger,
			newNATSConnection,
			newCache,
			newDataset,
			newPublisher,
			processor.NewTrendProcessor,
			events.NewHandler,
			newTracer,
		),
		fx.Invoke(
			initTracing,
			func(handler *events.Handler, lc fx.Lifecycle) error {
				return handler.RegisterSubscriptions(lc)
			},
		),
	)

	startCtx := context.Background()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx := context.Background()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}
