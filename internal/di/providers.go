package di

import (
	"context"
	"fmt"
	"time"

	"StructScan/internal/domain/repository"
	"StructScan/internal/handler/api"
	internalrepo "StructScan/internal/repository"
	"StructScan/internal/scheduler"
	"StructScan/internal/service/pricefeed"
	"StructScan/internal/usecase"
	"StructScan/pkg/cache"
	pkgch "StructScan/pkg/clickhouse"
	"StructScan/pkg/config"
	xhttp "StructScan/pkg/http"
	pkgkafka "StructScan/pkg/kafka"
	applogger "StructScan/pkg/logger"
	"StructScan/pkg/metrics"
	"StructScan/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the daily
// bars schema exists.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.Schema(cfg.ClickHouse.BarsTable)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideBarSource creates the ClickHouse-backed bar source.
func ProvideBarSource(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.BarSource {
	store := internalrepo.NewCHBarStore(chClient, cfg.ClickHouse.BarsTable)
	store.SetLogger(l)
	return store
}

// ProvidePriceSource picks the live price backend by configured mode.
func ProvidePriceSource(cfg *config.Config, l *applogger.Logger) repository.PriceSource {
	if cfg.PriceFeed.Mode == "ws" {
		return pricefeed.NewStreamSource(
			cfg.PriceFeed.APIKey,
			cfg.PriceFeed.WebSocketURL,
			cfg.Scan.Symbols,
			cfg.PriceFeed.PingInterval,
			l,
		)
	}
	return pricefeed.NewHTTPSource(cfg.PriceFeed.BaseURL, cfg.PriceFeed.APIKey, cfg.PriceFeed.Timeout, l)
}

// ProvideCache creates the scan cache: Redis when enabled, otherwise an
// in-process TTL cache.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	c, err := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvidePublisher creates the Kafka scan publisher, or nil when disabled.
func ProvidePublisher(cfg *config.Config, l *applogger.Logger) (repository.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatch(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaScanPublisher(producer, cfg.Kafka.Topic)
	pub.SetLogger(l)
	return pub, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideScanUseCase creates the scan pipeline use case.
func ProvideScanUseCase(
	cfg *config.Config,
	bars repository.BarSource,
	prices repository.PriceSource,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.ScanUseCase {
	return usecase.NewScanUseCase(cfg, bars, prices, m, l)
}

// ProvideScanHandler creates the HTTP handler.
func ProvideScanHandler(l *applogger.Logger, scans *usecase.ScanUseCase, c cache.Service, cfg *config.Config) xhttp.Handler {
	return api.NewScanHandler(l, scans, c, cfg.Redis.ScanTTL, cfg.Scan.Symbols)
}

// ProvideScheduler creates the cron scan scheduler.
func ProvideScheduler(
	scans *usecase.ScanUseCase,
	pub repository.Publisher,
	c cache.Service,
	cfg *config.Config,
	l *applogger.Logger,
) *scheduler.Scheduler {
	return scheduler.New(scans, pub, c, cfg.Redis.ScanTTL, cfg.Scan.Symbols, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	sched *scheduler.Scheduler,
	prices repository.PriceSource,
	chClient *pkgch.Client,
	c cache.Service,
	pub repository.Publisher,
) *server.App {
	return server.New(cfg, l, handler, sched, prices, chClient, c, pub)
}
