package di

import (
	"context"
	"fmt"
	"time"

	"ChainPulse/internal/domain/models"
	"ChainPulse/internal/domain/repository"
	"ChainPulse/internal/handler/api"
	internalrepo "ChainPulse/internal/repository"
	"ChainPulse/internal/series"
	icache "ChainPulse/internal/service/cache"
	"ChainPulse/internal/service/ratelimit"
	"ChainPulse/internal/source"
	"ChainPulse/internal/usecase"
	"ChainPulse/internal/ws"
	"ChainPulse/pkg/cache"
	pkgch "ChainPulse/pkg/clickhouse"
	"ChainPulse/pkg/config"
	xhttp "ChainPulse/pkg/http"
	pkgkafka "ChainPulse/pkg/kafka"
	applogger "ChainPulse/pkg/logger"
	"ChainPulse/pkg/metrics"
	"ChainPulse/pkg/queue"
	"ChainPulse/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if lc.Level == "" {
		lc.Level = "info"
	}
	if lc.Format == "" {
		lc.Format = "console"
	}
	if lc.Output == "" {
		lc.Output = "stdout"
	}
	return applogger.New(lc)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHTTPClient creates the shared upstream HTTP client.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	timeout := cfg.Sources.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return xhttp.NewClient(xhttp.WithTimeout(timeout))
}

// ProvideResponseCache creates the in-process upstream response cache.
func ProvideResponseCache() *icache.TTLCache {
	return icache.NewTTLCache()
}

// ProvideCatalog builds the series catalog from config.
func ProvideCatalog(cfg *config.Config) *series.Catalog {
	infos := make([]models.SeriesInfo, 0, len(cfg.Series))
	for _, sc := range cfg.Series {
		infos = append(infos, models.SeriesInfo{
			Key:         sc.Key,
			DisplayName: sc.DisplayName,
			Color:       sc.Color,
			Kind:        sc.Kind,
			Granularity: sc.Granularity,
		})
	}
	return series.NewCatalog(infos)
}

// ProvideHistoryStore creates the in-memory canonical history store.
func ProvideHistoryStore() repository.HistoryStore {
	return internalrepo.NewHistoryStore()
}

// ProvideClickHouseClient creates a ClickHouse client when the archive is in
// use; otherwise it returns nil and the archive stays disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Backend.Type != usecase.BackendClickHouse && !cfg.Kafka.Mirror {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	table := archiveTable(cfg)
	if err := client.InitSchema(ctx, []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", cfg.ClickHouse.Database),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (series String, ts DateTime64(3, 'UTC'), count Int64) ENGINE=ReplacingMergeTree ORDER BY (series, ts)", table),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

func archiveTable(cfg *config.Config) string {
	table := cfg.ClickHouse.Table
	if table == "" {
		table = "series_points"
	}
	return cfg.ClickHouse.Database + "." + table
}

// ProvideArchive creates the ClickHouse point archive.
func ProvideArchive(chClient *pkgch.Client, cfg *config.Config) repository.Archive {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHousePointArchive(chClient.DB(), archiveTable(cfg))
}

// ProvideKafkaProducer creates a Kafka producer for the kafka backend.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Backend.Type != usecase.BackendKafka {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvidePublisher creates the Kafka point publisher.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPointPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer for mirror mode.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Mirror {
		return nil, nil
	}

	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvidePointsHandler registers the mirror handler for the points topic.
func ProvidePointsHandler(archive repository.Archive, m repository.Metrics, l *applogger.Logger, cfg *config.Config) *usecase.KafkaPointsHandler {
	if !cfg.Kafka.Mirror || archive == nil {
		return nil
	}
	return usecase.NewKafkaPointsHandler(cfg.Kafka.Topic, archive, m, l)
}

// ProvideChartCache creates the redis-backed chart payload cache.
func ProvideChartCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	opts := []cache.RedisOption{
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	}
	if cfg.Redis.Prefix != "" {
		opts = append(opts, cache.WithRedisPrefix(cfg.Redis.Prefix))
	}

	rc, err := cache.NewRedisCache(opts...)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc), nil
}

// ProvideChartsUseCase creates the chart renderer.
func ProvideChartsUseCase(
	store repository.HistoryStore,
	catalog *series.Catalog,
	payloads cache.Service,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.ChartsUseCase {
	ttl := cfg.Redis.ChartTTL
	if ttl <= 0 {
		ttl = icache.TTLVolatile
	}
	return usecase.NewChartsUseCase(store, catalog, payloads, ttl, l)
}

// ProvideHub creates the websocket chart hub.
func ProvideHub(l *applogger.Logger) *ws.Hub {
	return ws.NewHub(l)
}

// ProvideChartSink exposes the hub as the pipeline's chart sink.
func ProvideChartSink(hub *ws.Hub) repository.ChartSink {
	return hub
}

// ProvideProcessor creates the point processor for the configured backend.
func ProvideProcessor(
	pub repository.Publisher,
	archive repository.Archive,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.PointProcessor {
	return usecase.NewPointProcessor(pub, archive, m, cfg.Backend.Type)
}

func ttlFor(class string) time.Duration {
	switch class {
	case "volatile":
		return icache.TTLVolatile
	case "short":
		return icache.TTLShort
	case "medium":
		return icache.TTLMedium
	case "long":
		return icache.TTLLong
	case "stable":
		return icache.TTLStable
	default:
		return icache.TTLMedium
	}
}

// ProvideCollector builds the collector with one source per configured
// series.
func ProvideCollector(
	cfg *config.Config,
	store repository.HistoryStore,
	proc *usecase.PointProcessor,
	sink repository.ChartSink,
	charts *usecase.ChartsUseCase,
	catalog *series.Catalog,
	m repository.Metrics,
	l *applogger.Logger,
	client *xhttp.Client,
	rcache *icache.TTLCache,
) (*usecase.MetricsCollector, error) {
	col := usecase.NewMetricsCollector(store, proc, sink, charts, catalog, m, l, rcache)

	for _, sc := range cfg.Series {
		ttl := ttlFor(sc.TTL)
		interval := sc.PollInterval
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		switch sc.Source {
		case "netinfo":
			col.AddPointSource(source.NewNetworkInfoSource(sc.Key, cfg.Sources.NetworkInfoURL, client, rcache, ttl, m, l), interval)
		case "tag":
			if sc.Kind == series.KindCategory {
				col.AddCategorySource(source.NewTagCategorySource(sc.Key, cfg.Sources.TagEndpointURL, sc.Process, sc.Action, sc.DataTag, client, rcache, ttl, m, l), interval)
			} else {
				col.AddPointSource(source.NewTagCountSource(sc.Key, cfg.Sources.TagEndpointURL, sc.Process, sc.Action, sc.DataTag, client, rcache, ttl, m, l), interval)
			}
		case "graphql":
			lookback := sc.LookbackDays
			if lookback <= 0 {
				lookback = 30
			}
			col.AddPointSource(source.NewGraphQLCountSource(sc.Key, cfg.Sources.GraphQLURL, sc.Entity, lookback, client, rcache, ttl, m, l), interval)
		default:
			return nil, fmt.Errorf("series %s: unknown source %s", sc.Key, sc.Source)
		}
	}

	return col, nil
}

// ProvideRedisClient creates a redis client for the refresh queue.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Queue.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideRefreshQueue creates the on-demand refresh queue.
func ProvideRefreshQueue(l *applogger.Logger, cfg *config.Config, client *redis.Client) *queue.RedisQueue {
	if client == nil {
		return nil
	}
	return queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, client, queue.ModeProducerConsumer)
}

// ProvideChartsHandler creates the dashboard API handler. On-demand
// refreshes go through the queue when one is configured, otherwise they run
// in the background directly.
func ProvideChartsHandler(
	charts *usecase.ChartsUseCase,
	store repository.HistoryStore,
	catalog *series.Catalog,
	col *usecase.MetricsCollector,
	rq *queue.RedisQueue,
	l *applogger.Logger,
) *api.ChartsHandler {
	refresh := func(ctx context.Context, key string) error {
		if rq != nil {
			return rq.Enqueue(ctx, usecase.RefreshJobType, usecase.RefreshPayload{Series: key})
		}
		go func() {
			if err := col.ForceRefresh(context.Background(), key); err != nil {
				l.Error("manual refresh failed", applogger.String("series", key), applogger.Error(err))
			}
		}()
		return nil
	}

	return api.NewChartsHandler(charts, store, catalog, refresh, ratelimit.New(), l)
}

// kafkaLogPublisher adapts the Kafka producer to the log collector's
// publisher interface.
type kafkaLogPublisher struct {
	p *pkgkafka.Producer
}

func (k kafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return k.p.Publish(ctx, topic, nil, payload)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	col *usecase.MetricsCollector,
	proc *usecase.PointProcessor,
	hub *ws.Hub,
	handler *api.ChartsHandler,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaPointsHandler,
	chClient *pkgch.Client,
	rq *queue.RedisQueue,
	producer *pkgkafka.Producer,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	if producer != nil {
		// Aggregate repeated error logs and ship them over the same broker
		// the points go through.
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.Topic + ".logs",
			Publisher:      kafkaLogPublisher{p: producer},
		})
	}
	return server.New(cfg, l, col, proc, hub, handler, consumer, kh, chClient, rq)
}
