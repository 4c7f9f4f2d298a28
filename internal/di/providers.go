package di

import (
	"context"
	"fmt"
	"time"

	"NarrativeRadar/internal/domain/models"
	"NarrativeRadar/internal/domain/repository"
	handlerapi "NarrativeRadar/internal/handler/api"
	"NarrativeRadar/internal/jobs"
	"NarrativeRadar/internal/merge"
	internalrepo "NarrativeRadar/internal/repository"
	"NarrativeRadar/internal/seeds"
	"NarrativeRadar/internal/service/cache"
	"NarrativeRadar/internal/service/fetch"
	"NarrativeRadar/internal/service/ratelimit"
	"NarrativeRadar/internal/source"
	"NarrativeRadar/internal/usecase"
	pkgch "NarrativeRadar/pkg/clickhouse"
	"NarrativeRadar/pkg/config"
	xhttp "NarrativeRadar/pkg/http"
	pkgkafka "NarrativeRadar/pkg/kafka"
	"NarrativeRadar/pkg/logger"
	"NarrativeRadar/pkg/metrics"
	"NarrativeRadar/pkg/queue"
	"NarrativeRadar/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	level := cfg.Logging.Level
	if level == "" {
		level = "info"
	}
	format := cfg.Logging.Format
	if format == "" {
		format = "console"
	}
	return logger.New(&logger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideSeeds loads the narrative seed file.
func ProvideSeeds(cfg *config.Config) (*seeds.Store, error) {
	store, err := seeds.Load(cfg.Seeds.File)
	if err != nil {
		return nil, fmt.Errorf("seeds: %w", err)
	}
	return store, nil
}

// ProvideRegistry builds the adapter registry with every adapter registered
// explicitly at the composition point. The providers share one HTTP client,
// one rate limiter and one raw-result cache, so the blend adapter reuses
// whatever the standalone adapters already fetched.
func ProvideRegistry(cfg *config.Config, rec *metrics.Recorder, log *logger.Logger) (*source.Registry, error) {
	rawTTL := cfg.Source.RawTTL
	if rawTTL <= 0 {
		rawTTL = source.DefaultRawTTL
	}
	searchTTL := cfg.Source.SearchTTL
	if searchTTL <= 0 {
		searchTTL = source.DefaultSearchTTL
	}
	httpTimeout := cfg.Source.HTTPTimeout
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}

	clientOpts := []xhttp.ClientOption{xhttp.WithTimeout(httpTimeout)}
	if cfg.Source.UserAgent != "" {
		clientOpts = append(clientOpts, xhttp.WithUserAgent(cfg.Source.UserAgent))
	}
	client := xhttp.NewClient(clientOpts...)
	limiter := ratelimit.New()
	rawCache := cache.NewTTLCache[[]models.ParentCandidate](rawTTL)
	searchCache := cache.NewTTLCache[[]source.SearchHit](searchTTL)

	cgFetcher := fetch.New(fetch.Config{
		Provider:    "coingecko",
		RPS:         cfg.CoinGecko.RPS,
		Burst:       cfg.CoinGecko.Burst,
		MaxAttempts: cfg.CoinGecko.MaxAttempts,
	}, client, limiter, log)
	cgFetcher.SetMetrics(rec)

	dsFetcher := fetch.New(fetch.Config{
		Provider:    "dexscreener",
		RPS:         cfg.DexScreener.RPS,
		Burst:       cfg.DexScreener.Burst,
		MaxAttempts: cfg.DexScreener.MaxAttempts,
	}, client, limiter, log)
	dsFetcher.SetMetrics(rec)

	cg := source.NewCoinGeckoAdapter(source.CoinGeckoConfig{
		BaseURL:    cfg.CoinGecko.BaseURL,
		MaxTerms:   cfg.CoinGecko.MaxTerms,
		IDsPerTerm: cfg.CoinGecko.IDsPerTerm,
		MaxIDs:     cfg.CoinGecko.MaxIDs,
		Cap:        cfg.CoinGecko.Cap,
	}, cgFetcher, rawCache, searchCache, log)

	ds := source.NewDexScreenerAdapter(source.DexScreenerConfig{
		BaseURL:  cfg.DexScreener.BaseURL,
		MaxTerms: cfg.DexScreener.MaxTerms,
		Pacing:   cfg.DexScreener.Pacing,
		Cap:      cfg.DexScreener.Cap,
		Dedupe:   source.DedupeMode(cfg.DexScreener.Dedupe),
	}, dsFetcher, rawCache, log)

	blend := source.NewBlendAdapter(cg, ds, merge.Config{
		WeightFirst:  cfg.Blend.WeightCoinGecko,
		WeightSecond: cfg.Blend.WeightDexScreener,
	}, cfg.Blend.Cap, log)

	reg := source.NewRegistry()
	factories := map[string]source.Factory{
		"test":        func() source.Adapter { return source.NewTestAdapter(rawCache) },
		"dev":         func() source.Adapter { return source.NewDevAdapter(rawCache, time.Now().UnixNano()) },
		"coingecko":   func() source.Adapter { return cg },
		"dexscreener": func() source.Adapter { return ds },
		"blend":       func() source.Adapter { return blend },
	}
	for name, factory := range factories {
		if err := reg.Register(name, factory); err != nil {
			return nil, fmt.Errorf("register adapter %q: %w", name, err)
		}
	}
	return reg, nil
}

// ProvideSource selects the configured adapter. An unknown name is a
// configuration error and aborts startup.
func ProvideSource(reg *source.Registry, cfg *config.Config) (*source.Source, error) {
	return source.New(reg, cfg.Source.Adapter)
}

// ProvideClickHouseClient creates a ClickHouse client when the snapshot
// sink is clickhouse; other sinks need no client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Sink.Type != "clickhouse" {
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.SnapshotSchema); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideSnapshotStore picks the snapshot store for the configured sink.
// Without ClickHouse, snapshots live in process memory.
func ProvideSnapshotStore(chClient *pkgch.Client, cfg *config.Config) repository.SnapshotStore {
	if chClient != nil {
		return internalrepo.NewClickHouseSnapshotStore(chClient.DB(), "narrative_parents")
	}
	return internalrepo.NewMemorySnapshotStore()
}

// ProvideKafkaProducer creates a Kafka producer when the sink is kafka.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Sink.Type != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
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

// ProvidePublisher wraps the producer as a snapshot publisher; nil means
// refreshes store locally without publishing.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaSnapshotPublisher(producer, cfg.Kafka.Topic)
}

// ProvideRefresher creates the refresh use case.
func ProvideRefresher(
	seedStore *seeds.Store,
	src *source.Source,
	store repository.SnapshotStore,
	pub repository.Publisher,
	rec *metrics.Recorder,
	log *logger.Logger,
) *usecase.Refresher {
	return usecase.NewRefresher(seedStore, src, store, pub, rec, log)
}

// ProvideHeatmap creates the heatmap use case.
func ProvideHeatmap(seedStore *seeds.Store, store repository.SnapshotStore, cfg *config.Config) *usecase.Heatmap {
	heatCfg := usecase.DefaultHeatConfig()
	if cfg.Heat.WeightVolume > 0 || cfg.Heat.WeightLiquidity > 0 {
		heatCfg = usecase.HeatConfig{
			WeightVolume:    cfg.Heat.WeightVolume,
			WeightLiquidity: cfg.Heat.WeightLiquidity,
		}
	}
	return usecase.NewHeatmap(seedStore, store, heatCfg)
}

// ProvideTracker creates the async refresh job tracker.
func ProvideTracker(cfg *config.Config) *jobs.Tracker {
	tracker := jobs.NewTracker()
	tracker.SetTTL(cfg.Jobs.TTL)
	return tracker
}

// ProvideRefreshJob creates the queue-executable refresh job.
func ProvideRefreshJob(tracker *jobs.Tracker, refresher *usecase.Refresher, log *logger.Logger) *jobs.RefreshJob {
	return jobs.NewRefreshJob(tracker, refresher, log)
}

// ProvideRedisQueue creates the Redis-backed job queue when an address is
// configured; without one, async refreshes run in-process.
func ProvideRedisQueue(cfg *config.Config, job *jobs.RefreshJob, log *logger.Logger) *queue.RedisQueue {
	if cfg.Jobs.Redis.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Jobs.Redis.Addr,
		Password: cfg.Jobs.Redis.Password,
		DB:       cfg.Jobs.Redis.DB,
	})
	q := queue.NewRedisQueue(log, &queue.QueueConfig{Workers: 1}, client, queue.ModeProducerConsumer)
	q.RegisterJob(job)
	return q
}

// ProvideDispatcher picks queue-backed or in-process dispatch.
func ProvideDispatcher(q *queue.RedisQueue, job *jobs.RefreshJob) jobs.Dispatcher {
	if q != nil {
		return jobs.NewQueueDispatcher(q)
	}
	return jobs.NewGoDispatcher(job)
}

// ProvideHandler creates the HTTP API handler.
func ProvideHandler(
	log *logger.Logger,
	seedStore *seeds.Store,
	refresher *usecase.Refresher,
	heatmap *usecase.Heatmap,
	tracker *jobs.Tracker,
	dispatcher jobs.Dispatcher,
) *handlerapi.NarrativesHandler {
	return handlerapi.NewNarrativesHandler(log, seedStore, refresher, heatmap, tracker, dispatcher)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	handler *handlerapi.NarrativesHandler,
	q *queue.RedisQueue,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	log *logger.Logger,
) *server.App {
	return server.New(cfg, handler, q, chClient, producer, log)
}
