package di

import (
	"context"
	"fmt"
	"time"

	"GlucoPulse/internal/domain/repository"
	mid "GlucoPulse/internal/middleware"
	internalrepo "GlucoPulse/internal/repository"
	"GlucoPulse/internal/service/cgm"
	"GlucoPulse/internal/service/notify"
	"GlucoPulse/internal/usecase"
	pkgch "GlucoPulse/pkg/clickhouse"
	"GlucoPulse/pkg/config"
	pkgkafka "GlucoPulse/pkg/kafka"
	"GlucoPulse/pkg/metrics"
	"GlucoPulse/pkg/server"
)

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
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

	// Initialize schema. Edits and deletes insert newer version rows; the
	// ReplacingMergeTree collapses them by updated_at on merges.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS glucopulse",
		`CREATE TABLE IF NOT EXISTS glucopulse.readings (
            id String,
            user_id String,
            ts DateTime64(3),
            value Float64,
            ctx String,
            note String,
            source String,
            updated_at DateTime64(3),
            deleted UInt8
        ) ENGINE=ReplacingMergeTree(updated_at) ORDER BY (user_id, id)`,
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ReadingsTable returns the fully qualified readings table name.
func ReadingsTable(cfg *config.Config) string {
	db := cfg.ClickHouse.Database
	if db == "" {
		db = "glucopulse"
	}
	table := cfg.ClickHouse.Table
	if table == "" {
		table = "readings"
	}
	return db + "." + table
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
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

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideReadingStorage creates ClickHouse storage repository.
func ProvideReadingStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseStorage(chClient.DB(), ReadingsTable(cfg))
}

// ProvideReadingPublisher creates Kafka publisher repository.
func ProvideReadingPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
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

// ProvideKafkaReadingsHandler registers the handler for the readings topic.
func ProvideKafkaReadingsHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaReadingsHandler {
	return usecase.NewKafkaReadingsHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideCGMStream creates the CGM bridge WebSocket stream.
func ProvideCGMStream(cfg *config.Config) repository.CGMStream {
	return cgm.New(
		cfg.CGM.APIKey,
		cfg.CGM.WebSocketURL,
		cfg.CGM.UserIDs,
		cfg.CGM.ReconnectDelay,
		cfg.CGM.PingInterval,
	)
}

// ProvideReadingProcessor creates the reading processor use case.
func ProvideReadingProcessor(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.ReadingProcessor {
	return usecase.NewReadingProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideCGMCollector creates the CGM collector use case.
func ProvideCGMCollector(
	stream repository.CGMStream,
	processor *usecase.ReadingProcessor,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.CGMCollector {
	// Middleware pipeline between the WebSocket bridge and the backend
	opts := []mid.PipelineOption{
		mid.WithMaxRPS(10),
		mid.WithBufferSize(2000),
	}
	if cfg.Analytics.AlertWebhook != "" {
		notifier := notify.NewWebhookNotifier(
			cfg.Analytics.AlertWebhook,
			cfg.Analytics.HighAlert,
			cfg.Analytics.LowAlert,
		)
		opts = append(opts, mid.WithObserver(notifier.Observe))
	}
	pipe := mid.NewRealtimePipeline(processor, metrics, opts...)
	return usecase.NewCGMCollector(stream, processor, metrics, pipe)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.CGMCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaReadingsHandler,
	chClient *pkgch.Client,
	storage repository.Storage,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, collector, consumer, kh, chClient, storage)
	if collector != nil {
		app.ReadingProc = collector.Processor()
	}
	return app
}
