package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/justinrutledge1992/feathertree/internal/ancestry"
	"github.com/justinrutledge1992/feathertree/internal/config"
	"github.com/justinrutledge1992/feathertree/internal/database"
	"github.com/justinrutledge1992/feathertree/internal/judge"
	"github.com/justinrutledge1992/feathertree/internal/messaging"
	"github.com/justinrutledge1992/feathertree/internal/repository"
	"github.com/justinrutledge1992/feathertree/internal/review"
)

// Static mock verdict used when JUDGE_MOCK is enabled.
const (
	mockScore    = 4
	mockFeedback = "The chapter is consistent with the preceding narrative."
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting chapter review worker...")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	go startMetricsServer(cfg.MetricsPort, logger)

	logger.Info("Connecting to PostgreSQL...")
	dbPool, err := setupDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()
	logger.Info("Connected to PostgreSQL")

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := database.NewMigrator(dbPool).Up(migrateCtx); err != nil {
		migrateCancel()
		logger.Fatal("Failed to apply database migrations", zap.Error(err))
	}
	migrateCancel()

	conn, err := connectRabbitMQ(cfg.RabbitMQURL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer conn.Close()
	logger.Info("Connected to RabbitMQ")

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	if err := declareReviewTopology(ch, cfg.ReviewQueueName); err != nil {
		logger.Fatal("Failed to declare queue topology", zap.Error(err))
	}
	logger.Info("Queue topology declared",
		zap.String("queue", cfg.ReviewQueueName),
		zap.String("dlq", messaging.DeadLetterQueue))

	// One unacked message at a time: a review holds a judge call, so
	// parallelism comes from running more worker replicas.
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", zap.Error(err))
	}

	chapterRepo := repository.NewPgChapterRepository(dbPool, logger)
	storyRepo := repository.NewPgStoryRepository(dbPool, logger)
	reconstructor := ancestry.NewReconstructor(chapterRepo, logger)

	judgeClient, err := newJudgeClient(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create judge client", zap.Error(err))
	}

	taskHandler := review.NewTaskHandler(chapterRepo, storyRepo, reconstructor, judgeClient, cfg.PublishThreshold, logger)

	msgs, err := ch.Consume(cfg.ReviewQueueName, "", false, false, false, false, nil)
	if err != nil {
		logger.Fatal("Failed to register consumer", zap.Error(err))
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	consumeCtx, consumeCancel := context.WithCancel(context.Background())
	defer consumeCancel()

	logger.Info("Waiting for review tasks. Press CTRL+C to exit")

	go func() {
		defer close(done)
		for msg := range msgs {
			var payload messaging.ReviewTaskPayload
			if err := json.Unmarshal(msg.Body, &payload); err != nil {
				logger.Error("Failed to deserialize review task, rejecting (nack, no requeue)",
					zap.Error(err))
				msg.Nack(false, false)
				continue
			}

			taskLogger := logger.With(zap.String("taskID", payload.TaskID))
			if err := taskHandler.Handle(consumeCtx, payload); err != nil {
				taskLogger.Error("Review task failed, rejecting (nack, no requeue)", zap.Error(err))
				msg.Nack(false, false)
			} else {
				taskLogger.Info("Review task processed, acking")
				msg.Ack(false)
			}
		}
		logger.Info("Message channel closed, consumer goroutine exiting")
	}()

	select {
	case <-stopChan:
		logger.Info("Shutdown signal received, closing channel...")
		// Closing the channel ends the msgs range; in-flight work finishes
		// before the goroutine exits.
		ch.Close()
		<-done
	case <-done:
	}

	logger.Info("Chapter review worker stopped")
}

// declareReviewTopology declares the DLX, the DLQ and the main review
// queue with its dead letter arguments. Failed tasks land in the DLQ for
// operator inspection and manual requeue.
func declareReviewTopology(ch *amqp.Channel, queueName string) error {
	if err := ch.ExchangeDeclare(messaging.DeadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(messaging.DeadLetterQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}
	if err := ch.QueueBind(messaging.DeadLetterQueue, messaging.DeadLetterRoutingKey, messaging.DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind DLQ to DLX: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, messaging.ReviewQueueArgs()); err != nil {
		return fmt.Errorf("failed to declare queue %q: %w", queueName, err)
	}
	return nil
}

// newJudgeClient creates the real HTTP judge client, or the static mock
// when JUDGE_MOCK is set.
func newJudgeClient(cfg *config.Config, logger *zap.Logger) (judge.Client, error) {
	if cfg.JudgeMock {
		logger.Warn("JUDGE_MOCK enabled, using static judge verdicts")
		return judge.NewStatic(mockScore, mockFeedback), nil
	}
	return judge.NewHTTPClient(judge.Config{
		ModelID:    cfg.JudgeModelID,
		APIRoot:    cfg.JudgeAPIRoot,
		Deployment: cfg.JudgeDeployment,
		APIKey:     cfg.JudgeAPIKey,
		Timeout:    cfg.JudgeTimeout,
	}, logger)
}

// startMetricsServer serves the Prometheus metrics and the health endpoint.
func startMetricsServer(port string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(review.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	logger.Info("Starting metrics server", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logger.Fatal("Metrics server failed", zap.Error(err))
	}
}

// setupDatabase creates the connection pool, retrying until the database
// accepts connections.
func setupDatabase(cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	const maxRetries = 50
	const retryDelay = 3 * time.Second

	poolConfig, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MaxConnIdleTime = cfg.DBIdleTimeout

	var dbPool *pgxpool.Pool
	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			err = dbPool.Ping(ctx)
			if err == nil {
				cancel()
				logger.Info("Database connection established", zap.Int("attempt", i+1))
				return dbPool, nil
			}
			dbPool.Close()
		}
		cancel()

		logger.Warn("Database connection attempt failed",
			zap.Int("attempt", i+1),
			zap.Int("maxRetries", maxRetries),
			zap.Error(err))
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// connectRabbitMQ dials RabbitMQ with a few retries.
func connectRabbitMQ(url string, logger *zap.Logger) (*amqp.Connection, error) {
	const maxRetries = 5
	const retryDelay = 5 * time.Second

	var conn *amqp.Connection
	var err error
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		logger.Warn("RabbitMQ connection attempt failed",
			zap.Int("attempt", i+1),
			zap.Int("maxRetries", maxRetries),
			zap.Error(err))
		time.Sleep(retryDelay)
	}
	return nil, err
}
