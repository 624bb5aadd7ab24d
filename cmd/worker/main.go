package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/argus-intel/argus/backend/internal/queue"
	"github.com/argus-intel/argus/backend/internal/scheduler"
	"github.com/argus-intel/argus/backend/internal/util"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/argus-intel/argus/backend/pkg/analyzer"
	"github.com/argus-intel/argus/backend/pkg/leaselock"
	"github.com/argus-intel/argus/backend/pkg/logger"
	"github.com/argus-intel/argus/backend/pkg/logger/console"
	pgstore "github.com/argus-intel/argus/backend/pkg/store/pgx"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	// Init pgx client
	pgConn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()

	storage := pgstore.NewStorage(pgConn)
	an := analyzer.New(storage.Profiles, storage.Linkages, analyzer.WithLocker(leaselock.New(pgConn)))

	sched := scheduler.New(an, storage.Linkages, scheduler.Config{
		ScanInterval:    util.GetEnvDuration("SCAN_INTERVAL", 5*time.Minute),
		CleanupInterval: util.GetEnvDuration("CLEANUP_INTERVAL", 24*time.Hour),
		StaleAfter:      util.GetEnvDuration("LINKAGE_STALE_AFTER", 30*24*time.Hour),
	})
	sched.Start(ctx)
	defer sched.Stop()

	// Init rabbitmq
	conn := queue.Init(ctx)
	defer conn.Close()

	// Init rabbitmq queues if not exist
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch); err != nil {
		logger.Fatal("Failed to setup queues", "err", err)
	}

	logger.Info("Listening for messages")

	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	err = consumerCh.Qos(1, 0, true)
	if err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.AnalysisQueue,
		queue.AnalysisQueue+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.AnalysisQueue, "err", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Info("Message channel closed", "queue", queue.AnalysisQueue)
					return
				}

				startTime := time.Now()
				logger.Info("Received message", "queue", queue.AnalysisQueue)

				processingErr := processTrigger(ctx, sched, msg.Body)
				if processingErr != nil {
					logger.Error("Error processing message", "queue", queue.AnalysisQueue, "err", processingErr)
					handleProcessingError(consumerCh, msg, queue.AnalysisQueue)
				} else {
					if err := msg.Ack(false); err != nil {
						logger.Error("Failed to ack message", "err", err)
					}
					logger.Info("Message processed successfully", "queue", queue.AnalysisQueue)
				}

				logger.Info("Processing time", "duration", time.Since(startTime).Round(time.Millisecond))
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}

func processTrigger(ctx context.Context, sched *scheduler.Scheduler, body []byte) error {
	var trigger queue.AnalysisTrigger
	if err := json.Unmarshal(body, &trigger); err != nil {
		return err
	}

	result, err := sched.TriggerImmediateAnalysis(ctx, trigger.ProfileID)
	if err != nil {
		// Another scan is already covering the population; the trigger's
		// work will be done by the time it completes.
		if errors.Is(err, analyzer.ErrScanInProgress) || errors.Is(err, leaselock.ErrBusy) {
			logger.Info("Scan already in progress, trigger absorbed")
			return nil
		}
		return err
	}

	logger.Info(
		"Analysis complete",
		"profiles", result.ProfilesAnalyzed,
		"linkages", result.LinkagesFound,
	)
	return nil
}

func handleProcessingError(ch *amqp.Channel, msg amqp.Delivery, queueName string) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		if v, ok := val.(int32); ok {
			retries = int(v)
		}
	}

	// If message has been retried 10 times, send to dead-letter
	if retries >= 10 {
		dlqName := queueName + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", dlqName)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			msg.Nack(false, true)
			return
		}
		msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retries"] = retries + 1

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("Failed to publish to retry queue", "retry_queue", retryName, "err", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}
