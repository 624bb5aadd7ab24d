package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/argus-intel/argus/backend/internal/util"
	"github.com/argus-intel/argus/backend/pkg/logger"
)

// AnalysisQueue carries on-demand full-analysis triggers from the API
// process to the worker.
const AnalysisQueue = "analysis_queue"

// AnalysisTrigger is the message published when an analysis run is
// requested. ProfileID is empty for plain "run now" requests and set when a
// specific dossier change prompted the run.
type AnalysisTrigger struct {
	ProfileID   string    `json:"profile_id,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// Init dials the broker, retrying while it comes up. The attempt count is
// tunable via RABBITMQ_CONNECT_ATTEMPTS.
func Init(ctx context.Context) *amqp091.Connection {
	user := util.GetEnv("RABBITMQ_USER")
	pass := util.GetEnv("RABBITMQ_PASSWORD")
	host := util.GetEnv("RABBITMQ_HOST")
	port := util.GetEnv("RABBITMQ_PORT")

	connURL := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		user,
		pass,
		host,
		port,
	)

	maxTries := int(util.GetEnvNumeric("RABBITMQ_CONNECT_ATTEMPTS", 5))
	conn, err := util.RetryWithContext(ctx, maxTries, func(ctx context.Context) (*amqp091.Connection, error) {
		conn, err := amqp091.Dial(connURL)
		if err != nil {
			logger.Debug("RabbitMQ not ready, retrying", "err", err)
			select {
			case <-ctx.Done():
			case <-time.After(2 * time.Second):
			}
		}
		return conn, err
	})
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}

	return conn
}

// SetupQueues declares the trigger queue plus its retry and dead-letter
// companions. Failed triggers bounce through the retry queue with a short
// TTL before redelivery.
func SetupQueues(ch *amqp091.Channel) error {
	queues := []string{AnalysisQueue}
	for _, name := range queues {
		_, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", name, err)
		}

		dlqName := name + "_dlq"
		_, err = ch.QueueDeclare(
			dlqName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", dlqName, err)
		}

		retryName := name + "_retry"
		_, err = ch.QueueDeclare(
			retryName,
			true,
			false,
			false,
			false,
			amqp091.Table{
				"x-message-ttl":             int32(10000),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", retryName, err)
		}
	}

	return nil
}

// PublishTrigger enqueues an analysis trigger for the worker.
func PublishTrigger(ch *amqp091.Channel, trigger AnalysisTrigger) error {
	if trigger.RequestedAt.IsZero() {
		trigger.RequestedAt = time.Now().UTC()
	}
	body, err := json.Marshal(trigger)
	if err != nil {
		return err
	}

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	}

	return ch.Publish(
		"",
		AnalysisQueue,
		false,
		false,
		publishing,
	)
}
