package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Dead letter topology for the review queue. The publisher and the worker
// must declare the queue with identical arguments, so the names live here.
const (
	DeadLetterExchange   = "chapter_review_tasks_dlx"
	DeadLetterQueue      = "chapter_review_tasks_dlq"
	DeadLetterRoutingKey = "dlq"
)

// ReviewQueueArgs returns the declaration arguments for the review queue.
func ReviewQueueArgs() amqp.Table {
	return amqp.Table{
		"x-queue-mode":              "lazy",
		"x-dead-letter-exchange":    DeadLetterExchange,
		"x-dead-letter-routing-key": DeadLetterRoutingKey,
	}
}

// ReviewTaskPublisher defines the interface for enqueueing review tasks.
type ReviewTaskPublisher interface {
	PublishReviewTask(ctx context.Context, payload ReviewTaskPayload) error
}

// rabbitMQPublisher implements ReviewTaskPublisher for RabbitMQ.
type rabbitMQPublisher struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQPublisher creates a publisher for the review task queue.
// The queue is declared durable so submitted chapters survive a broker
// restart; arguments must match the worker's declaration exactly or the
// broker rejects the redeclaration.
func NewRabbitMQPublisher(ch *amqp.Channel, queueName string, logger *zap.Logger) (ReviewTaskPublisher, error) {
	_, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		ReviewQueueArgs(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare review queue %q: %w", queueName, err)
	}
	return &rabbitMQPublisher{
		channel:   ch,
		queueName: queueName,
		logger:    logger.Named("ReviewTaskPublisher"),
	}, nil
}

// PublishReviewTask publishes one review task message. Submission is
// fire-and-forget from the caller's perspective; a worker picks the task up
// independently of the submitting request.
func (p *rabbitMQPublisher) PublishReviewTask(ctx context.Context, payload ReviewTaskPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal review task %s: %w", payload.TaskID, err)
	}

	err = p.channel.PublishWithContext(ctx,
		"",          // default exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
			AppId:        "feathertree-server",
			MessageId:    payload.TaskID,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish review task",
			zap.Error(err),
			zap.String("taskID", payload.TaskID),
			zap.String("chapterID", payload.ChapterID))
		return fmt.Errorf("failed to publish review task %s: %w", payload.TaskID, err)
	}

	p.logger.Info("Review task published",
		zap.String("taskID", payload.TaskID),
		zap.String("chapterID", payload.ChapterID))
	return nil
}
