package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"recipehub/internal/config"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// NotificationCreated is announced after a notification has been committed.
type NotificationCreated struct {
	ID         string    `json:"id"`
	ForUserID  string    `json:"for_user"`
	FromUserID *string   `json:"from_user,omitempty"`
	Content    string    `json:"content"`
	CommentID  *string   `json:"comment_id,omitempty"`
	RecipeID   *string   `json:"recipe_id,omitempty"`
	CreatedAt  time.Time `json:"date"`
}

type Publisher interface {
	PublishNotification(ctx context.Context, event NotificationCreated) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
	cb     *gobreaker.CircuitBreaker
}

// NewPublisher returns a Kafka publisher, or a no-op one when no brokers are configured.
func NewPublisher(cfg *config.Config, logger *zap.Logger) Publisher {
	if !cfg.EventsEnabled() {
		return NopPublisher{}
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaNotificationTopic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}
	st := gobreaker.Settings{
		Name:        "kafka",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("circuit breaker state", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}
	return &kafkaPublisher{writer: w, cb: gobreaker.NewCircuitBreaker(st)}
}

// PublishNotification keys messages by recipient so one user's events stay ordered.
func (p *kafkaPublisher) PublishNotification(ctx context.Context, event NotificationCreated) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}
	msg := kafka.Message{Key: []byte(event.ForUserID), Value: value, Time: time.Now()}
	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.writer.WriteMessages(ctx, msg)
	})
	return err
}

func (p *kafkaPublisher) Close() error { return p.writer.Close() }

type NopPublisher struct{}

func (NopPublisher) PublishNotification(context.Context, NotificationCreated) error { return nil }

func (NopPublisher) Close() error { return nil }
