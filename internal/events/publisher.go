// Package events publishes run lifecycle events to a Redis stream so
// downstream consumers can react to finished scrapes.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type EventType string

const (
	EventTypeMarketScraped EventType = "MARKET_SCRAPED"
	EventTypeRunCompleted  EventType = "RUN_COMPLETED"
)

// RedisClient is the subset of the redis client the publisher needs.
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

type Publisher struct {
	client RedisClient
	stream string
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream string, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
		logger: logger.With("component", "event_publisher"),
	}
}

type MarketScrapedPayload struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	RunID       string    `json:"run_id"`
	Market      string    `json:"market"`
	Products    int       `json:"products"`
	ReviewCount int       `json:"review_count"`
}

type RunCompletedPayload struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	RunID       string    `json:"run_id"`
	Brand       string    `json:"brand"`
	Markets     []string  `json:"markets"`
	ReviewCount int       `json:"review_count"`
}

func (p *Publisher) PublishMarketScraped(ctx context.Context, payload MarketScrapedPayload) error {
	payload.EventID = uuid.New().String()
	payload.EventType = string(EventTypeMarketScraped)
	payload.Timestamp = time.Now()
	return p.publish(ctx, payload.EventID, payload)
}

func (p *Publisher) PublishRunCompleted(ctx context.Context, payload RunCompletedPayload) error {
	payload.EventID = uuid.New().String()
	payload.EventType = string(EventTypeRunCompleted)
	payload.Timestamp = time.Now()
	return p.publish(ctx, payload.EventID, payload)
}

func (p *Publisher) publish(ctx context.Context, eventID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{"payload": string(data)},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Info("event published", "stream", p.stream, "event_id", eventID)
	return nil
}
