package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/errandly/errandly-backend/internal/domain"
)

const channelPrefix = "notifications:"

// Publisher pushes notification payloads onto per-recipient redis
// channels so connected clients receive them without polling.
type Publisher struct {
	client *redis.Client
}

// NewPublisher connects to redis and verifies the connection
func NewPublisher(addr, password string) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Publisher{client: client}, nil
}

type payload struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	RelatedID uuid.UUID `json:"related_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Publish sends the notification to the recipient's channel
func (p *Publisher) Publish(ctx context.Context, n *domain.Notification) error {
	data, err := json.Marshal(payload{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Body:      n.Body,
		RelatedID: n.RelatedID,
		CreatedAt: n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := p.client.Publish(ctx, channelPrefix+n.RecipientID.String(), data).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Close releases the underlying redis connection
func (p *Publisher) Close() error {
	return p.client.Close()
}
