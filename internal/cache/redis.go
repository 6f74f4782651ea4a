// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list the rules-engine service drains for
// freshly started games.
const DefaultQueueName = "broadside_games"

// GameStartRecord is the handoff payload pushed when a lobby goes in_progress.
// The rules engine owns the session from this point on.
type GameStartRecord struct {
	Code      string      `json:"code"`
	Players   []uuid.UUID `json:"players"`
	StartedAt int64       `json:"started_at"`
}

// Publisher pushes game-start records onto a Redis queue. It satisfies
// lobby.GameNotifier.
type Publisher struct {
	rdb   *redis.Client
	queue string
}

// NewPublisher connects to Redis and verifies the connection. queue falls back
// to DefaultQueueName when empty.
func NewPublisher(ctx context.Context, addr string, db int, queue string) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueueName
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Publisher{rdb: rdb, queue: queue}, nil
}

// GameStarted serializes the record and RPushes it onto the queue.
func (p *Publisher) GameStarted(ctx context.Context, code string, players []uuid.UUID) error {
	record := GameStartRecord{
		Code:      code,
		Players:   players,
		StartedAt: time.Now().Unix(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal game start record: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list %q: %w", p.queue, err)
	}
	return nil
}

// Close releases the Redis connection.
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
