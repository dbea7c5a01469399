package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/patrickwarner/chatads/internal/models"
)

// CatalogUpdateChannel carries admin mutations to every server instance.
const CatalogUpdateChannel = "catalog_updates"

// UpdateMessage describes a catalog mutation.
type UpdateMessage struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     string `json:"id"`
}

// RedisStore wraps a redis client and context for operations.
type RedisStore struct {
	Client *redis.Client
	Ctx    context.Context
}

// InitRedis initializes a Redis client and returns a RedisStore.
func InitRedis(addr string) (*RedisStore, error) {
	rs := &RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		Ctx:    context.Background(),
	}

	if err := redisotel.InstrumentTracing(rs.Client); err != nil {
		return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
	}

	if err := rs.Client.Ping(rs.Ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return rs, nil
}

// PublishCatalogUpdate notifies subscribers that the catalog changed.
func (r *RedisStore) PublishCatalogUpdate(ctx context.Context, msg UpdateMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return r.Client.Publish(ctx, CatalogUpdateChannel, payload).Err()
}

// SubscribeCatalogUpdates calls fn for every update until ctx is done.
// Malformed payloads are logged and skipped.
func (r *RedisStore) SubscribeCatalogUpdates(ctx context.Context, fn func(UpdateMessage)) error {
	sub := r.Client.Subscribe(ctx, CatalogUpdateChannel)
	defer sub.Close()

	// wait for the subscription to be confirmed so no publish is missed
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", CatalogUpdateChannel, err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg UpdateMessage
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				zap.L().Warn("invalid catalog update", zap.String("payload", m.Payload), zap.Error(err))
				continue
			}
			fn(msg)
		}
	}
}

// Close shuts down the Redis client.
func (r *RedisStore) Close() {
	if r != nil && r.Client != nil {
		if err := r.Client.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
}

// RedisHistory keeps each user's recent successful context texts in a
// capped list, newest first.
type RedisHistory struct {
	Client redis.Cmdable
	Limit  int
}

// NewRedisHistory returns a history capped at limit entries per user.
func NewRedisHistory(client redis.Cmdable, limit int) *RedisHistory {
	if limit <= 0 {
		limit = 50
	}
	return &RedisHistory{Client: client, Limit: limit}
}

func historyKey(userID string) string {
	return "history:" + userID
}

// Record pushes a successful context text for the user.
func (h *RedisHistory) Record(ctx context.Context, userID, contextText string) error {
	if userID == "" || contextText == "" {
		return nil
	}
	key := historyKey(userID)
	pipe := h.Client.TxPipeline()
	pipe.LPush(ctx, key, contextText)
	pipe.LTrim(ctx, key, 0, int64(h.Limit-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

// RecentSuccessfulContexts returns up to limit entries, newest first.
func (h *RedisHistory) RecentSuccessfulContexts(ctx context.Context, userID string, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	vals, err := h.Client.LRange(ctx, historyKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	out := make([]models.HistoryEntry, len(vals))
	for i, v := range vals {
		out[i] = models.HistoryEntry{ContextText: v}
	}
	return out, nil
}
