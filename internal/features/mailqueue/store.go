package mailqueue

import (
	"context"
	"fmt"

	"go-memo/internal/cache"

	"github.com/redis/go-redis/v9"
)

// ListStore is the ordered-list primitive the queue runs on. PopHead
// must be atomic so concurrent consumers never see the same item.
type ListStore interface {
	PushTail(ctx context.Context, list string, item []byte) error
	PopHead(ctx context.Context, list string) ([]byte, error) // nil, nil when empty
	ListAll(ctx context.Context, list string) ([][]byte, error)
	RemoveOne(ctx context.Context, list string, item []byte) error
	Len(ctx context.Context, list string) (int64, error)
	DeleteList(ctx context.Context, lists ...string) error
}

// RedisListStore implements ListStore on Redis lists
type RedisListStore struct {
	client *redis.Client
}

func NewRedisListStore(rc *cache.RedisClient) ListStore {
	return &RedisListStore{client: rc.Client}
}

func (s *RedisListStore) PushTail(ctx context.Context, list string, item []byte) error {
	if err := s.client.RPush(ctx, list, item).Err(); err != nil {
		return fmt.Errorf("failed to push to %s: %w", list, err)
	}
	return nil
}

func (s *RedisListStore) PopHead(ctx context.Context, list string) ([]byte, error) {
	b, err := s.client.LPop(ctx, list).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop from %s: %w", list, err)
	}
	return b, nil
}

func (s *RedisListStore) ListAll(ctx context.Context, list string) ([][]byte, error) {
	values, err := s.client.LRange(ctx, list, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", list, err)
	}
	items := make([][]byte, len(values))
	for i, v := range values {
		items[i] = []byte(v)
	}
	return items, nil
}

func (s *RedisListStore) RemoveOne(ctx context.Context, list string, item []byte) error {
	if err := s.client.LRem(ctx, list, 1, item).Err(); err != nil {
		return fmt.Errorf("failed to remove from %s: %w", list, err)
	}
	return nil
}

func (s *RedisListStore) Len(ctx context.Context, list string) (int64, error) {
	n, err := s.client.LLen(ctx, list).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to measure %s: %w", list, err)
	}
	return n, nil
}

func (s *RedisListStore) DeleteList(ctx context.Context, lists ...string) error {
	if err := s.client.Del(ctx, lists...).Err(); err != nil {
		return fmt.Errorf("failed to delete lists: %w", err)
	}
	return nil
}
