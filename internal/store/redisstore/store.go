// Package redisstore caches the grouped-media view that polling clients
// hammer. The cache is best effort: any redis error is treated as a miss
// and the DB stays authoritative.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when no cached view exists for a chat.
var ErrMiss = errors.New("cache miss")

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(addr, password string, db int, ttl time.Duration) *Store {
	return &Store{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

func chatViewKey(chatID uint64) string {
	return fmt.Sprintf("chat:%d:view", chatID)
}

func (s *Store) GetChatView(ctx context.Context, chatID uint64) ([]byte, error) {
	b, err := s.rdb.Get(ctx, chatViewKey(chatID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}
	return b, nil
}

func (s *Store) SetChatView(ctx context.Context, chatID uint64, payload []byte) error {
	return s.rdb.Set(ctx, chatViewKey(chatID), payload, s.ttl).Err()
}

// InvalidateChat drops the cached view after any media upsert so pollers
// see lifecycle transitions promptly.
func (s *Store) InvalidateChat(ctx context.Context, chatID uint64) error {
	return s.rdb.Del(ctx, chatViewKey(chatID)).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
