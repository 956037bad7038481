package dispatch

import (
	"context"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

const slipKey = "dispatch:slip"

// SlipSequence issues slip ids for approvals that arrive without one.
type SlipSequence interface {
	Next(ctx context.Context) (string, error)
}

// RedisSlipSequence draws from INCR dispatch:slip. The counter is seeded so
// the first id issued is start.
type RedisSlipSequence struct {
	rdb   *redis.Client
	start int64
}

func NewRedisSlipSequence(rdb *redis.Client, start int64) *RedisSlipSequence {
	return &RedisSlipSequence{rdb: rdb, start: start}
}

func (s *RedisSlipSequence) Next(ctx context.Context) (string, error) {
	if err := s.rdb.SetNX(ctx, slipKey, s.start-1, 0).Err(); err != nil {
		return "", err
	}
	n, err := s.rdb.Incr(ctx, slipKey).Result()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n, 10), nil
}

type MemorySlipSequence struct {
	mu   sync.Mutex
	next int64
}

func NewMemorySlipSequence(start int64) *MemorySlipSequence {
	return &MemorySlipSequence{next: start}
}

func (s *MemorySlipSequence) Next(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.next
	s.next++
	return strconv.FormatInt(n, 10), nil
}
