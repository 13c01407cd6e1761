package room

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodeRegistry reserves room codes so that no two active rooms share one.
type CodeRegistry interface {
	// Reserve claims code and reports whether it was free.
	Reserve(ctx context.Context, code string) (bool, error)
	// Release frees a previously reserved code.
	Release(ctx context.Context, code string) error
}

// MemoryCodeRegistry is a process-local CodeRegistry.
type MemoryCodeRegistry struct {
	mu    sync.Mutex
	codes map[string]struct{}
}

func NewMemoryCodeRegistry() *MemoryCodeRegistry {
	return &MemoryCodeRegistry{codes: make(map[string]struct{})}
}

func (r *MemoryCodeRegistry) Reserve(ctx context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.codes[code]; taken {
		return false, nil
	}
	r.codes[code] = struct{}{}
	return true, nil
}

func (r *MemoryCodeRegistry) Release(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codes, code)
	return nil
}

// RedisCodeRegistry shares room codes between relay processes.
// Key: elementa:room:code:{code}
type RedisCodeRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCodeRegistry creates a registry whose reservations expire after
// ttl if never released.
func NewRedisCodeRegistry(client *redis.Client, ttl time.Duration) *RedisCodeRegistry {
	return &RedisCodeRegistry{client: client, ttl: ttl}
}

func codeKey(code string) string {
	return fmt.Sprintf("elementa:room:code:%s", code)
}

func (r *RedisCodeRegistry) Reserve(ctx context.Context, code string) (bool, error) {
	ok, err := r.client.SetNX(ctx, codeKey(code), time.Now().Unix(), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve room code %s: %w", code, err)
	}
	return ok, nil
}

func (r *RedisCodeRegistry) Release(ctx context.Context, code string) error {
	if err := r.client.Del(ctx, codeKey(code)).Err(); err != nil {
		return fmt.Errorf("release room code %s: %w", code, err)
	}
	return nil
}
