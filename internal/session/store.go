package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/timetrak/client/internal/domain"
)

// Store 保存令牌对，没有登录态时 Load 返回 ErrNotLoggedIn
type Store interface {
	Load(ctx context.Context) (*domain.AuthTokens, error)
	Save(ctx context.Context, tokens *domain.AuthTokens) error
	Delete(ctx context.Context) error
}

type MemoryStore struct {
	mu     sync.Mutex
	tokens *domain.AuthTokens
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(context.Context) (*domain.AuthTokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		return nil, ErrNotLoggedIn
	}
	t := *s.tokens
	return &t, nil
}

func (s *MemoryStore) Save(_ context.Context, tokens *domain.AuthTokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := *tokens
	s.tokens = &t
	return nil
}

func (s *MemoryStore) Delete(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = nil
	return nil
}

// RedisStore 让多次 CLI 调用共享同一个登录态，Key 按 profile 区分
type RedisStore struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, profile string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		key: fmt.Sprintf("timetrak_session_%s", profile),
		ttl: ttl,
	}
}

func (s *RedisStore) Load(ctx context.Context) (*domain.AuthTokens, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		switch {
		case errors.Is(err, redis.Nil):
			return nil, ErrNotLoggedIn
		default:
			return nil, fmt.Errorf("load session: %w", err)
		}
	}

	tokens := &domain.AuthTokens{}
	if err := json.Unmarshal(data, tokens); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return tokens, nil
}

func (s *RedisStore) Save(ctx context.Context, tokens *domain.AuthTokens) error {
	data, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
