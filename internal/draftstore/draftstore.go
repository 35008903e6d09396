package draftstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
)

var ErrNotFound = errors.New("草稿不存在")

// Store 保存每个会话正在编辑的草稿，草稿只在编辑会话期间有效
type Store interface {
	Save(ctx context.Context, subject string, draft *domain.Schedule) error
	Load(ctx context.Context, subject string) (*domain.Schedule, error)
	Delete(ctx context.Context, subject string) error
}

func key(subject string) string {
	return fmt.Sprintf("draft_%s", subject)
}

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, subject string, draft *domain.Schedule) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(subject), data, s.ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, subject string) (*domain.Schedule, error) {
	data, err := s.rdb.Get(ctx, key(subject)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	draft := &domain.Schedule{}
	if err := json.Unmarshal(data, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *RedisStore) Delete(ctx context.Context, subject string) error {
	return s.rdb.Del(ctx, key(subject)).Err()
}

// MemoryStore 在没有配置 redis 时使用，进程退出后草稿随之丢失
type MemoryStore struct {
	mu     sync.Mutex
	drafts map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string][]byte)}
}

func (s *MemoryStore) Save(ctx context.Context, subject string, draft *domain.Schedule) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[key(subject)] = data
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, subject string) (*domain.Schedule, error) {
	s.mu.Lock()
	data, ok := s.drafts[key(subject)]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}

	draft := &domain.Schedule{}
	if err := json.Unmarshal(data, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *MemoryStore) Delete(ctx context.Context, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key(subject))
	return nil
}
