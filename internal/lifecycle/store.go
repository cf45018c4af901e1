package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// DraftStore хранит черновики вне реляционной БД.
type DraftStore interface {
	Save(ctx context.Context, d *Draft) error
	Load(ctx context.Context, id string) (*Draft, error)
	Delete(ctx context.Context, id string) error
}

func cloneDraft(d *Draft) (*Draft, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var out Draft
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MemoryDraftStore - хранилище для одного узла и тестов.
type MemoryDraftStore struct {
	mu     sync.RWMutex
	drafts map[string]*Draft
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[string]*Draft)}
}

func (s *MemoryDraftStore) Save(_ context.Context, d *Draft) error {
	c, err := cloneDraft(d)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.drafts[d.ID] = c
	s.mu.Unlock()
	return nil
}

func (s *MemoryDraftStore) Load(_ context.Context, id string) (*Draft, error) {
	s.mu.RLock()
	d, ok := s.drafts[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrDraftNotFound
	}
	return cloneDraft(d)
}

func (s *MemoryDraftStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.drafts, id)
	s.mu.Unlock()
	return nil
}

const draftKeyPrefix = "order_draft:"

// RedisDraftStore хранит черновик JSON-строкой с TTL, чтобы он был виден всем узлам API.
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{client: client, ttl: ttl}
}

func draftKey(id string) string {
	return draftKeyPrefix + id
}

func (s *RedisDraftStore) Save(ctx context.Context, d *Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("ошибка сериализации черновика: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(d.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка сохранения черновика в Redis: %w", err)
	}
	return nil
}

func (s *RedisDraftStore) Load(ctx context.Context, id string) (*Draft, error) {
	raw, err := s.client.Get(ctx, draftKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("ошибка чтения черновика из Redis: %w", err)
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("повреждённый черновик %s: %w", id, err)
	}
	return &d, nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, draftKey(id)).Err(); err != nil {
		return fmt.Errorf("ошибка удаления черновика из Redis: %w", err)
	}
	return nil
}
