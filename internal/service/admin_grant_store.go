package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AdminGrant es una sesión de admin emitida. ID es el jti del token y Client
// la IP desde la que se hizo el login; se registra junto a cada cambio de
// estado que dispara ese token.
type AdminGrant struct {
	ID        string    `json:"id"`
	Client    string    `json:"client"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (g AdminGrant) expired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}

// AdminGrantStore guarda las sesiones vigentes; borrar una la revoca.
type AdminGrantStore interface {
	Save(ctx context.Context, grant AdminGrant) error
	Find(ctx context.Context, id string) (AdminGrant, bool, error)
	Delete(ctx context.Context, id string) error
}

type memoryAdminGrantStore struct {
	mu     sync.Mutex
	grants map[string]AdminGrant
	now    func() time.Time
}

func NewMemoryAdminGrantStore() AdminGrantStore {
	return &memoryAdminGrantStore{
		grants: make(map[string]AdminGrant),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *memoryAdminGrantStore) Save(_ context.Context, grant AdminGrant) error {
	if grant.ID == "" {
		return errors.New("grant id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, g := range s.grants {
		if g.expired(now) {
			delete(s.grants, id)
		}
	}
	s.grants[grant.ID] = grant
	return nil
}

func (s *memoryAdminGrantStore) Find(_ context.Context, id string) (AdminGrant, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	grant, ok := s.grants[id]
	if !ok {
		return AdminGrant{}, false, nil
	}
	if grant.expired(s.now()) {
		delete(s.grants, id)
		return AdminGrant{}, false, nil
	}
	return grant, true, nil
}

func (s *memoryAdminGrantStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants, id)
	return nil
}

type redisKV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisAdminGrantStore struct {
	client redisKV
	prefix string
	now    func() time.Time
}

// NewRedisAdminGrantStore guarda cada grant como JSON con TTL hasta su
// expiración, así un logout en una réplica vale para todas.
func NewRedisAdminGrantStore(client *redis.Client) AdminGrantStore {
	if client == nil {
		return nil
	}
	return &redisAdminGrantStore{
		client: client,
		prefix: "admin:grant:",
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *redisAdminGrantStore) Save(ctx context.Context, grant AdminGrant) error {
	if grant.ID == "" {
		return errors.New("grant id is required")
	}
	ttl := grant.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("grant %s already expired", grant.ID)
	}
	payload, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("encode grant: %w", err)
	}
	return s.client.Set(ctx, s.prefix+grant.ID, payload, ttl).Err()
}

func (s *redisAdminGrantStore) Find(ctx context.Context, id string) (AdminGrant, bool, error) {
	if id == "" {
		return AdminGrant{}, false, nil
	}
	raw, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return AdminGrant{}, false, nil
	}
	if err != nil {
		return AdminGrant{}, false, err
	}
	var grant AdminGrant
	if err := json.Unmarshal(raw, &grant); err != nil {
		return AdminGrant{}, false, fmt.Errorf("decode grant: %w", err)
	}
	return grant, true, nil
}

func (s *redisAdminGrantStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+id).Err()
}
