package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/models"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/storage"
)

// SessionStore keeps one session record per id. Find returns (nil, nil)
// for unknown or expired sessions.
type SessionStore interface {
	Find(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type RedisSessionRepository struct {
	redis *storage.RedisClient
	ttl   time.Duration
}

func NewRedisSessionRepository(redis *storage.RedisClient, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{redis: redis, ttl: ttl}
}

func sessionKey(id uuid.UUID) string {
	return fmt.Sprintf("calc:session:%s", id)
}

func (r *RedisSessionRepository) Find(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	data, err := r.redis.Get(ctx, sessionKey(id))
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}

	return &session, nil
}

// Save writes the session and restarts its TTL
func (r *RedisSessionRepository) Save(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}

	return r.redis.Set(ctx, sessionKey(session.ID), data, r.ttl)
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.redis.Del(ctx, sessionKey(id))
}

// MemorySessionRepository holds encoded sessions in process memory, for
// single-instance deployments without redis.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[uuid.UUID]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *MemorySessionRepository) Find(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	if ok && !r.now().Before(entry.expiresAt) {
		delete(r.sessions, id)
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		return nil, nil
	}

	var session models.Session
	if err := json.Unmarshal(entry.data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &session, nil
}

func (r *MemorySessionRepository) Save(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = memoryEntry{data: data, expiresAt: r.now().Add(r.ttl)}
	return nil
}

func (r *MemorySessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// Sweep drops expired sessions and reports how many were removed
func (r *MemorySessionRepository) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, entry := range r.sessions {
		if !now.Before(entry.expiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
