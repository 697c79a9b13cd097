package basket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists one ledger per session id. Load returns an empty ledger
// for unknown sessions. Save receives the ledger's remaining lifetime so
// stores with native expiry can drop abandoned ledgers on their own;
// expiry itself is always decided by the caller against its clock.
type Store interface {
	Load(ctx context.Context, session string) (Ledger, error)
	Save(ctx context.Context, session string, l Ledger, ttl time.Duration) error
	Delete(ctx context.Context, session string) error
}

// RedisStore keeps ledgers as JSON strings under "<prefix>:<session>".
type RedisStore struct {
	rdb    redis.Cmdable
	prefix string
}

// NewRedisStore returns a Store backed by rdb.
func NewRedisStore(rdb redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "basket"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(session string) string { return s.prefix + ":" + session }

func (s *RedisStore) Load(ctx context.Context, session string) (Ledger, error) {
	raw, err := s.rdb.Get(ctx, s.key(session)).Result()
	if errors.Is(err, redis.Nil) {
		return Ledger{}, nil
	}
	if err != nil {
		return Ledger{}, fmt.Errorf("basket: load %s: %w", session, err)
	}
	var l Ledger
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		return Ledger{}, fmt.Errorf("basket: decode %s: %w", session, err)
	}
	return l, nil
}

func (s *RedisStore) Save(ctx context.Context, session string, l Ledger, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Delete(ctx, session)
	}
	payload, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("basket: encode %s: %w", session, err)
	}
	if err := s.rdb.Set(ctx, s.key(session), string(payload), ttl).Err(); err != nil {
		return fmt.Errorf("basket: save %s: %w", session, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, session string) error {
	if err := s.rdb.Del(ctx, s.key(session)).Err(); err != nil {
		return fmt.Errorf("basket: delete %s: %w", session, err)
	}
	return nil
}

// MemoryStore keeps ledgers in process memory. It is used when Redis is
// unavailable and in tests.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, session string) (Ledger, error) {
	s.mu.Lock()
	raw, ok := s.data[session]
	s.mu.Unlock()
	if !ok {
		return Ledger{}, nil
	}
	var l Ledger
	if err := json.Unmarshal(raw, &l); err != nil {
		return Ledger{}, fmt.Errorf("basket: decode %s: %w", session, err)
	}
	return l, nil
}

func (s *MemoryStore) Save(ctx context.Context, session string, l Ledger, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Delete(ctx, session)
	}
	// encoded so callers never share the holds map with the store
	raw, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("basket: encode %s: %w", session, err)
	}
	s.mu.Lock()
	s.data[session] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, session string) error {
	s.mu.Lock()
	delete(s.data, session)
	s.mu.Unlock()
	return nil
}
