package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	DefaultPrefix = "retro-store:state:"
	maxRetries    = 5
)

// Store persists one State per user and applies actions to it.
type Store interface {
	Load(ctx context.Context, username string) (State, error)
	Dispatch(ctx context.Context, username string, action Action) (State, Notice, error)
}

// MemoryStore keeps states in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

func (m *MemoryStore) Load(_ context.Context, username string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[username].clone(), nil
}

func (m *MemoryStore) Dispatch(_ context.Context, username string, action Action) (State, Notice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, notice, err := Reduce(m.states[username], action)
	if err != nil {
		return next.clone(), notice, err
	}
	if next.Empty() {
		delete(m.states, username)
	} else {
		m.states[username] = next
	}
	return next.clone(), notice, nil
}

// RedisStore keeps states as JSON documents in Redis. Dispatch runs the
// reducer inside a WATCH transaction so concurrent requests of one user do
// not overwrite each other.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

type RedisOption func(*RedisStore)

func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		ttl:    7 * 24 * time.Hour,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(username string) string {
	return s.prefix + username
}

func decode(val string, err error) (State, error) {
	if errors.Is(err, redis.Nil) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read state: %w", err)
	}
	var state State
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return State{}, fmt.Errorf("decode state: %w", err)
	}
	return state, nil
}

func (s *RedisStore) Load(ctx context.Context, username string) (State, error) {
	return decode(s.client.Get(ctx, s.key(username)).Result())
}

func (s *RedisStore) Dispatch(ctx context.Context, username string, action Action) (State, Notice, error) {
	key := s.key(username)

	var (
		next      State
		notice    Notice
		reduceErr error
	)
	txf := func(tx *redis.Tx) error {
		current, err := decode(tx.Get(ctx, key).Result())
		if err != nil {
			return err
		}
		next, notice, reduceErr = Reduce(current, action)
		if reduceErr != nil {
			return nil
		}

		var data []byte
		if !next.Empty() {
			if data, err = json.Marshal(next); err != nil {
				return fmt.Errorf("encode state: %w", err)
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if data == nil {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return State{}, Notice{}, err
		}
		return next, notice, reduceErr
	}
	return State{}, Notice{}, fmt.Errorf("dispatch %s: too much contention on %s", action.Name(), key)
}
