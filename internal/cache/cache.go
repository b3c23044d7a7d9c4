// Package cache is a keyed query cache with stale-time expiry, retrying
// loaders, and optimistic mutations that roll back to a snapshot when the
// remote write fails.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Key identifies a cached query hierarchically: resource kind, scope
// (user/detail/public), and the scope's id.
type Key struct {
	Kind  string
	Scope string
	ID    string
}

func (k Key) String() string {
	return k.Kind + "/" + k.Scope + "/" + k.ID
}

// Config parameterizes staleness and the loader retry policy. All knobs are
// explicit so deployments can tune them instead of editing constants.
type Config struct {
	StaleTime   time.Duration
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
	MaxAttempts uint64
}

func (c Config) withDefaults() Config {
	if c.StaleTime <= 0 {
		c.StaleTime = 30 * time.Second
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 200 * time.Millisecond
	}
	if c.Multiplier <= 1 {
		c.Multiplier = 2.0
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 5 * time.Second
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	return c
}

// Store wraps the TTL cache with per-key serialization. Entries older than
// the stale time simply expire, so a hit is always fresh.
type Store struct {
	data *gocache.Cache
	cfg  Config
	log  *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(cfg Config, log *zap.Logger) *Store {
	cfg = cfg.withDefaults()
	return &Store{
		data:  gocache.New(cfg.StaleTime, 2*cfg.StaleTime),
		cfg:   cfg,
		log:   log,
		locks: map[string]*sync.Mutex{},
	}
}

func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Get returns the cached value for key if it is still fresh.
func (s *Store) Get(key Key) (interface{}, bool) {
	return s.data.Get(key.String())
}

// Set stores a value under key with the configured stale time.
func (s *Store) Set(key Key, value interface{}) {
	s.data.Set(key.String(), value, gocache.DefaultExpiration)
}

// Invalidate drops the given keys so the next Fetch refetches.
func (s *Store) Invalidate(keys ...Key) {
	for _, k := range keys {
		s.data.Delete(k.String())
	}
}

// Fetch returns the cached value for key, or runs load with capped
// exponential backoff and jitter, caching the result. Concurrent fetches of
// the same key are serialized so the loader runs once.
func (s *Store) Fetch(ctx context.Context, key Key, load func(context.Context) (interface{}, error)) (interface{}, error) {
	lock := s.keyLock(key.String())
	lock.Lock()
	defer lock.Unlock()

	if v, ok := s.data.Get(key.String()); ok {
		return v, nil
	}

	var out interface{}
	op := func() error {
		v, err := load(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	}

	if err := backoff.Retry(op, s.newBackOff(ctx)); err != nil {
		return nil, err
	}

	s.data.Set(key.String(), out, gocache.DefaultExpiration)
	return out, nil
}

// Mutate applies an optimistic edit to key, then runs commit. On success the
// optimistic entry is replaced by the authoritative record and the given
// sibling keys are invalidated for refetch. On failure the cache is restored
// to the exact pre-mutation state.
//
// apply receives the current cached value (nil, false when the key is cold)
// and returns the optimistic replacement.
func (s *Store) Mutate(
	ctx context.Context,
	key Key,
	apply func(current interface{}, found bool) interface{},
	commit func(context.Context) (interface{}, error),
	invalidate ...Key,
) (interface{}, error) {
	lock := s.keyLock(key.String())
	lock.Lock()
	defer lock.Unlock()

	snapshot, had := s.data.Get(key.String())
	s.data.Set(key.String(), apply(snapshot, had), gocache.DefaultExpiration)

	authoritative, err := commit(ctx)
	if err != nil {
		if had {
			s.data.Set(key.String(), snapshot, gocache.DefaultExpiration)
		} else {
			s.data.Delete(key.String())
		}
		s.log.Warn("mutation rolled back", zap.String("key", key.String()), zap.Error(err))
		return nil, err
	}

	if authoritative != nil {
		s.data.Set(key.String(), authoritative, gocache.DefaultExpiration)
	} else {
		s.data.Delete(key.String())
	}
	s.Invalidate(invalidate...)
	return authoritative, nil
}

func (s *Store) newBackOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.cfg.BaseDelay
	bo.RandomizationFactor = 0.5
	bo.Multiplier = s.cfg.Multiplier
	bo.MaxInterval = s.cfg.MaxDelay
	bo.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(bo, s.cfg.MaxAttempts-1), ctx)
}
