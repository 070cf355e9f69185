// Package pbloomredis keeps binary records of pbloom filters in Redis.
//
// Filters are moved as whole records: bits are never touched inside Redis.
// Update provides a read-modify-write cycle guarded by WATCH, which is one
// way to serialize writers of a filter shared between processes.
package pbloomredis

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/koron-go/pbloom"
)

const redisWatchRetryMax = 5

var (
	// ErrNotFound is returned when no record exists for the key.
	ErrNotFound = errors.New("pbloomredis: record not found")

	// ErrConfigMismatch is returned by Update when the stored filter has
	// another config.
	ErrConfigMismatch = errors.New("pbloomredis: config mismatch")
)

// Store stores a filter record at a key.
type Store struct {
	c      redis.UniversalClient
	key    string
	logger *log.Logger
}

// Option configures Store.
type Option func(*Store)

// WithLogger sets a logger which reports retries of transactions.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a Store for key.
func New(uc redis.UniversalClient, key string, opts ...Option) *Store {
	s := &Store{
		c:   uc,
		key: key,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Key returns the key of the record.
func (s *Store) Key() string {
	return s.key
}

func (s *Store) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

func (s *Store) watchWithRetry(ctx context.Context, fn func(tx *redis.Tx) error) error {
	for retries := redisWatchRetryMax; retries > 0; retries-- {
		err := s.c.Watch(ctx, fn, s.key)
		if err != nil && errors.Is(err, redis.TxFailedErr) {
			s.logf("pbloomredis: transaction on %q conflicted, %d retries left", s.key, retries-1)
			continue
		}
		return err
	}
	return fmt.Errorf("transaction failed %d times: %w", redisWatchRetryMax, redis.TxFailedErr)
}

func get(ctx context.Context, c redis.Cmdable, key string) (*pbloom.Filter, error) {
	b, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("key %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get record with key %q: %w", key, err)
	}
	f, err := pbloom.DecodeBinary(b)
	if err != nil {
		return nil, fmt.Errorf("invalid record with key %q: %w", key, err)
	}
	return f, nil
}

// Save puts the record of f.
func (s *Store) Save(ctx context.Context, f *pbloom.Filter) error {
	b, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = s.c.Set(ctx, s.key, b, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to put record with key %q: %w", s.key, err)
	}
	return nil
}

// Load gets the filter. It returns ErrNotFound when no record exists.
func (s *Store) Load(ctx context.Context) (*pbloom.Filter, error) {
	return get(ctx, s.c, s.key)
}

// Update loads the filter (or creates a new one with cfg when absent),
// applies fn and saves it, in an optimistic transaction. fn may be called
// more than once when other clients modify the record concurrently.
func (s *Store) Update(ctx context.Context, cfg pbloom.Config, fn func(f *pbloom.Filter) error) error {
	return s.watchWithRetry(ctx, func(tx *redis.Tx) error {
		f, err := get(ctx, tx, s.key)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			f, err = pbloom.New(cfg)
			if err != nil {
				return err
			}
		}
		if got := f.Config(); got != cfg {
			return fmt.Errorf("want=%+v got=%+v: %w", cfg, got, ErrConfigMismatch)
		}
		if err := fn(f); err != nil {
			return err
		}
		b, err := f.MarshalBinary()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, b, 0)
			return nil
		})
		return err
	})
}

// Drop deletes the record.
func (s *Store) Drop(ctx context.Context) error {
	_, err := s.c.Del(ctx, s.key).Result()
	if err != nil {
		return fmt.Errorf("failed to delete key %q: %w", s.key, err)
	}
	return nil
}
