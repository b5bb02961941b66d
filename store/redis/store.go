// Package redis implements store.Store on Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/jacentio/nameservice/internal/keys"
	"github.com/jacentio/nameservice/store"
)

// Store implements store.Store using Redis.
// Values are JSON documents; UpdateRecord uses WATCH/MULTI on the record key.
type Store struct {
	client      *backend.Client
	prefix      string
	maxAttempts int
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithMaxUpdateAttempts bounds the optimistic retries of UpdateRecord.
func WithMaxUpdateAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// New creates a new Redis store connected to address.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromURL creates a new Redis store from a redis:// URL.
func NewFromURL(url string, opts ...Option) (*Store, error) {
	o, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return NewFromClient(backend.NewClient(o), opts...), nil
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client:      client,
		prefix:      "nameservice:",
		maxAttempts: 3,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(k string) string {
	return keys.Namespaced(s.prefix, k)
}

// LoadConfig returns the configuration.
func (s *Store) LoadConfig(ctx context.Context) (store.Config, error) {
	data, err := s.client.Get(ctx, s.key(keys.Config)).Bytes()
	if errors.Is(err, backend.Nil) {
		return store.Config{}, store.ErrConfigNotFound
	}
	if err != nil {
		return store.Config{}, fmt.Errorf("get config: %w", err)
	}

	var cfg store.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return store.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// CreateConfig stores the configuration with SETNX, so only the first call wins.
func (s *Store) CreateConfig(ctx context.Context, cfg store.Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	created, err := s.client.SetNX(ctx, s.key(keys.Config), data, 0).Result()
	if err != nil {
		return fmt.Errorf("setnx config: %w", err)
	}
	if !created {
		return store.ErrConfigExists
	}
	return nil
}

// SaveConfig overwrites the configuration.
func (s *Store) SaveConfig(ctx context.Context, cfg store.Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := s.client.Set(ctx, s.key(keys.Config), data, 0).Err(); err != nil {
		return fmt.Errorf("set config: %w", err)
	}
	return nil
}

// LoadRecord returns the record for name, or store.ErrNotFound.
func (s *Store) LoadRecord(ctx context.Context, name string) (store.NameRecord, error) {
	rec, err := getRecord(ctx, s.client, s.key(keys.Record(name)))
	if err != nil {
		return store.NameRecord{}, err
	}
	if rec == nil {
		return store.NameRecord{}, store.ErrNotFound
	}
	return *rec, nil
}

// SaveRecord overwrites the record for name.
func (s *Store) SaveRecord(ctx context.Context, name string, record store.NameRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record %q: %w", name, err)
	}
	if err := s.client.Set(ctx, s.key(keys.Record(name)), data, 0).Err(); err != nil {
		return fmt.Errorf("set record %q: %w", name, err)
	}
	return nil
}

// UpdateRecord applies fn inside a WATCH/MULTI transaction on the record key.
// If the key changes before EXEC the transaction is retried, so fn may run
// more than once. store.ErrConcurrentModification is returned when every
// attempt loses.
func (s *Store) UpdateRecord(ctx context.Context, name string, fn store.UpdateFunc) error {
	key := s.key(keys.Record(name))

	txf := func(tx *backend.Tx) error {
		current, err := getRecord(ctx, tx, key)
		if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal record %q: %w", name, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, backend.TxFailedErr) {
			continue
		}
		return err
	}
	return store.ErrConcurrentModification
}

// getter is satisfied by both *backend.Client and *backend.Tx.
type getter interface {
	Get(ctx context.Context, key string) *backend.StringCmd
}

// getRecord reads a record through c; nil means absent.
func getRecord(ctx context.Context, c getter, key string) (*store.NameRecord, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	var rec store.NameRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return &rec, nil
}

var _ store.Store = (*Store)(nil)
