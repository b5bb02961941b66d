package redis_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/nameservice/coin"
	"github.com/jacentio/nameservice/store"
	"github.com/jacentio/nameservice/store/redis"
	"github.com/jacentio/nameservice/store/storetest"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		_, client := newClient(t)
		return redis.NewFromClient(client)
	})
}

func TestRedisStore_KeyLayout(t *testing.T) {
	mr, client := newClient(t)
	s := redis.NewFromClient(client, redis.WithPrefix("test:"))
	ctx := context.Background()

	price := coin.New(100, "earth")
	require.NoError(t, s.SaveConfig(ctx, store.Config{RegistrationPrice: &price}))
	require.NoError(t, s.SaveRecord(ctx, "alice", store.NameRecord{Owner: "addr-a"}))

	cfg, err := mr.Get("test:config")
	require.NoError(t, err)
	assert.JSONEq(t, `{"registration_price":{"denom":"earth","amount":"100"}}`, cfg)

	rec, err := mr.Get("test:nameresolver#alice")
	require.NoError(t, err)
	assert.JSONEq(t, `{"owner":"addr-a"}`, rec)
}

func TestRedisStore_CreateConfig_KeepsFirstValue(t *testing.T) {
	mr, client := newClient(t)
	s := redis.NewFromClient(client)
	ctx := context.Background()

	price := coin.New(100, "earth")
	require.NoError(t, s.CreateConfig(ctx, store.Config{RegistrationPrice: &price}))

	err := s.CreateConfig(ctx, store.Config{})
	assert.ErrorIs(t, err, store.ErrConfigExists)

	raw, err := mr.Get("nameservice:config")
	require.NoError(t, err)
	assert.JSONEq(t, `{"registration_price":{"denom":"earth","amount":"100"}}`, raw)
}

func TestRedisStore_UpdateRecord_RetriesWhenKeyChanges(t *testing.T) {
	mr, client := newClient(t)
	s := redis.NewFromClient(client)
	ctx := context.Background()

	require.NoError(t, s.SaveRecord(ctx, "alice", store.NameRecord{Owner: "addr-a"}))

	// A second connection writes the watched key during the first attempt.
	other := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer other.Close()

	var seen []string
	err := s.UpdateRecord(ctx, "alice", func(current *store.NameRecord) (store.NameRecord, error) {
		seen = append(seen, current.Owner)
		if len(seen) == 1 {
			require.NoError(t, other.Set(ctx, "nameservice:nameresolver#alice", `{"owner":"addr-z"}`, 0).Err())
		}
		return store.NameRecord{Owner: "addr-b"}, nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"addr-a", "addr-z"}, seen)
	got, err := s.LoadRecord(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "addr-b", got.Owner)
}

func TestRedisStore_UpdateRecord_GivesUp(t *testing.T) {
	mr, client := newClient(t)
	s := redis.NewFromClient(client, redis.WithMaxUpdateAttempts(2))
	ctx := context.Background()

	require.NoError(t, s.SaveRecord(ctx, "alice", store.NameRecord{Owner: "addr-a"}))

	other := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer other.Close()

	calls := 0
	err := s.UpdateRecord(ctx, "alice", func(*store.NameRecord) (store.NameRecord, error) {
		calls++
		require.NoError(t, other.Set(ctx, "nameservice:nameresolver#alice", `{"owner":"addr-z"}`, 0).Err())
		return store.NameRecord{Owner: "addr-b"}, nil
	})
	assert.ErrorIs(t, err, store.ErrConcurrentModification)
	assert.Equal(t, 2, calls)

	got, err := s.LoadRecord(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "addr-z", got.Owner)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, client := newClient(t)
	s := redis.NewFromClient(client)
	ctx := context.Background()

	require.NoError(t, mr.Set("nameservice:nameresolver#alice", "not-json"))

	_, err := s.LoadRecord(ctx, "alice")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, store.ErrNotFound))
}

func TestRedisStore_ServerDown(t *testing.T) {
	mr, client := newClient(t)
	s := redis.NewFromClient(client)
	ctx := context.Background()

	mr.Close()

	_, err := s.LoadConfig(ctx)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, store.ErrConfigNotFound))
}

func TestNewFromURL(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := redis.NewFromURL("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.LoadConfig(context.Background())
	assert.ErrorIs(t, err, store.ErrConfigNotFound)

	_, err = redis.NewFromURL("://bad")
	assert.Error(t, err)
}
