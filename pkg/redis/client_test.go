package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestFixedWindowAllowCountsWithinWindow(t *testing.T) {
	ctx := context.Background()
	fake := newFakeCommands()
	client := &Client{cmd: fake}

	for i := int64(1); i <= 2; i++ {
		allowed, count, err := client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, 15*time.Minute)
		require.NoError(t, err)
		require.True(t, allowed)
		require.Equal(t, i, count)
	}

	allowed, count, err := client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, 15*time.Minute)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Equal(t, int64(3), count)

	require.Equal(t, map[string]time.Duration{"storefront:rl:login:ip:1.2.3.4": 15 * time.Minute}, fake.expires,
		"the window is set once, on the first hit")
}

func TestFixedWindowAllowSurfacesExpireFailure(t *testing.T) {
	fake := newFakeCommands()
	fake.expireErr = errors.New("READONLY")
	client := &Client{cmd: fake}

	_, _, err := client.FixedWindowAllow(context.Background(), "login:ip:1.2.3.4", 5, time.Minute)
	require.Error(t, err)
}

func TestIdempotencyRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	client := &Client{cmd: newFakeCommands()}
	key := client.IdempotencyKey("POST|/api/customer/createOrder", "abc")

	ok, err := client.SetNX(ctx, key, "pending", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = client.SetNX(ctx, key, "pending", time.Hour)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, client.Set(ctx, key, "done", time.Hour))
	got, err := client.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "done", got)

	require.NoError(t, client.Del(ctx, key))
	_, err = client.Get(ctx, key)
	require.True(t, IsNil(err))
}

func TestUninitializedClient(t *testing.T) {
	var nilClient *Client
	require.ErrorIs(t, nilClient.Ping(context.Background()), errNotInitialized)
	require.NoError(t, nilClient.Close())

	client := &Client{}
	_, _, err := client.FixedWindowAllow(context.Background(), "k", 1, time.Second)
	require.ErrorIs(t, err, errNotInitialized)
}

func TestKeys(t *testing.T) {
	client := &Client{}
	require.Equal(t, "storefront:idem:scope:id", client.IdempotencyKey("scope", "id"))
	require.Equal(t, "storefront:rl:login:ip", client.RateLimitKey("login:ip"))
	require.Equal(t, "storefront:idem:scope", client.IdempotencyKey(" scope ", ""))
}

func TestOptions(t *testing.T) {
	_, err := options(config.RedisConfig{})
	require.Error(t, err)

	opts, err := options(config.RedisConfig{URL: "redis://localhost:6379/2", DB: 5, PoolSize: 7, DialTimeout: time.Second})
	require.NoError(t, err)
	require.Equal(t, 2, opts.DB, "db from the url wins")
	require.Equal(t, 7, opts.PoolSize)
	require.Equal(t, time.Second, opts.DialTimeout)

	opts, err = options(config.RedisConfig{Address: "cache:6379", Password: "pw", DB: 3})
	require.NoError(t, err)
	require.Equal(t, "cache:6379", opts.Addr)
	require.Equal(t, 3, opts.DB)
}

type fakeCommands struct {
	data      map[string]string
	counters  map[string]int64
	expires   map[string]time.Duration
	expireErr error
}

func newFakeCommands() *fakeCommands {
	return &fakeCommands{
		data:     map[string]string{},
		counters: map[string]int64{},
		expires:  map[string]time.Duration{},
	}
}

func (f *fakeCommands) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeCommands) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeCommands) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCommands) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeCommands) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (f *fakeCommands) Incr(_ context.Context, key string) *redis.IntCmd {
	f.counters[key]++
	return redis.NewIntResult(f.counters[key], nil)
}

func (f *fakeCommands) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	if f.expireErr != nil {
		return redis.NewBoolResult(false, f.expireErr)
	}
	f.expires[key] = ttl
	return redis.NewBoolResult(true, nil)
}
