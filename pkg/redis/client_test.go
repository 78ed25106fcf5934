package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/nhc-it/assetlend-backend/pkg/config"
)

func TestIdempotencySlotLifecycle(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	slot, err := client.Load(ctx, "k")
	require.NoError(t, err)
	require.True(t, slot.Empty())

	ok, err := client.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = client.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	slot, err = client.Load(ctx, "k")
	require.NoError(t, err)
	require.True(t, slot.Pending)

	require.NoError(t, client.Save(ctx, "k", `{"status":200}`, time.Minute))
	slot, err = client.Load(ctx, "k")
	require.NoError(t, err)
	require.False(t, slot.Pending)
	require.Equal(t, `{"status":200}`, slot.Record)

	ok, err = client.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, client.Release(ctx, "k"))
	slot, err = client.Load(ctx, "k")
	require.NoError(t, err)
	require.True(t, slot.Empty())
}

func TestSaveRejectsEmptyRecord(t *testing.T) {
	client := &Client{store: newMockCmdable()}
	require.Error(t, client.Save(context.Background(), "k", "", time.Minute))
	require.Error(t, client.Save(context.Background(), "k", reservedMarker, time.Minute))
}

func TestUninitializedClient(t *testing.T) {
	ctx := context.Background()
	client := &Client{}

	require.ErrorIs(t, client.Ping(ctx), errNotInitialized)
	_, err := client.Load(ctx, "k")
	require.ErrorIs(t, err, errNotInitialized)
	_, err = client.Reserve(ctx, "k", time.Minute)
	require.ErrorIs(t, err, errNotInitialized)
	require.NoError(t, client.Close())
}

func TestIdempotencyKey(t *testing.T) {
	client := &Client{}
	require.Equal(t, "al:idempotency:approve:abc", client.IdempotencyKey("approve", "abc"))
	require.Equal(t, "al:idempotency:abc", client.IdempotencyKey(" ", "abc"))
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{
		URL:         "redis://localhost:6379/2",
		PoolSize:    7,
		DialTimeout: 3 * time.Second,
	})
	require.NoError(t, err)
	require.Equal(t, "localhost:6379", opts.Addr)
	require.Equal(t, 2, opts.DB)
	require.Equal(t, 7, opts.PoolSize)
	require.Equal(t, 3*time.Second, opts.DialTimeout)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6380", DB: 4})
	require.NoError(t, err)
	require.Equal(t, "cache:6380", opts.Addr)
	require.Equal(t, 4, opts.DB)
}

type mockCmdable struct {
	data map[string]string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			n++
		}
		delete(m.data, key)
	}
	return redis.NewIntResult(n, nil)
}
