package redis

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/greenblatt/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestStore_Disabled(t *testing.T) {
	store := NewStore(disabledClient(t), "test")
	ctx := context.Background()

	// When Redis is disabled, store operations are no-ops
	require.NoError(t, store.Set(ctx, "key", []byte("v"), time.Minute))

	data, found, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)

	assert.NoError(t, store.Delete(ctx, "key"))
}

func TestStore_FullKey(t *testing.T) {
	assert.Equal(t, "greenblatt:buffett:metrics:AAPL", NewStore(nil, "greenblatt").fullKey("buffett:metrics:AAPL"))
	assert.Equal(t, "buffett:metrics:AAPL", NewStore(nil, "").fullKey("buffett:metrics:AAPL"))
}

func TestStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set, skipping integration test")
	}

	client, err := Dial(&goredis.Options{Addr: addr})
	require.NoError(t, err)
	defer client.Close()

	store := NewStore(client, "greenblatt-test")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte(`{"a":1}`), time.Minute))
	data, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"a":1}`, string(data))

	require.NoError(t, store.Delete(ctx, "k"))
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}
