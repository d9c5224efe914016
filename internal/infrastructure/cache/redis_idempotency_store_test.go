package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newRedisStore(t *testing.T) *RedisIdempotencyStore {
	t.Helper()
	if testing.Short() {
		t.Skip("requiere Docker")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: addr})
	store := NewRedisIdempotencyStoreWithClient(client, "test:")
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Ping(ctx))
	return store
}

func TestRedisIdempotencyStore_Lifecycle(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	_, fresh, err := store.Begin(ctx, "c1:key", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)

	result, fresh, err := store.Begin(ctx, "c1:key", time.Minute)
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Empty(t, result, "en curso")

	require.NoError(t, store.Complete(ctx, "c1:key", "transfer-9", time.Minute))
	result, fresh, err = store.Begin(ctx, "c1:key", time.Minute)
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Equal(t, "transfer-9", result)

	require.NoError(t, store.Abort(ctx, "c1:key"))
	_, fresh, err = store.Begin(ctx, "c1:key", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)
}
