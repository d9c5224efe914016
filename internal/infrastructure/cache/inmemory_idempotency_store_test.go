package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_Begin(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("reserva una clave nueva", func(t *testing.T) {
		result, fresh, err := store.Begin(ctx, "k-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, fresh)
		assert.Empty(t, result)
	})

	t.Run("una clave en curso no es nueva y no tiene resultado", func(t *testing.T) {
		_, fresh, err := store.Begin(ctx, "k-2", time.Hour)
		require.NoError(t, err)
		require.True(t, fresh)

		result, fresh, err := store.Begin(ctx, "k-2", time.Hour)
		require.NoError(t, err)
		assert.False(t, fresh)
		assert.Empty(t, result)
	})

	t.Run("una clave completada devuelve el resultado", func(t *testing.T) {
		_, _, err := store.Begin(ctx, "k-3", time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Complete(ctx, "k-3", "transfer-1", time.Hour))

		result, fresh, err := store.Begin(ctx, "k-3", time.Hour)
		require.NoError(t, err)
		assert.False(t, fresh)
		assert.Equal(t, "transfer-1", result)
	})

	t.Run("abort libera la clave", func(t *testing.T) {
		_, _, err := store.Begin(ctx, "k-4", time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Abort(ctx, "k-4"))

		_, fresh, err := store.Begin(ctx, "k-4", time.Hour)
		require.NoError(t, err)
		assert.True(t, fresh)
	})

	t.Run("una clave vencida se puede reservar otra vez", func(t *testing.T) {
		_, _, err := store.Begin(ctx, "k-5", 10*time.Millisecond)
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)

		_, fresh, err := store.Begin(ctx, "k-5", time.Hour)
		require.NoError(t, err)
		assert.True(t, fresh)
	})
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	_, _, err := store.Begin(ctx, "short", 10*time.Millisecond)
	require.NoError(t, err)
	_, _, err = store.Begin(ctx, "long", time.Hour)
	require.NoError(t, err)
	require.Equal(t, 2, store.Size())

	time.Sleep(20 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
