package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySummaryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss returns nil without error", func(t *testing.T) {
		c := NewMemorySummaryCache()

		value, err := c.Get(ctx, "absent")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		c := NewMemorySummaryCache()

		require.NoError(t, c.Set(ctx, "key", []byte(`{"total":3}`), time.Minute))

		value, err := c.Get(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"total":3}`), value)
	})

	t.Run("expired entry reads as a miss", func(t *testing.T) {
		c := NewMemorySummaryCache()

		require.NoError(t, c.Set(ctx, "key", []byte("stale"), -time.Second))

		value, err := c.Get(ctx, "key")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("set overwrites previous value", func(t *testing.T) {
		c := NewMemorySummaryCache()

		require.NoError(t, c.Set(ctx, "key", []byte("old"), time.Minute))
		require.NoError(t, c.Set(ctx, "key", []byte("new"), time.Minute))

		value, err := c.Get(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), value)
	})
}
