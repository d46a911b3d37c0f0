package cache

import (
	"context"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)
	defer s.Close()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte("hello")
	require.NoError(t, s.Set(ctx, "k", value, 0))
	value[0] = 'X'

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", string(got), "stored value is a copy")

	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)
	defer s.Close()

	now := time.Date(2026, time.March, 17, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "short", []byte("1"), time.Minute))
	require.NoError(t, s.Set(ctx, "forever", []byte("2"), 0))
	assert.Equal(t, 2, s.Len())

	now = now.Add(time.Minute)
	_, ok, _ := s.Get(ctx, "short")
	assert.False(t, ok, "expires at the deadline")
	_, ok, _ = s.Get(ctx, "forever")
	assert.True(t, ok)

	s.sweep()
	s.mu.RLock()
	assert.Len(t, s.entries, 1)
	s.mu.RUnlock()
}

func TestMemoryStore_CloseStopsSweeper(t *testing.T) {
	s := NewMemoryStore(time.Millisecond)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")
}

func TestNewStore_FallsBackToMemory(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		s := NewStore(context.Background(), config.RedisConfig{}, zap.NewNop())
		defer s.Close()
		assert.IsType(t, &MemoryStore{}, s)
	})

	t.Run("unreachable", func(t *testing.T) {
		cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}
		s := NewStore(context.Background(), cfg, zap.NewNop())
		defer s.Close()
		assert.IsType(t, &MemoryStore{}, s)
	})
}
