package ports

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	name string
	err  error
}

func (f *fakeChecker) Name() string                  { return f.name }
func (f *fakeChecker) Check(_ context.Context) error { return f.err }

func TestHealthRegistry_Register(t *testing.T) {
	registry := NewHealthRegistry()

	require.NoError(t, registry.Register(&fakeChecker{name: "postgres"}))
	require.NoError(t, registry.Register(&fakeChecker{name: "discord"}))

	err := registry.Register(&fakeChecker{name: "postgres"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateChecker)
}

func TestHealthRegistry_CheckAll(t *testing.T) {
	t.Run("empty registry is healthy", func(t *testing.T) {
		result := NewHealthRegistry().CheckAll(context.Background())

		assert.Equal(t, HealthStatusHealthy, result.Status)
		assert.Empty(t, result.Checks)
	})

	t.Run("all healthy", func(t *testing.T) {
		registry := NewHealthRegistry()
		require.NoError(t, registry.Register(&fakeChecker{name: "postgres"}))
		require.NoError(t, registry.Register(&fakeChecker{name: "discord"}))

		result := registry.CheckAll(context.Background())

		assert.Equal(t, HealthStatusHealthy, result.Status)
		require.Len(t, result.Checks, 2)
		assert.Equal(t, HealthStatusHealthy, result.Checks["postgres"].Status)
		assert.Equal(t, HealthStatusHealthy, result.Checks["discord"].Status)
	})

	t.Run("one failure marks overall unhealthy", func(t *testing.T) {
		registry := NewHealthRegistry()
		require.NoError(t, registry.Register(&fakeChecker{name: "postgres", err: errors.New("pool exhausted")}))
		require.NoError(t, registry.Register(&fakeChecker{name: "discord"}))

		result := registry.CheckAll(context.Background())

		assert.Equal(t, HealthStatusUnhealthy, result.Status)
		assert.Equal(t, HealthStatusUnhealthy, result.Checks["postgres"].Status)
		assert.Equal(t, "pool exhausted", result.Checks["postgres"].Message)
		assert.Equal(t, HealthStatusHealthy, result.Checks["discord"].Status)
	})
}
