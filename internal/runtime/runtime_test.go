package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/leadlens/config"
)

func TestControllerAcquireRelease(t *testing.T) {
	limits := NewLimits(1, 1)
	controller := NewController(limits)

	require.Equal(t, limits, controller.LimitsSnapshot())

	require.NoError(t, controller.AcquireRequest(context.Background()))
	controller.ReleaseRequest()

	require.NoError(t, controller.AcquireDataset(context.Background()))
	require.False(t, controller.TryAcquireDataset())
	controller.ReleaseDataset()
	require.True(t, controller.TryAcquireDataset())
	controller.ReleaseDataset()
}

func TestNewLimits_Fallbacks(t *testing.T) {
	limits := NewLimits(0, -1)
	require.Equal(t, config.DefaultMaxConcurrentRequests, limits.MaxConcurrentRequests)
	require.Equal(t, config.DefaultMaxOpenDatasets, limits.MaxOpenDatasets)
	require.Equal(t, config.DefaultPageSize, limits.PageSize)
}

func TestClampPageSize(t *testing.T) {
	limits := NewLimits(1, 1)
	require.Equal(t, config.DefaultPageSize, limits.ClampPageSize(0))
	require.Equal(t, 7, limits.ClampPageSize(7))
	require.Equal(t, config.DefaultMaxPageSize, limits.ClampPageSize(1_000_000))
}
