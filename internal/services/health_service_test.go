package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordersdash/internal/shared/testutil"
)

func TestHealthService_HealthCheck(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	hs := NewHealthService("1.2.3", "2025-09-01", "abc123", newServiceEnv(t).cfg.Sources, nil, nil, logger)

	status := hs.HealthCheck(context.Background())

	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.Contains(t, status.Runtime, "go_version")
	assert.True(t, handler.ContainsMessage("HealthService initialized"))
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		env := newServiceEnv(t)
		logger, _ := testutil.NewTestLogger(t)
		hs := NewHealthService("1.2.3", "", "", env.cfg.Sources, env.svc, env.cache, logger)

		status := hs.ReadinessCheck(context.Background())

		assert.Equal(t, "ready", status.Status)
		datasets, ok := status.Services["datasets"].(ServiceHealth)
		require.True(t, ok)
		assert.Equal(t, "0 uploaded datasets, 0 cached sources", datasets.Message)
	})

	t.Run("missing source file", func(t *testing.T) {
		env := newServiceEnv(t)
		sources := env.cfg.Sources
		sources.SecondaryPath = filepath.Join(t.TempDir(), "missing.xlsx")
		logger, handler := testutil.NewTestLogger(t)
		hs := NewHealthService("1.2.3", "", "", sources, env.svc, env.cache, logger)

		status := hs.ReadinessCheck(context.Background())

		assert.Equal(t, "not_ready", status.Status)
		secondary := status.Services["secondary_source"].(ServiceHealth)
		assert.Equal(t, "not_ready", secondary.Status)
		assert.True(t, handler.ContainsMessage("not ready"))
	})

	t.Run("no report service", func(t *testing.T) {
		env := newServiceEnv(t)
		hs := NewHealthService("1.2.3", "", "", env.cfg.Sources, nil, nil, nil)

		assert.Equal(t, "not_ready", hs.ReadinessCheck(context.Background()).Status)
	})
}

func TestHealthService_Version(t *testing.T) {
	hs := NewHealthService("1.2.3", "", "abc123", newServiceEnv(t).cfg.Sources, nil, nil, nil)

	info := hs.Version()

	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, "abc123", info["commit"])
	assert.NotContains(t, info, "build_time")
}
