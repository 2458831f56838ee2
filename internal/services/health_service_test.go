package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esgpulse/internal/config"
	"esgpulse/pkg/contracts"
)

func newHealthService(t *testing.T, a *stubAnalyzer, outputDir string) *HealthService {
	t.Helper()
	paths := config.PathsConfig{OutputDir: outputDir}
	return NewHealthService(a, paths, nil)
}

func TestHealthService_HealthCheck_AllHealthy(t *testing.T) {
	hs := newHealthService(t, &stubAnalyzer{}, t.TempDir())

	status := hs.HealthCheck(context.Background())

	assert.Equal(t, "healthy", status.Status)
	assert.False(t, status.Timestamp.IsZero())
	assert.True(t, status.Services.DocumentIntelligence)
	assert.True(t, status.Services.BlobStorage)
}

func TestHealthService_HealthCheck_AnalyzerDown(t *testing.T) {
	hs := newHealthService(t, &stubAnalyzer{pingErr: errors.New("timeout")}, t.TempDir())

	status := hs.HealthCheck(context.Background())

	assert.False(t, status.Services.DocumentIntelligence)
	assert.True(t, status.Services.BlobStorage)
}

func TestHealthService_HealthCheck_NilAnalyzer(t *testing.T) {
	hs := NewHealthService(nil, config.PathsConfig{OutputDir: t.TempDir()}, nil)

	status := hs.HealthCheck(context.Background())

	assert.False(t, status.Services.DocumentIntelligence)
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		hs := newHealthService(t, &stubAnalyzer{}, t.TempDir())

		status, ready := hs.ReadinessCheck(context.Background())
		assert.True(t, ready)
		assert.Equal(t, "ready", status.Status)
	})

	t.Run("not ready when storage unwritable", func(t *testing.T) {
		// A file where the output directory should be makes MkdirAll fail.
		dir := t.TempDir()
		blocked := filepath.Join(dir, "occupied")
		require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

		hs := newHealthService(t, &stubAnalyzer{}, blocked)

		status, ready := hs.ReadinessCheck(context.Background())
		assert.False(t, ready)
		assert.Equal(t, "not_ready", status.Status)
		assert.False(t, status.Services.BlobStorage)
	})
}

func TestHealthService_LivenessAndVersion(t *testing.T) {
	hs := newHealthService(t, &stubAnalyzer{}, t.TempDir())

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live["status"])

	version := hs.Version()
	assert.Equal(t, contracts.Version, version["version"])
	assert.Contains(t, version, "build_time")
	assert.Contains(t, version, "git_commit")
	assert.NotEmpty(t, version["go_version"])
}
