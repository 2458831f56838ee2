package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "esgpulse/internal/errors"
)

func loadFrom(t *testing.T, yamlContent string, env map[string]string) (*Config, error) {
	t.Helper()

	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	if yamlContent != "" {
		require.NoError(t, os.WriteFile(file, []byte(yamlContent), 0o644))
	}
	t.Setenv("ESG_CONFIG_FILE", file)
	for k, v := range env {
		t.Setenv(k, v)
	}
	return Load()
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadFrom(t, "", nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(52428800), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "data/input", cfg.Paths.InputDir)
	assert.Equal(t, "data/output", cfg.Paths.OutputDir)
	assert.Equal(t, "local", cfg.Analyzer.Mode)
	assert.Equal(t, "prebuilt-layout", cfg.Analyzer.Model)
	assert.Equal(t, 2*time.Second, cfg.Analyzer.PollInterval)
}

func TestLoad_YAMLFile(t *testing.T) {
	cfg, err := loadFrom(t, `
server:
  port: 9090
logging:
  level: debug
paths:
  input_dir: /tmp/in
  output_dir: /tmp/out
`, nil)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/in", cfg.Paths.InputDir)
	// Unset fields still get their defaults.
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	cfg, err := loadFrom(t, "server:\n  port: 9090\n", map[string]string{
		"ESG_SERVER_PORT":   "7070",
		"ESG_LOGGING_LEVEL": "warn",
	})
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_EnvSetToDefaultStillBeatsFile(t *testing.T) {
	// An env var explicitly set to the tag default must not be mistaken
	// for an unset one and lose to the file value.
	cfg, err := loadFrom(t, "server:\n  port: 9090\n", map[string]string{
		"ESG_SERVER_PORT": "8080",
	})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_FileValueSurvivesValidation(t *testing.T) {
	// A file-only value must reach Validate instead of being replaced by
	// the tag default first.
	_, err := loadFrom(t, "logging:\n  level: silent\n", nil)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad log level", yaml: "logging:\n  level: loud\n"},
		{name: "bad log format", yaml: "logging:\n  format: xml\n"},
		{name: "bad analyzer mode", yaml: "analyzer:\n  mode: hybrid\n"},
		{name: "port out of range", yaml: "server:\n  port: 70000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadFrom(t, tt.yaml, nil)
			assert.Error(t, err)
		})
	}
}

func TestValidate_RemoteModeRequiresCredentials(t *testing.T) {
	_, err := loadFrom(t, "analyzer:\n  mode: remote\n", nil)
	require.Error(t, err)
	var cfgErr *apierrors.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)

	cfg, err := loadFrom(t, "analyzer:\n  mode: remote\n", map[string]string{
		"ESG_ANALYZER_ENDPOINT": "https://layout.example.com",
		"ESG_ANALYZER_API_KEY":  "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "remote", cfg.Analyzer.Mode)
	assert.Equal(t, "https://layout.example.com", cfg.Analyzer.Endpoint)
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{}
	cfg.Paths.InputDir = filepath.Join(dir, "in")
	cfg.Paths.OutputDir = filepath.Join(dir, "out")

	require.NoError(t, cfg.EnsureDirectories())

	for _, d := range []string{cfg.Paths.InputDir, cfg.Paths.OutputDir} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
