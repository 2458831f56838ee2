package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apierrors "esgpulse/internal/errors"
)

// envPrefix is the prefix for environment variable overrides (ESG_SERVER_PORT,
// ESG_ANALYZER_ENDPOINT, ...).
const envPrefix = "ESG"

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Analyzer AnalyzerConfig `yaml:"analyzer" envconfig:"ANALYZER"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"52428800"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// PathsConfig contains file system paths configuration.
type PathsConfig struct {
	InputDir  string `yaml:"input_dir" envconfig:"INPUT_DIR" default:"data/input" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"data/output" validate:"required"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// AnalyzerConfig selects and configures the document analysis engine.
// Mode "local" analyzes spreadsheets in-process; mode "remote" calls the
// layout-analysis service and requires endpoint and API key.
type AnalyzerConfig struct {
	Mode         string        `yaml:"mode" envconfig:"MODE" default:"local" validate:"oneof=local remote"`
	Endpoint     string        `yaml:"endpoint" envconfig:"ENDPOINT" validate:"omitempty,url"`
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	Model        string        `yaml:"model" envconfig:"MODEL" default:"prebuilt-layout"`
	PollInterval time.Duration `yaml:"poll_interval" envconfig:"POLL_INTERVAL" default:"2s"`
	RateRPS      float64       `yaml:"rate_rps" envconfig:"RATE_RPS" default:"5"`
	RateBurst    int           `yaml:"rate_burst" envconfig:"RATE_BURST" default:"5"`
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variable overrides (in that precedence order, env last).
// The config file path comes from ESG_CONFIG_FILE, defaulting to config.yaml
// in the working directory; a missing file is not an error.
func Load() (*Config, error) {
	// Environment variables plus struct defaults form the base.
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := os.Getenv("ESG_CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}
	if data, err := os.ReadFile(configFile); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
		cfg = mergeConfigs(fileCfg, cfg)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence).
// envconfig has already written a tag default into every field whose env var
// was unset, so a zero check cannot tell env values from defaults; each field
// defers to the file value unless its env var was actually set.
func mergeConfigs(fileCfg, envCfg Config) Config {
	overlay(&envCfg.Server.Port, fileCfg.Server.Port, "SERVER_PORT")
	overlay(&envCfg.Server.ReadTimeout, fileCfg.Server.ReadTimeout, "SERVER_READ_TIMEOUT")
	overlay(&envCfg.Server.WriteTimeout, fileCfg.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT")
	overlay(&envCfg.Server.IdleTimeout, fileCfg.Server.IdleTimeout, "SERVER_IDLE_TIMEOUT")
	overlay(&envCfg.Server.ShutdownTimeout, fileCfg.Server.ShutdownTimeout, "SERVER_SHUTDOWN_TIMEOUT")
	overlay(&envCfg.Server.MaxUploadBytes, fileCfg.Server.MaxUploadBytes, "SERVER_MAX_UPLOAD_BYTES")

	overlay(&envCfg.Logging.Level, fileCfg.Logging.Level, "LOGGING_LEVEL")
	overlay(&envCfg.Logging.Format, fileCfg.Logging.Format, "LOGGING_FORMAT")
	overlay(&envCfg.Logging.Output, fileCfg.Logging.Output, "LOGGING_OUTPUT")
	overlay(&envCfg.Logging.FilePath, fileCfg.Logging.FilePath, "LOGGING_FILE_PATH")

	overlay(&envCfg.Paths.InputDir, fileCfg.Paths.InputDir, "PATHS_INPUT_DIR")
	overlay(&envCfg.Paths.OutputDir, fileCfg.Paths.OutputDir, "PATHS_OUTPUT_DIR")
	overlay(&envCfg.Paths.LogsDir, fileCfg.Paths.LogsDir, "PATHS_LOGS_DIR")

	overlay(&envCfg.Analyzer.Mode, fileCfg.Analyzer.Mode, "ANALYZER_MODE")
	overlay(&envCfg.Analyzer.Endpoint, fileCfg.Analyzer.Endpoint, "ANALYZER_ENDPOINT")
	overlay(&envCfg.Analyzer.APIKey, fileCfg.Analyzer.APIKey, "ANALYZER_API_KEY")
	overlay(&envCfg.Analyzer.Model, fileCfg.Analyzer.Model, "ANALYZER_MODEL")
	overlay(&envCfg.Analyzer.PollInterval, fileCfg.Analyzer.PollInterval, "ANALYZER_POLL_INTERVAL")
	overlay(&envCfg.Analyzer.RateRPS, fileCfg.Analyzer.RateRPS, "ANALYZER_RATE_RPS")
	overlay(&envCfg.Analyzer.RateBurst, fileCfg.Analyzer.RateBurst, "ANALYZER_RATE_BURST")

	return envCfg
}

// overlay replaces dst with the file value when the file set one and the
// field's environment variable is absent.
func overlay[T comparable](dst *T, fileVal T, key string) {
	var zero T
	if fileVal == zero {
		return
	}
	if _, ok := os.LookupEnv(envPrefix + "_" + key); ok {
		return
	}
	*dst = fileVal
}

// Validate checks structural constraints plus the analyzer-mode invariant:
// remote mode without credentials is a configuration error that must abort
// before any processing.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Analyzer.Mode == "remote" && (c.Analyzer.Endpoint == "" || c.Analyzer.APIKey == "") {
		return apierrors.NewConfigurationError(
			"analyzer mode is remote but ESG_ANALYZER_ENDPOINT or ESG_ANALYZER_API_KEY is not set")
	}
	return nil
}

// EnsureDirectories creates the configured directories if they do not exist.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.InputDir, c.Paths.OutputDir, c.Paths.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
