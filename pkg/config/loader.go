package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "SEQCLUST_"
	configEnvVar = "CONFIG_PATH"
)

// Loader loads configuration from multiple sources.
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
}

// NewLoader creates a configuration loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k: koanf.New("."),
		configPaths: []string{
			"config.yaml",
			"config/config.yaml",
			"/etc/seqclust/config.yaml",
		},
		envPrefix: envPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithConfigPaths sets the config file search paths.
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.configPaths = paths
	}
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// Load loads the configuration with priority:
// 1. Defaults (lowest)
// 2. Config file (yaml)
// 3. Environment variables (highest)
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDefaults(); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// The config file is optional.
	_ = l.loadConfigFile()

	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadDefaults loads the default values. Epsilon, k and the participant
// count mirror the defaults the pipeline has always run with.
func (l *Loader) loadDefaults() error {
	defaults := map[string]any{
		// App
		"app.name":        "seqclust",
		"app.version":     "1.0.0",
		"app.environment": "development",
		"app.debug":       false,

		// Log
		"log.level":       "info",
		"log.format":      "text",
		"log.output":      "stderr",
		"log.max_size":    100,
		"log.max_backups": 3,
		"log.max_age":     7,
		"log.compress":    true,

		// Metrics
		"metrics.enabled":   false,
		"metrics.port":      9090,
		"metrics.path":      "/metrics",
		"metrics.namespace": "seqclust",
		"metrics.subsystem": "",

		// Tracing
		"tracing.enabled":      false,
		"tracing.endpoint":     "localhost:4317",
		"tracing.service_name": "seqclust",
		"tracing.sample_rate":  0.1,

		// Engine
		"engine.participants": 4,

		// Stage: sequences -> weighted graph
		"matrix.epsilon": 70,
		"matrix.output":  "sequences.dot",

		// Stage: graph -> distance matrix
		"apsp.block_size": 0,
		"apsp.output":     "distances.txt",

		// Stage: distance matrix -> clusters
		"pam.k":      4,
		"pam.seed":   uint64(0),
		"pam.output": "clusters.txt",
	}

	return l.k.Load(confmap.Provider(defaults, "."), nil)
}

// loadConfigFile loads the configuration from a file.
func (l *Loader) loadConfigFile() error {
	if configPath := os.Getenv(configEnvVar); configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return l.k.Load(file.Provider(configPath), yaml.Parser())
		}
	}

	for _, path := range l.configPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}

		if _, err := os.Stat(absPath); err == nil {
			return l.k.Load(file.Provider(absPath), yaml.Parser())
		}
	}

	return fmt.Errorf("config file not found in paths: %v", l.configPaths)
}

// loadEnv loads configuration overrides from environment variables.
// SEQCLUST_PAM_K=6 maps to pam.k; keys with underscores in their own name
// go through envKeyMappings.
func (l *Loader) loadEnv() error {
	return l.k.Load(env.ProviderWithValue(l.envPrefix, ".", func(envKey string, value string) (string, interface{}) {
		key := strings.ToLower(strings.TrimPrefix(envKey, l.envPrefix))

		if mappedKey, ok := envKeyMappings[key]; ok {
			key = mappedKey
		} else {
			key = strings.ReplaceAll(key, "_", ".")
		}

		return key, value
	}), nil)
}

// envKeyMappings maps environment variable suffixes onto config keys for the
// fields whose names themselves contain underscores.
var envKeyMappings = map[string]string{
	"log_level":       "log.level",
	"log_format":      "log.format",
	"log_output":      "log.output",
	"log_file_path":   "log.file_path",
	"log_max_size":    "log.max_size",
	"log_max_backups": "log.max_backups",
	"log_max_age":     "log.max_age",
	"log_compress":    "log.compress",

	"metrics_enabled":   "metrics.enabled",
	"metrics_port":      "metrics.port",
	"metrics_path":      "metrics.path",
	"metrics_namespace": "metrics.namespace",
	"metrics_subsystem": "metrics.subsystem",

	"tracing_enabled":      "tracing.enabled",
	"tracing_endpoint":     "tracing.endpoint",
	"tracing_service_name": "tracing.service_name",
	"tracing_sample_rate":  "tracing.sample_rate",

	"engine_participants": "engine.participants",

	"matrix_epsilon": "matrix.epsilon",
	"matrix_output":  "matrix.output",

	"apsp_block_size": "apsp.block_size",
	"apsp_output":     "apsp.output",

	"pam_k":      "pam.k",
	"pam_seed":   "pam.seed",
	"pam_output": "pam.output",
}

// MustLoad loads the configuration or panics.
func MustLoad(opts ...LoaderOption) *Config {
	cfg, err := NewLoader(opts...).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Load loads the configuration with default loader settings.
func Load() (*Config, error) {
	return NewLoader().Load()
}
