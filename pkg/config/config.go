package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration shared by the pipeline binaries.
type Config struct {
	App     AppConfig     `koanf:"app"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Tracing TracingConfig `koanf:"tracing"`
	Engine  EngineConfig  `koanf:"engine"`
	Matrix  MatrixConfig  `koanf:"matrix"`
	APSP    APSPConfig    `koanf:"apsp"`
	PAM     PAMConfig     `koanf:"pam"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `koanf:"level"`  // debug, info, warn, error
	Format     string `koanf:"format"` // json, text
	Output     string `koanf:"output"` // stdout, stderr, file
	FilePath   string `koanf:"file_path"`
	MaxSize    int    `koanf:"max_size"` // MB
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"` // days
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// EngineConfig holds settings shared by the distributed engines.
type EngineConfig struct {
	// Participants is the number of ranks in the SPMD group.
	Participants int `koanf:"participants"`
}

// MatrixConfig holds settings for the sequence-to-graph stage.
type MatrixConfig struct {
	// Epsilon is the Hamming distance threshold: an edge is emitted only
	// when the distance is strictly below it.
	Epsilon int    `koanf:"epsilon"`
	Output  string `koanf:"output"`
}

// APSPConfig holds settings for the shortest-path stage.
type APSPConfig struct {
	// BlockSize forces the block edge length; 0 selects it from n and the
	// participant count.
	BlockSize int    `koanf:"block_size"`
	Output    string `koanf:"output"`
}

// PAMConfig holds settings for the clustering stage.
type PAMConfig struct {
	K      int    `koanf:"k"`
	Seed   uint64 `koanf:"seed"` // 0 seeds from the wall clock
	Output string `koanf:"output"`
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		errs = append(errs, fmt.Sprintf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port))
	}

	if c.Engine.Participants < 1 {
		errs = append(errs, fmt.Sprintf("engine.participants must be at least 1, got %d", c.Engine.Participants))
	}

	if c.Matrix.Epsilon < 1 {
		errs = append(errs, fmt.Sprintf("matrix.epsilon must be positive, got %d", c.Matrix.Epsilon))
	}

	if c.APSP.BlockSize < 0 {
		errs = append(errs, fmt.Sprintf("apsp.block_size must be non-negative, got %d", c.APSP.BlockSize))
	}

	if c.PAM.K < 1 {
		errs = append(errs, fmt.Sprintf("pam.k must be at least 1, got %d", c.PAM.K))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
