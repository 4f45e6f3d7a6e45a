package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var Log *slog.Logger

// Config holds logger settings.
type Config struct {
	Level      string
	Format     string // json, text
	Output     string // stdout, stderr, file
	FilePath   string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// Init initializes the logger with a level and default settings.
func Init(level string) {
	InitWithConfig(Config{
		Level:  level,
		Format: "text",
		Output: "stderr",
	})
}

// InitWithConfig initializes the logger from a full configuration.
func InitWithConfig(cfg Config) {
	var lvl slog.Level
	switch cfg.Level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	var writer io.Writer
	switch cfg.Output {
	case "stdout":
		writer = os.Stdout
	case "file":
		if cfg.FilePath == "" {
			cfg.FilePath = "logs/seqclust.log"
		}
		dir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			writer = os.Stderr
		} else {
			// lumberjack handles rotation
			writer = &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			}
		}
	default:
		// Run summaries own stdout; diagnostics go to stderr.
		writer = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(writer, opts)
	default:
		handler = slog.NewTextHandler(writer, opts)
	}

	Log = slog.New(handler)
}

// WithStage returns a logger annotated with the pipeline stage name.
func WithStage(stage string) *slog.Logger {
	return Log.With("stage", stage)
}

// WithRank returns a logger annotated with a participant rank.
func WithRank(rank int) *slog.Logger {
	return Log.With("rank", rank)
}

// WithRunID returns a logger annotated with the run identifier.
func WithRunID(runID string) *slog.Logger {
	return Log.With("run_id", runID)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Log.Debug(msg, args...)
}

// Info logs an info message.
func Info(msg string, args ...any) {
	Log.Info(msg, args...)
}

// Warn logs a warning.
func Warn(msg string, args ...any) {
	Log.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Log.Error(msg, args...)
}

// Fatal logs an error message and terminates the process.
func Fatal(msg string, args ...any) {
	Log.Error(msg, args...)
	os.Exit(1)
}
