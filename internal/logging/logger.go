package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps slog with rotation and reload support
type Logger struct {
	config *Config
	output io.Writer // overrides console output when set
	file   io.WriteCloser
	logger *slog.Logger
}

// Config holds logging configuration
type Config struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	File       string `yaml:"file"`        // log file path (optional)
	MaxSize    int    `yaml:"max_size"`    // megabytes
	MaxBackups int    `yaml:"max_backups"` // number of old log files to keep
	MaxAge     int    `yaml:"max_age"`     // days
	Console    bool   `yaml:"console"`     // also log to stderr
	JSON       bool   `yaml:"json"`        // JSON format instead of text
}

// DefaultConfig logs info and above to the console
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
		Console:    true,
	}
}

var (
	globalMu     sync.Mutex
	globalLogger *Logger
)

// Initialize sets up the global logger
func Initialize(cfg *Config) error {
	return initialize(cfg, nil)
}

// InitializeWithWriter sets up the global logger writing console output to w
func InitializeWithWriter(cfg *Config, w io.Writer) error {
	return initialize(cfg, w)
}

func initialize(cfg *Config, w io.Writer) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger != nil {
		_ = globalLogger.Close()
	}
	globalLogger = &Logger{config: cfg, output: w}
	return globalLogger.configure()
}

// GetLogger returns the global logger, creating a console logger on first use
func GetLogger() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger == nil {
		globalLogger = &Logger{config: DefaultConfig()}
		_ = globalLogger.configure()
	}
	return globalLogger
}

func (l *Logger) configure() error {
	level := parseLevel(l.config.Level)

	var writers []io.Writer
	if l.output != nil {
		writers = append(writers, l.output)
	} else if l.config.Console {
		writers = append(writers, os.Stderr)
	}

	if l.config.File != "" {
		if l.file != nil {
			l.file.Close()
		}
		rotator := &lumberjack.Logger{
			Filename:   l.config.File,
			MaxSize:    l.config.MaxSize, // megabytes
			MaxBackups: l.config.MaxBackups,
			MaxAge:     l.config.MaxAge, // days
			Compress:   true,
		}
		l.file = rotator
		writers = append(writers, rotator)
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stderr
	case 1:
		writer = writers[0]
	default:
		writer = io.MultiWriter(writers...)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if l.config.JSON {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	l.logger = slog.New(handler)
	slog.SetDefault(l.logger)
	return nil
}

func parseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Reload reconfigures the logger with new settings
func (l *Logger) Reload(cfg *Config) error {
	l.config = cfg
	return l.configure()
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Underlying returns the *slog.Logger
func (l *Logger) Underlying() *slog.Logger {
	return l.logger
}

func (l *Logger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l *Logger) Infof(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l *Logger) Fatal(msg string, args ...any) {
	l.logger.Error(msg, args...)
	os.Exit(1)
}

// With returns a logger with the given attributes added
func (l *Logger) With(args ...any) *slog.Logger {
	return l.logger.With(args...)
}

// WithError returns a logger with an error field
func (l *Logger) WithError(err error) *slog.Logger {
	return l.logger.With(Err(err))
}

// Package-level convenience functions

func Debug(msg string, args ...any) { GetLogger().Debug(msg, args...) }
func Info(msg string, args ...any)  { GetLogger().Info(msg, args...) }
func Warn(msg string, args ...any)  { GetLogger().Warn(msg, args...) }
func Error(msg string, args ...any) { GetLogger().Error(msg, args...) }

// Infof logs a formatted message at info level
func Infof(format string, v ...interface{}) { GetLogger().Infof(format, v...) }

// Warnf logs a formatted message at warn level
func Warnf(format string, v ...interface{}) { GetLogger().Warnf(format, v...) }

// Fatal logs at error level and exits
func Fatal(msg string, args ...any) { GetLogger().Fatal(msg, args...) }

// With returns a logger with the given attributes added
func With(args ...any) *slog.Logger {
	return GetLogger().With(args...)
}

// WithError returns a logger with an error field
func WithError(err error) *slog.Logger {
	return GetLogger().WithError(err)
}
