package config

import (
	"fmt"
	"strings"
	"time"
)

// Validator interface for config validation
type Validator interface {
	Validate() error
}

// ValidationErrors collects multiple validation errors
type ValidationErrors struct {
	Errors []error
}

func (ve *ValidationErrors) Add(err error) {
	if err != nil {
		ve.Errors = append(ve.Errors, err)
	}
}

func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return ""
	}

	messages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		messages[i] = fmt.Sprintf("  - %s", err.Error())
	}

	return fmt.Sprintf("configuration validation failed:\n%s",
		strings.Join(messages, "\n"))
}

func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	var errs ValidationErrors

	errs.Add(c.Device.Validate())
	errs.Add(c.Protocol.Validate())

	if c.Monitor.Enabled {
		errs.Add(c.Monitor.Validate())
	}
	if c.Cache.Enabled {
		errs.Add(c.Cache.Validate())
	}
	if c.API.Enabled {
		errs.Add(c.API.Validate())
	}

	errs.Add(c.Logging.Validate())

	if errs.HasErrors() {
		return &errs
	}
	return nil
}

// Validate validates device configuration
func (c *DeviceConfig) Validate() error {
	var errs ValidationErrors

	if c.Host == "" {
		errs.Add(fmt.Errorf("device.host is required"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs.Add(fmt.Errorf("device.port must be between 1-65535, got %d", c.Port))
	}
	if c.Username == "" {
		errs.Add(fmt.Errorf("device.username is required"))
	}
	errs.Add(positive("device.connect_timeout", c.ConnectTimeout))
	errs.Add(positive("device.read_timeout", c.ReadTimeout))
	errs.Add(positive("device.idle_timeout", c.IdleTimeout))

	if c.IdleTimeout > 0 && c.ReadTimeout > 0 && c.IdleTimeout >= c.ReadTimeout {
		errs.Add(fmt.Errorf("device.idle_timeout (%v) must be shorter than read_timeout (%v)",
			c.IdleTimeout, c.ReadTimeout))
	}

	if errs.HasErrors() {
		return &errs
	}
	return nil
}

// Validate validates protocol configuration
func (c *ProtocolConfig) Validate() error {
	var errs ValidationErrors

	if c.MaxAttempts < 1 {
		errs.Add(fmt.Errorf("protocol.max_attempts must be at least 1, got %d", c.MaxAttempts))
	}
	if c.RetryDelay < 0 {
		errs.Add(fmt.Errorf("protocol.retry_delay cannot be negative"))
	}
	if c.StatusPollAttempts < 1 {
		errs.Add(fmt.Errorf("protocol.status_poll_attempts must be at least 1, got %d", c.StatusPollAttempts))
	}
	if c.StatusPollDelay < 0 {
		errs.Add(fmt.Errorf("protocol.status_poll_delay cannot be negative"))
	}

	if errs.HasErrors() {
		return &errs
	}
	return nil
}

// Validate validates monitor configuration
func (c *MonitorConfig) Validate() error {
	var errs ValidationErrors

	if c.Interval < time.Second {
		errs.Add(fmt.Errorf("monitor.interval must be at least 1s, got %v", c.Interval))
	}
	if c.SnapshotTTL < c.Interval {
		errs.Add(fmt.Errorf("monitor.snapshot_ttl (%v) cannot be shorter than interval (%v)",
			c.SnapshotTTL, c.Interval))
	}

	if errs.HasErrors() {
		return &errs
	}
	return nil
}

// Validate validates cache configuration
func (c *CacheConfig) Validate() error {
	if c.MaxMemoryMB < 1 {
		return fmt.Errorf("cache.max_memory_mb must be positive, got %d", c.MaxMemoryMB)
	}
	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	var errs ValidationErrors

	switch c.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs.Add(fmt.Errorf("logging.level must be one of: [debug info warn error], got %s", c.Level))
	}

	if c.MaxSize < 0 {
		errs.Add(fmt.Errorf("logging.max_size cannot be negative, got %d", c.MaxSize))
	}
	if c.MaxBackups < 0 {
		errs.Add(fmt.Errorf("logging.max_backups cannot be negative, got %d", c.MaxBackups))
	}
	if c.MaxAge < 0 {
		errs.Add(fmt.Errorf("logging.max_age cannot be negative, got %d", c.MaxAge))
	}

	if errs.HasErrors() {
		return &errs
	}
	return nil
}

func positive(field string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %v", field, d)
	}
	return nil
}
