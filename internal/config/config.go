package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/zrctl/internal/logging"
)

// PasswordEnv overrides device.password when set
const PasswordEnv = "ZRCTL_DEVICE_PASSWORD"

// Config represents the complete application configuration
type Config struct {
	Device   DeviceConfig   `yaml:"device"`
	Protocol ProtocolConfig `yaml:"protocol"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Cache    CacheConfig    `yaml:"cache"`
	API      APIConfig      `yaml:"api"`
	Console  ConsoleConfig  `yaml:"console"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DeviceConfig holds the SSH connection to the room controller
type DeviceConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password,omitempty"`
	KnownHosts string `yaml:"known_hosts,omitempty"` // empty accepts any host key

	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"` // wait for the first response byte
	IdleTimeout    time.Duration `yaml:"idle_timeout"` // quiet gap that ends a response
}

// ProtocolConfig holds command retry and dial polling settings
type ProtocolConfig struct {
	MaxAttempts        int           `yaml:"max_attempts"`
	RetryDelay         time.Duration `yaml:"retry_delay"`
	StatusPollAttempts int           `yaml:"status_poll_attempts"`
	StatusPollDelay    time.Duration `yaml:"status_poll_delay"`
}

// MonitorConfig holds the periodic status poller settings
type MonitorConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Interval    time.Duration `yaml:"interval"`
	SnapshotTTL time.Duration `yaml:"snapshot_ttl"`
}

// CacheConfig holds the in-memory snapshot cache settings
type CacheConfig struct {
	Enabled     bool `yaml:"enabled"`
	MaxMemoryMB int  `yaml:"max_memory_mb"`
}

// ConsoleConfig holds the operator console settings
type ConsoleConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen,omitempty"` // host:port, empty for the local terminal
	Prompt  string `yaml:"prompt"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	File       string `yaml:"file"`        // log file path (optional)
	MaxSize    int    `yaml:"max_size"`    // megabytes
	MaxBackups int    `yaml:"max_backups"` // number of old log files to keep
	MaxAge     int    `yaml:"max_age"`     // days
	Console    bool   `yaml:"console"`     // also log to console
	JSON       bool   `yaml:"json"`        // JSON format instead of text
}

// ToLogging converts to the logging package configuration
func (c LoggingConfig) ToLogging() *logging.Config {
	return &logging.Config{
		Level:      c.Level,
		File:       c.File,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Console:    c.Console,
		JSON:       c.JSON,
	}
}

// DefaultDeviceConfig returns the standard Zoom Rooms SSH API settings
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		Port:           2244,
		Username:       "zoom",
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    5 * time.Second,
		IdleTimeout:    300 * time.Millisecond,
	}
}

// DefaultProtocolConfig returns the standard retry settings
func DefaultProtocolConfig() ProtocolConfig {
	return ProtocolConfig{
		MaxAttempts:        10,
		RetryDelay:         250 * time.Millisecond,
		StatusPollAttempts: 5,
		StatusPollDelay:    time.Second,
	}
}

// DefaultMonitorConfig returns default poller settings
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Enabled:     true,
		Interval:    30 * time.Second,
		SnapshotTTL: 2 * time.Minute,
	}
}

// DefaultCacheConfig returns default cache settings
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:     true,
		MaxMemoryMB: 16,
	}
}

// DefaultConsoleConfig returns default console settings
func DefaultConsoleConfig() ConsoleConfig {
	return ConsoleConfig{
		Prompt: "zrctl> ",
	}
}

// DefaultLoggingConfig returns default logging configuration
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:      "info",
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
		Console:    true,
	}
}

// DefaultConfig returns a configuration with every section defaulted
func DefaultConfig() *Config {
	return &Config{
		Device:   DefaultDeviceConfig(),
		Protocol: DefaultProtocolConfig(),
		Monitor:  DefaultMonitorConfig(),
		Cache:    DefaultCacheConfig(),
		API:      DefaultAPIConfig(),
		Console:  DefaultConsoleConfig(),
		Logging:  DefaultLoggingConfig(),
	}
}

// LoadConfig loads configuration from a file on disk
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigFs(afero.NewOsFs(), configPath)
}

// LoadConfigFs loads configuration from fs. A missing file yields defaults.
func LoadConfigFs(fs afero.Fs, configPath string) (*Config, error) {
	config := DefaultConfig()

	exists, err := afero.Exists(fs, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if exists {
		data, err := afero.ReadFile(fs, configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if pw := os.Getenv(PasswordEnv); pw != "" {
		config.Device.Password = pw
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes configuration to fs
func SaveConfig(fs afero.Fs, config *Config, configPath string) error {
	if err := fs.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(fs, configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// applyDefaults fills zero values left by a partial file
func (c *Config) applyDefaults() {
	dev := DefaultDeviceConfig()
	if c.Device.Port == 0 {
		c.Device.Port = dev.Port
	}
	if c.Device.Username == "" {
		c.Device.Username = dev.Username
	}
	if c.Device.ConnectTimeout == 0 {
		c.Device.ConnectTimeout = dev.ConnectTimeout
	}
	if c.Device.ReadTimeout == 0 {
		c.Device.ReadTimeout = dev.ReadTimeout
	}
	if c.Device.IdleTimeout == 0 {
		c.Device.IdleTimeout = dev.IdleTimeout
	}

	proto := DefaultProtocolConfig()
	if c.Protocol.MaxAttempts == 0 {
		c.Protocol.MaxAttempts = proto.MaxAttempts
	}
	if c.Protocol.StatusPollAttempts == 0 {
		c.Protocol.StatusPollAttempts = proto.StatusPollAttempts
	}
	if c.Protocol.StatusPollDelay == 0 {
		c.Protocol.StatusPollDelay = proto.StatusPollDelay
	}

	mon := DefaultMonitorConfig()
	if c.Monitor.Interval == 0 {
		c.Monitor.Interval = mon.Interval
	}
	if c.Monitor.SnapshotTTL == 0 {
		c.Monitor.SnapshotTTL = mon.SnapshotTTL
	}

	if c.Cache.MaxMemoryMB == 0 {
		c.Cache.MaxMemoryMB = DefaultCacheConfig().MaxMemoryMB
	}

	api := DefaultAPIConfig()
	if c.API.Host == "" {
		c.API.Host = api.Host
	}
	if c.API.Port == 0 {
		c.API.Port = api.Port
	}
	if c.API.MaxBodySizeKB == 0 {
		c.API.MaxBodySizeKB = api.MaxBodySizeKB
	}

	if c.Console.Prompt == "" {
		c.Console.Prompt = DefaultConsoleConfig().Prompt
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLoggingConfig().Level
	}
}
