package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestLoadConfigMissingFileRequiresHost(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := LoadConfigFs(fs, "/etc/zrctl/config.yaml")
	if err == nil || !strings.Contains(err.Error(), "device.host is required") {
		t.Fatalf("Expected device.host error for empty defaults, got %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `device:
  host: 10.1.2.3
  password: secret
  read_timeout: 3s
protocol:
  max_attempts: 4
  retry_delay: 0s
monitor:
  interval: 15s
api:
  port: 9090
  callers:
    - caller_id: panel
      name: Room panel
      api_key_hash: "sha256:abc"
logging:
  level: debug
`
	if err := afero.WriteFile(fs, "/etc/zrctl/config.yaml", []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfigFs(fs, "/etc/zrctl/config.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Device.Host != "10.1.2.3" {
		t.Errorf("Expected host 10.1.2.3, got %s", cfg.Device.Host)
	}
	if cfg.Device.Port != 2244 {
		t.Errorf("Expected default port 2244, got %d", cfg.Device.Port)
	}
	if cfg.Device.Username != "zoom" {
		t.Errorf("Expected default username zoom, got %s", cfg.Device.Username)
	}
	if cfg.Device.ReadTimeout != 3*time.Second {
		t.Errorf("Expected read timeout 3s, got %v", cfg.Device.ReadTimeout)
	}
	if cfg.Device.IdleTimeout != 300*time.Millisecond {
		t.Errorf("Expected default idle timeout, got %v", cfg.Device.IdleTimeout)
	}
	if cfg.Protocol.MaxAttempts != 4 {
		t.Errorf("Expected 4 attempts, got %d", cfg.Protocol.MaxAttempts)
	}
	if cfg.Protocol.RetryDelay != 0 {
		t.Errorf("Expected explicit zero retry delay, got %v", cfg.Protocol.RetryDelay)
	}
	if cfg.Protocol.StatusPollAttempts != 5 || cfg.Protocol.StatusPollDelay != time.Second {
		t.Errorf("Expected default poll settings, got %d/%v",
			cfg.Protocol.StatusPollAttempts, cfg.Protocol.StatusPollDelay)
	}
	if cfg.Monitor.Interval != 15*time.Second || !cfg.Monitor.Enabled {
		t.Errorf("Unexpected monitor config %+v", cfg.Monitor)
	}
	if cfg.API.Addr() != "127.0.0.1:9090" {
		t.Errorf("Expected api addr 127.0.0.1:9090, got %s", cfg.API.Addr())
	}
	if caller := cfg.API.GetCaller("panel"); caller == nil || caller.Name != "Room panel" {
		t.Errorf("Expected caller panel, got %+v", caller)
	}
	if cfg.Logging.ToLogging().Level != "debug" {
		t.Errorf("Expected debug logging, got %s", cfg.Logging.Level)
	}
}

func TestLoadConfigPasswordFromEnv(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "config.yaml", []byte("device:\n  host: room.local\n  password: fromfile\n"), 0600)
	t.Setenv(PasswordEnv, "fromenv")

	cfg, err := LoadConfigFs(fs, "config.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Device.Password != "fromenv" {
		t.Errorf("Expected password from environment, got %q", cfg.Device.Password)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "config.yaml", []byte("device: [unterminated"), 0600)

	if _, err := LoadConfigFs(fs, "config.yaml"); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("Expected parse error, got %v", err)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := DefaultConfig()
	cfg.Device.Host = "room.local"
	cfg.Protocol.RetryDelay = 500 * time.Millisecond

	if err := SaveConfig(fs, cfg, "/var/lib/zrctl/config.yaml"); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfigFs(fs, "/var/lib/zrctl/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Device.Host != "room.local" || loaded.Protocol.RetryDelay != 500*time.Millisecond {
		t.Errorf("Unexpected loaded config %+v %+v", loaded.Device, loaded.Protocol)
	}
}
