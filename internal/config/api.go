package config

import (
	"fmt"
	"strings"
)

// APIConfig holds configuration for the HTTP control API
type APIConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	RequireAuth bool   `yaml:"require_auth"`

	// Caller definitions for API key authentication
	Callers []CallerConfig `yaml:"callers,omitempty"`

	MaxBodySizeKB int `yaml:"max_body_size_kb"`
}

// CallerConfig holds configuration for a single API caller
type CallerConfig struct {
	CallerID   string `yaml:"caller_id"`    // Unique identifier (e.g., "room-panel")
	Name       string `yaml:"name"`         // Human-readable name
	APIKeyHash string `yaml:"api_key_hash"` // SHA256 hash of API key ("sha256:abc123...")
}

// DefaultAPIConfig returns default configuration for the control API
func DefaultAPIConfig() APIConfig {
	return APIConfig{
		Enabled:       true,
		Host:          "127.0.0.1",
		Port:          8089,
		Callers:       []CallerConfig{},
		MaxBodySizeKB: 64,
	}
}

// Addr returns the listen address
func (c *APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetCaller returns the caller configuration for the given caller ID
func (c *APIConfig) GetCaller(callerID string) *CallerConfig {
	for i := range c.Callers {
		if c.Callers[i].CallerID == callerID {
			return &c.Callers[i]
		}
	}
	return nil
}

// Validate validates the API configuration
func (c *APIConfig) Validate() error {
	var errs ValidationErrors

	if c.Port < 1 || c.Port > 65535 {
		errs.Add(fmt.Errorf("api.port must be between 1-65535, got %d", c.Port))
	}
	if c.MaxBodySizeKB < 1 {
		errs.Add(fmt.Errorf("api.max_body_size_kb must be positive, got %d", c.MaxBodySizeKB))
	}
	if c.RequireAuth && len(c.Callers) == 0 {
		errs.Add(fmt.Errorf("api.callers must not be empty when require_auth is set"))
	}

	seen := make(map[string]bool)
	for i, caller := range c.Callers {
		if caller.CallerID == "" {
			errs.Add(fmt.Errorf("api.callers[%d].caller_id is required", i))
			continue
		}
		if seen[caller.CallerID] {
			errs.Add(fmt.Errorf("api.callers[%d].caller_id '%s' is duplicated", i, caller.CallerID))
		}
		seen[caller.CallerID] = true

		if !strings.HasPrefix(caller.APIKeyHash, "sha256:") {
			errs.Add(fmt.Errorf("api.callers[%d].api_key_hash must start with sha256: for caller '%s'", i, caller.CallerID))
		}
	}

	if errs.HasErrors() {
		return &errs
	}
	return nil
}
