package utils

import (
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
)

// Config provides a thread-safe configuration management system
// that handles environment variables with defaults and type conversion
type Config struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewConfig creates a new Config instance with the provided key-value pairs
func NewConfig(values map[string]string) *Config {
	config := &Config{
		values: make(map[string]string),
	}

	maps.Copy(config.values, values)

	return config
}

// NewConfigFromEnv creates a new Config instance by loading environment variables
// from the specified .env files
func NewConfigFromEnv(files ...string) *Config {
	envMap := LoadEnv(files...)
	return NewConfig(envMap)
}

// Load builds the process configuration. Values from the optional file named by
// CONFIG_FILE are applied first and the environment takes precedence over them
func Load(envFiles ...string) (*Config, error) {
	env := NewConfigFromEnv(envFiles...)

	path := env.Get("CONFIG_FILE")
	if path == "" {
		return env, nil
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}

	cfg.Merge(env)
	return cfg, nil
}

// Get retrieves a configuration value by key
// Returns empty string if key doesn't exist
func (c *Config) Get(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[key]
}

// GetWithDefault retrieves a configuration value by key with a fallback default
func (c *Config) GetWithDefault(key, defaultValue string) string {
	if value := c.Get(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBool retrieves a configuration value as a boolean
// Returns false if key doesn't exist or cannot be parsed as boolean
func (c *Config) GetBool(key string) bool {
	value := strings.ToLower(strings.TrimSpace(c.Get(key)))

	// Handle common boolean representations cast doesn't know about
	switch value {
	case "yes", "on", "enabled":
		return true
	case "no", "off", "disabled":
		return false
	}

	return cast.ToBool(value)
}

// GetInt retrieves a configuration value as an integer
// Returns 0 if key doesn't exist or cannot be parsed as integer
func (c *Config) GetInt(key string) int {
	return cast.ToInt(c.Get(key))
}

// GetIntWithDefault retrieves a configuration value as an integer with a fallback default
func (c *Config) GetIntWithDefault(key string, defaultValue int) int {
	value := c.Get(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := cast.ToIntE(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetDurationWithDefault retrieves a configuration value as a duration ("10s", "1m30s")
// with a fallback default for missing, invalid or non-positive values
func (c *Config) GetDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := c.Get(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := cast.ToDurationE(value)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

// Set modifies a configuration value
func (c *Config) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Has checks if a configuration key exists
func (c *Config) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.values[key]
	return exists
}

// Keys returns all configuration keys
func (c *Config) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	return keys
}

// Merge combines values from another config, with the other config taking precedence
func (c *Config) Merge(other *Config) {
	if other == nil || other == c {
		return
	}

	other.mu.RLock()
	values := maps.Clone(other.values)
	other.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	maps.Copy(c.values, values)
}
