package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Getter is the read-only view of configuration handed to servers and tools.
type Getter interface {
	Get(key string, def any) any
}

// GetterFunc adapts a function to the Getter interface.
type GetterFunc func(key string, def any) any

func (f GetterFunc) Get(key string, def any) any { return f(key, def) }

// Map is a Getter over a fixed set of values.
type Map map[string]any

func (m Map) Get(key string, def any) any {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}

// ServerConfig holds the process-level settings read from the environment.
type ServerConfig struct {
	Name          string        `env:"MCP_SERVER_NAME,default=mcp-server"`
	Version       string        `env:"MCP_SERVER_VERSION,default=1.0.0"`
	LogLevel      string        `env:"MCP_LOG_LEVEL,default=INFO"`
	Backend       string        `env:"MCP_BACKEND,default=auto"`
	VerboseErrors bool          `env:"MCP_VERBOSE_ERRORS,default=false"`
	Timeout       time.Duration `env:"MCP_TIMEOUT,default=30s"`
	MaxRetries    int           `env:"MCP_MAX_RETRIES,default=3"`
}

// FromEnv decodes a ServerConfig from the environment and validates it.
func FromEnv() (ServerConfig, error) {
	var cfg ServerConfig
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return ServerConfig{}, fmt.Errorf("decode server config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// Validate checks field values that envdecode cannot.
func (c ServerConfig) Validate() error {
	if err := ValidateLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return invalid("MCP_TIMEOUT", "timeout must not be negative")
	}
	if c.MaxRetries < 0 {
		return invalid("MCP_MAX_RETRIES", "max retries must not be negative")
	}
	return nil
}
