package config

import (
	"fmt"
	"slices"
	"strings"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "text"}
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("auth.access_token_ttl must be > 0 (got %v)", c.Auth.AccessTokenTTL)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) must not exceed max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("log.level must be one of %v (got %q)", logLevels, c.Log.Level)
	}
	if !slices.Contains(logFormats, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("log.format must be one of %v (got %q)", logFormats, c.Log.Format)
	}

	if err := c.Audit.validate(); err != nil {
		return fmt.Errorf("audit: %w", err)
	}

	return nil
}

func (a *AuditConfig) validate() error {
	if a.BufferSize <= 0 {
		return fmt.Errorf("buffer_size must be > 0 (got %d)", a.BufferSize)
	}
	if a.HandlerTimeout <= 0 {
		return fmt.Errorf("handler_timeout must be > 0 (got %v)", a.HandlerTimeout)
	}
	if a.NATS.Enabled() && strings.TrimSpace(a.NATS.Subject) == "" {
		return fmt.Errorf("nats.subject is required when nats.url is set")
	}
	if a.Redis.Enabled() && strings.TrimSpace(a.Redis.Stream) == "" {
		return fmt.Errorf("redis.stream is required when redis.addr is set")
	}
	if a.Breaker.FailureRatio <= 0 || a.Breaker.FailureRatio > 1 {
		return fmt.Errorf("breaker.failure_ratio must be in (0, 1] (got %v)", a.Breaker.FailureRatio)
	}
	return nil
}
