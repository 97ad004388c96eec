package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Policy   PolicyConfig   `yaml:"policy"`
	Audit    AuditConfig    `yaml:"audit"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"false"`
}

// AuthConfig holds access token settings.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"featureflags"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"15m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// PolicyConfig locates the permission policy. An empty path selects the
// built-in policy.
type PolicyConfig struct {
	Path string `yaml:"path" env:"POLICY_PATH"`
}

// AuditConfig configures activity event delivery.
type AuditConfig struct {
	BufferSize     int           `yaml:"buffer_size"     env:"AUDIT_BUFFER_SIZE"     env-default:"256"`
	HandlerTimeout time.Duration `yaml:"handler_timeout" env:"AUDIT_HANDLER_TIMEOUT" env-default:"5s"`
	// Persist stores every event in the activity_log table.
	Persist bool          `yaml:"persist" env:"AUDIT_PERSIST" env-default:"true"`
	NATS    NATSConfig    `yaml:"nats"`
	Redis   RedisConfig   `yaml:"redis"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// NATSConfig enables publishing to NATS when URL is set.
type NATSConfig struct {
	URL     string `yaml:"url"     env:"AUDIT_NATS_URL"`
	Subject string `yaml:"subject" env:"AUDIT_NATS_SUBJECT" env-default:"featureflags.activity"`
}

// Enabled reports whether the NATS subscriber is configured.
func (c NATSConfig) Enabled() bool { return c.URL != "" }

// RedisConfig enables appending to a Redis stream when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"AUDIT_REDIS_ADDR"`
	Password string `yaml:"password" env:"AUDIT_REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"AUDIT_REDIS_DB"       env-default:"0"`
	Stream   string `yaml:"stream"   env:"AUDIT_REDIS_STREAM"   env-default:"featureflags:activity"`
	MaxLen   int64  `yaml:"max_len"  env:"AUDIT_REDIS_MAX_LEN"  env-default:"100000"`
}

// Enabled reports whether the Redis subscriber is configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// BreakerConfig configures the circuit breakers in front of external
// subscribers.
type BreakerConfig struct {
	MaxRequests  uint32        `yaml:"max_requests"  env:"AUDIT_BREAKER_MAX_REQUESTS"  env-default:"1"`
	Interval     time.Duration `yaml:"interval"      env:"AUDIT_BREAKER_INTERVAL"      env-default:"60s"`
	Timeout      time.Duration `yaml:"timeout"       env:"AUDIT_BREAKER_TIMEOUT"       env-default:"30s"`
	MinRequests  uint32        `yaml:"min_requests"  env:"AUDIT_BREAKER_MIN_REQUESTS"  env-default:"5"`
	FailureRatio float64       `yaml:"failure_ratio" env:"AUDIT_BREAKER_FAILURE_RATIO" env-default:"0.5"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
}
