package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App            AppConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	JWT            JWTConfig
	Log            LogConfig
	Outbox         OutboxConfig
	Lock           LockConfig
	RateLimit      RateLimitConfig
	Cart           CartConfig
	Recommendation RecommendationConfig
	Telemetry      TelemetryConfig
	HTTP           HTTPConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                string
	AccessTokenExpiration time.Duration
	Issuer                string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// OutboxConfig holds outbox relay configuration
type OutboxConfig struct {
	RelayEnabled bool
	BatchSize    int
	PollInterval time.Duration
}

// LockConfig holds distributed lock configuration
type LockConfig struct {
	ProductLockTimeout time.Duration
}

// RateLimitConfig holds fixed-window rate limiter configuration
type RateLimitConfig struct {
	SupportMessageLimit  int
	SupportMessageWindow time.Duration
	ContactLimit         int
	ContactWindow        time.Duration
	HTTPEnabled          bool
	HTTPRequests         int
	HTTPWindow           time.Duration
	Grace                time.Duration
}

// CartConfig holds cart cache configuration
type CartConfig struct {
	TTL time.Duration
}

// RecommendationConfig holds recommendation cache configuration
type RecommendationConfig struct {
	FrequentlyBoughtTTL time.Duration
	RecentlyViewedLimit int
}

// TelemetryConfig holds metrics export configuration
type TelemetryConfig struct {
	MetricsEnabled    bool
	CollectorEndpoint string
	ExportInterval    time.Duration
	Insecure          bool
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	TrustedProxies   []string
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with SHOP_ prefix (e.g., SHOP_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Booleans cannot be defaulted after the fact, absence and false look alike
	v.SetDefault("outbox.relay_enabled", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
			Issuer:                v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Outbox: OutboxConfig{
			RelayEnabled: v.GetBool("outbox.relay_enabled"),
			BatchSize:    v.GetInt("outbox.batch_size"),
			PollInterval: v.GetDuration("outbox.poll_interval"),
		},
		Lock: LockConfig{
			ProductLockTimeout: v.GetDuration("lock.product_lock_timeout"),
		},
		RateLimit: RateLimitConfig{
			SupportMessageLimit:  v.GetInt("ratelimit.support_message_limit"),
			SupportMessageWindow: v.GetDuration("ratelimit.support_message_window"),
			ContactLimit:         v.GetInt("ratelimit.contact_limit"),
			ContactWindow:        v.GetDuration("ratelimit.contact_window"),
			HTTPEnabled:          v.GetBool("ratelimit.http_enabled"),
			HTTPRequests:         v.GetInt("ratelimit.http_requests"),
			HTTPWindow:           v.GetDuration("ratelimit.http_window"),
			Grace:                v.GetDuration("ratelimit.grace"),
		},
		Cart: CartConfig{
			TTL: v.GetDuration("cart.ttl"),
		},
		Recommendation: RecommendationConfig{
			FrequentlyBoughtTTL: v.GetDuration("recommendation.frequently_bought_ttl"),
			RecentlyViewedLimit: v.GetInt("recommendation.recently_viewed_limit"),
		},
		Telemetry: TelemetryConfig{
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			ExportInterval:    v.GetDuration("telemetry.export_interval"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "shopsphere-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "shopsphere"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 15 * time.Minute
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "shopsphere-backend"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Outbox.BatchSize == 0 {
		cfg.Outbox.BatchSize = 50
	}
	if cfg.Outbox.PollInterval == 0 {
		cfg.Outbox.PollInterval = 5 * time.Second
	}
	if cfg.Lock.ProductLockTimeout == 0 {
		cfg.Lock.ProductLockTimeout = 10 * time.Second
	}
	if cfg.RateLimit.SupportMessageLimit == 0 {
		cfg.RateLimit.SupportMessageLimit = 20
	}
	if cfg.RateLimit.SupportMessageWindow == 0 {
		cfg.RateLimit.SupportMessageWindow = time.Minute
	}
	if cfg.RateLimit.ContactLimit == 0 {
		cfg.RateLimit.ContactLimit = 5
	}
	if cfg.RateLimit.ContactWindow == 0 {
		cfg.RateLimit.ContactWindow = time.Hour
	}
	if cfg.RateLimit.HTTPRequests == 0 {
		cfg.RateLimit.HTTPRequests = 100
	}
	if cfg.RateLimit.HTTPWindow == 0 {
		cfg.RateLimit.HTTPWindow = time.Minute
	}
	if cfg.RateLimit.Grace == 0 {
		cfg.RateLimit.Grace = 5 * time.Second
	}
	if cfg.Cart.TTL == 0 {
		cfg.Cart.TTL = 7 * 24 * time.Hour
	}
	if cfg.Recommendation.FrequentlyBoughtTTL == 0 {
		cfg.Recommendation.FrequentlyBoughtTTL = 6 * time.Hour
	}
	if cfg.Recommendation.RecentlyViewedLimit == 0 {
		cfg.Recommendation.RecentlyViewedLimit = 20
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = 60 * time.Second
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Outbox.BatchSize <= 0 {
		return fmt.Errorf("outbox.batch_size must be positive")
	}
	if c.Outbox.PollInterval <= 0 {
		return fmt.Errorf("outbox.poll_interval must be positive")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis address in host:port form
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
