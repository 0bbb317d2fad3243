package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const devJWTSecret = "home-craft-dev-secret"

type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	Auth      AuthConfig
	Orders    OrdersConfig
	Cache     CacheConfig
	Uploads   UploadsConfig
	Telemetry TelemetryConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name     string
	Env      string
	Locale   string
	LogLevel string
}

func (a AppConfig) Production() bool { return a.Env == "production" }

type HTTPConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver          string
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	AcquireTimeout  time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
}

func (r RedisConfig) Addr() string { return net.JoinHostPort(r.Host, r.Port) }

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type OrdersConfig struct {
	Currency              string
	TaxRate               decimal.Decimal
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

type CacheConfig struct {
	Enabled  bool
	OrderTTL time.Duration
	StatsTTL time.Duration
}

type UploadsConfig struct {
	Dir           string
	MaxSize       int64
	MaxAge        time.Duration
	SweepSchedule string
}

type TelemetryConfig struct {
	OTLPEndpoint string
	SampleRatio  float64
	SentryDSN    string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "home-craft")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.locale", "en")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("http.port", "8080")
	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("http.write_timeout", "30s")
	v.SetDefault("http.shutdown_timeout", "10s")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "3306")
	v.SetDefault("database.user", "root")
	v.SetDefault("database.name", "homecraft")
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.max_idle_conns", 20)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.conn_max_idle_time", "1m")
	v.SetDefault("database.acquire_timeout", "5s")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 50)

	v.SetDefault("rabbitmq.exchange", "order.exchange")

	v.SetDefault("auth.jwt_secret", devJWTSecret)
	v.SetDefault("auth.token_ttl", "720h")

	v.SetDefault("orders.currency", "EGP")
	v.SetDefault("orders.tax_rate", "0")
	v.SetDefault("orders.shipping_fee", "0")
	v.SetDefault("orders.free_shipping_threshold", "0")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.order_ttl", "10s")
	v.SetDefault("cache.stats_ttl", "10s")

	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.max_size", 5<<20)
	v.SetDefault("uploads.max_age", "720h")
	v.SetDefault("uploads.sweep_schedule", "@every 24h")

	v.SetDefault("telemetry.sample_ratio", 1.0)

	v.SetDefault("rate_limit.rps", 20)
	v.SetDefault("rate_limit.burst", 40)
}

// bindLegacyEnv keeps the plain variable names used by the docker-compose
// setup working next to the HOMECRAFT_ prefixed ones.
func bindLegacyEnv(v *viper.Viper) error {
	legacy := map[string][]string{
		"database.host":        {"HOMECRAFT_DATABASE_HOST", "MYSQL_HOST"},
		"database.port":        {"HOMECRAFT_DATABASE_PORT", "MYSQL_PORT"},
		"database.user":        {"HOMECRAFT_DATABASE_USER", "MYSQL_USER"},
		"database.password":    {"HOMECRAFT_DATABASE_PASSWORD", "MYSQL_PASSWORD"},
		"database.name":        {"HOMECRAFT_DATABASE_NAME", "MYSQL_DATABASE"},
		"redis.host":           {"HOMECRAFT_REDIS_HOST", "REDIS_HOST"},
		"rabbitmq.url":         {"HOMECRAFT_RABBITMQ_URL", "RABBITMQ_URL"},
		"http.port":            {"HOMECRAFT_HTTP_PORT", "PORT"},
		"auth.jwt_secret":      {"HOMECRAFT_AUTH_JWT_SECRET", "JWT_SECRET"},
		"telemetry.sentry_dsn": {"HOMECRAFT_TELEMETRY_SENTRY_DSN", "SENTRY_DSN"},
	}
	for key, envs := range legacy {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return err
		}
	}
	return nil
}

// Load reads configuration from defaults, an optional config file, a .env
// file and the environment, in increasing order of precedence. An empty path
// looks for config.yaml in the working directory and tolerates its absence.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("HOMECRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name:     v.GetString("app.name"),
			Env:      v.GetString("app.env"),
			Locale:   v.GetString("app.locale"),
			LogLevel: v.GetString("app.log_level"),
		},
		HTTP: HTTPConfig{
			Port:            v.GetString("http.port"),
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			DSN:             v.GetString("database.dsn"),
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetDuration("database.conn_max_idle_time"),
			AcquireTimeout:  v.GetDuration("database.acquire_timeout"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			PoolSize: v.GetInt("redis.pool_size"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("rabbitmq.url"),
			Exchange: v.GetString("rabbitmq.exchange"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
		Orders: OrdersConfig{
			Currency: v.GetString("orders.currency"),
		},
		Cache: CacheConfig{
			Enabled:  v.GetBool("cache.enabled"),
			OrderTTL: v.GetDuration("cache.order_ttl"),
			StatsTTL: v.GetDuration("cache.stats_ttl"),
		},
		Uploads: UploadsConfig{
			Dir:           v.GetString("uploads.dir"),
			MaxSize:       v.GetInt64("uploads.max_size"),
			MaxAge:        v.GetDuration("uploads.max_age"),
			SweepSchedule: v.GetString("uploads.sweep_schedule"),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: v.GetString("telemetry.otlp_endpoint"),
			SampleRatio:  v.GetFloat64("telemetry.sample_ratio"),
			SentryDSN:    v.GetString("telemetry.sentry_dsn"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("rate_limit.rps"),
			Burst: v.GetInt("rate_limit.burst"),
		},
	}

	var err error
	if cfg.Orders.TaxRate, err = decimalKey(v, "orders.tax_rate"); err != nil {
		return nil, err
	}
	if cfg.Orders.ShippingFee, err = decimalKey(v, "orders.shipping_fee"); err != nil {
		return nil, err
	}
	if cfg.Orders.FreeShippingThreshold, err = decimalKey(v, "orders.free_shipping_threshold"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decimalKey(v *viper.Viper, key string) (decimal.Decimal, error) {
	raw := v.GetString(key)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver)
	}
	if c.App.Production() && (c.Auth.JWTSecret == "" || c.Auth.JWTSecret == devJWTSecret) {
		return errors.New("auth.jwt_secret must be set in production")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if c.Orders.TaxRate.IsNegative() || c.Orders.ShippingFee.IsNegative() || c.Orders.FreeShippingThreshold.IsNegative() {
		return errors.New("orders: pricing values must not be negative")
	}
	if c.Uploads.MaxSize <= 0 {
		return errors.New("uploads.max_size must be positive")
	}
	return nil
}
