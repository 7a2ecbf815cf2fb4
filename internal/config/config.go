package config

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Server   ServerConfig   `envconfig:"SERVER"`
	Storage  string         `envconfig:"STORAGE_DRIVER" default:"postgres"`
	Postgres PostgresConfig `envconfig:"POSTGRES"`
	Redis    RedisConfig    `envconfig:"REDIS"`
	AMQP     AMQPConfig     `envconfig:"AMQP"`
	Auth     AuthConfig     `envconfig:"AUTH"`
	Booking  BookingConfig  `envconfig:"BOOKING"`
	Sweeper  SweeperConfig  `envconfig:"SWEEPER"`

	// Location is resolved from Booking.Timezone.
	Location *time.Location `ignored:"true"`
}

type ServerConfig struct {
	Host string `envconfig:"HOST" default:"localhost"`
	Port int    `envconfig:"PORT" default:"8080"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

type PostgresConfig struct {
	User     string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"DB"`
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     int    `envconfig:"PORT" default:"5432"`
	SSLMode  string `envconfig:"SSLMODE" default:"disable"`

	MaxConns          int32         `envconfig:"MAX_CONNS" default:"10"`
	MinConns          int32         `envconfig:"MIN_CONNS" default:"0"`
	MaxConnLifetime   time.Duration `envconfig:"MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime   time.Duration `envconfig:"MAX_CONN_IDLE_TIME" default:"5m"`
	HealthCheckPeriod time.Duration `envconfig:"HEALTH_CHECK_PERIOD" default:"30s"`
	ConnectTimeout    time.Duration `envconfig:"CONNECT_TIMEOUT" default:"5s"`
	// StatementTimeout is sent as the session statement_timeout; zero leaves
	// the server default.
	StatementTimeout time.Duration `envconfig:"STATEMENT_TIMEOUT" default:"0"`
	ApplicationName  string        `envconfig:"APPLICATION_NAME" default:"padelgo"`
}

func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     p.Host + ":" + strconv.Itoa(p.Port),
		Path:     p.Name,
		RawQuery: "sslmode=" + url.QueryEscape(p.SSLMode),
	}
	return u.String()
}

type RedisConfig struct {
	Enabled  bool   `envconfig:"ENABLED" default:"true"`
	Addr     string `envconfig:"ADDR" default:"localhost:6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
}

// AMQPConfig enables the RabbitMQ notification fan-out when URL is set.
type AMQPConfig struct {
	URL      string `envconfig:"URL"`
	Exchange string `envconfig:"EXCHANGE" default:"padelgo.notifications"`
}

type AuthConfig struct {
	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
}

type BookingConfig struct {
	HoldTTL              time.Duration `envconfig:"HOLD_TTL" default:"10m"`
	Timezone             string        `envconfig:"TIMEZONE" default:"UTC"`
	CancelCutoff         time.Duration `envconfig:"CANCEL_CUTOFF" default:"2h"`
	FullRefundBefore     time.Duration `envconfig:"FULL_REFUND_BEFORE" default:"24h"`
	PartialRefundPercent int64         `envconfig:"PARTIAL_REFUND_PERCENT" default:"50"`
	RateLimit            int           `envconfig:"RATE_LIMIT" default:"10"`
	RateWindow           time.Duration `envconfig:"RATE_WINDOW" default:"1m"`
	IdempotencyTTL       time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"2h"`
	CacheTTL             time.Duration `envconfig:"CACHE_TTL" default:"60s"`
}

type SweeperConfig struct {
	Enabled   bool          `envconfig:"ENABLED" default:"true"`
	Interval  time.Duration `envconfig:"INTERVAL" default:"60s"`
	BatchSize int           `envconfig:"BATCH_SIZE" default:"100"`
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid BOOKING_TIMEZONE: %w", op, err)
	}
	cfg.Location = loc

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.Postgres.User == "" {
			return fmt.Errorf("missing POSTGRES_USER")
		}
		if c.Postgres.Password == "" {
			return fmt.Errorf("missing POSTGRES_PASSWORD")
		}
		if c.Postgres.Name == "" {
			return fmt.Errorf("missing POSTGRES_DB")
		}
		if c.Postgres.MaxConns <= 0 || c.Postgres.MinConns < 0 || c.Postgres.MinConns > c.Postgres.MaxConns {
			return fmt.Errorf("invalid POSTGRES_MIN_CONNS/POSTGRES_MAX_CONNS: want 0 <= min <= max, max > 0")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q", c.Storage)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("missing AUTH_JWT_SECRET")
	}
	if c.Booking.HoldTTL <= 0 {
		return fmt.Errorf("invalid BOOKING_HOLD_TTL: must be positive")
	}
	if c.Booking.CancelCutoff > c.Booking.FullRefundBefore {
		return fmt.Errorf("invalid BOOKING_CANCEL_CUTOFF: exceeds BOOKING_FULL_REFUND_BEFORE")
	}
	if c.Booking.PartialRefundPercent < 0 || c.Booking.PartialRefundPercent > 100 {
		return fmt.Errorf("invalid BOOKING_PARTIAL_REFUND_PERCENT: want 0..100")
	}
	if c.Sweeper.Enabled && c.Sweeper.Interval <= 0 {
		return fmt.Errorf("invalid SWEEPER_INTERVAL: must be positive")
	}

	return nil
}
