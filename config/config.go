package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	HTTP      HTTPConfig      `yaml:"http"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Store     StoreConfig     `yaml:"store"`
	Database  DatabaseConfig  `yaml:"database"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Booking   BookingConfig   `yaml:"booking"`
	Worker    WorkerConfig    `yaml:"worker"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Address         string `yaml:"address"`
	ShutdownSeconds int    `yaml:"shutdown_seconds"`
}

type GRPCConfig struct {
	Address    string `yaml:"address"`
	Reflection bool   `yaml:"reflection"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int32  `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Enabled            bool     `yaml:"enabled"`
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	FlightFeedTopic    string   `yaml:"flight_feed_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	HoldSeconds            int              `yaml:"hold_seconds"`
	DefaultCategory        string           `yaml:"default_category"`
	DefaultRate            *int64           `yaml:"default_rate"`
	Rates                  map[string]int64 `yaml:"rates"`
	SweepBatchSize         int              `yaml:"sweep_batch_size"`
	MaxTxRetries           int              `yaml:"max_tx_retries"`
	FlightsCacheTTLSeconds int              `yaml:"flights_cache_ttl_seconds"`
	LargeFlightMinCapacity int              `yaml:"large_flight_min_capacity"`
}

func (b BookingConfig) HoldDuration() time.Duration {
	return time.Duration(b.HoldSeconds) * time.Second
}

func (b BookingConfig) FlightsCacheTTL() time.Duration {
	return time.Duration(b.FlightsCacheTTLSeconds) * time.Second
}

type WorkerConfig struct {
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`
}

func (w WorkerConfig) SweepInterval() time.Duration {
	return time.Duration(w.SweepIntervalSeconds) * time.Second
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type RateLimitConfig struct {
	Enabled     bool    `yaml:"enabled"`
	RPS         float64 `yaml:"rps"`
	Burst       int     `yaml:"burst"`
	IdleSeconds int     `yaml:"idle_seconds"`
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

const defaultRate = 15

// FallbackRate is the per-kg price for categories missing from Rates. An
// explicit zero in config is kept as zero.
func (b BookingConfig) FallbackRate() int64 {
	if b.DefaultRate == nil {
		return defaultRate
	}
	return *b.DefaultRate
}

// DefaultRates is the per-kg price card used when booking.rates is empty.
func DefaultRates() map[string]int64 {
	return map[string]int64{
		"General":         12,
		"Pharma":          20,
		"Dangerous Goods": 35,
		"High Value":      50,
		"Perishables":     18,
		"Animals":         40,
	}
}

// Load reads an optional .env, expands ${VAR} references in the YAML file at
// path, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	expanded := []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverSQLite, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == StoreDriverSQLite && c.SQLite.Path == "" {
		return errors.New("sqlite.path is required for the sqlite store")
	}
	if c.Booking.HoldSeconds <= 0 {
		return errors.New("booking.hold_seconds must be positive")
	}
	if !domain.NormalizeCategory(c.Booking.DefaultCategory).Valid() {
		return fmt.Errorf("unknown booking.default_category %q", c.Booking.DefaultCategory)
	}
	if c.Booking.DefaultRate != nil && *c.Booking.DefaultRate < 0 {
		return errors.New("booking.default_rate must not be negative")
	}
	for category, rate := range c.Booking.Rates {
		if rate < 0 {
			return fmt.Errorf("booking.rates[%s] must not be negative", category)
		}
	}
	if c.Booking.SweepBatchSize <= 0 {
		return errors.New("booking.sweep_batch_size must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers is required when kafka is enabled")
	}
	if c.RateLimit.Enabled && c.RateLimit.RPS <= 0 {
		return errors.New("rate_limit.rps must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "cargobooking"
	}
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.ShutdownSeconds == 0 {
		c.HTTP.ShutdownSeconds = 10
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = StoreDriverPostgres
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Kafka.BookingTopic == "" {
		c.Kafka.BookingTopic = "cargo.bookings"
	}
	if c.Kafka.FlightFeedTopic == "" {
		c.Kafka.FlightFeedTopic = "cargo.flight-feed"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "cargobooking-worker"
	}

	if c.Booking.HoldSeconds == 0 {
		c.Booking.HoldSeconds = 120
	}
	if c.Booking.DefaultCategory == "" {
		c.Booking.DefaultCategory = "General"
	}
	if c.Booking.DefaultRate == nil {
		rate := int64(defaultRate)
		c.Booking.DefaultRate = &rate
	}
	if len(c.Booking.Rates) == 0 {
		c.Booking.Rates = DefaultRates()
	}
	if c.Booking.SweepBatchSize == 0 {
		c.Booking.SweepBatchSize = 500
	}
	if c.Booking.MaxTxRetries == 0 {
		c.Booking.MaxTxRetries = 3
	}
	if c.Booking.FlightsCacheTTLSeconds == 0 {
		c.Booking.FlightsCacheTTLSeconds = 30
	}
	if c.Booking.LargeFlightMinCapacity == 0 {
		c.Booking.LargeFlightMinCapacity = 6000
	}
	if c.Worker.SweepIntervalSeconds == 0 {
		c.Worker.SweepIntervalSeconds = 30
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}
	if len(c.CORS.AllowOrigins) == 0 {
		c.CORS.AllowOrigins = []string{"*"}
	}
}
