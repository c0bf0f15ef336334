package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("CARGO_DB_PASSWORD", "s3cret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
store:
  driver: Postgres
database:
  host: db
  user: cargo
  password: ${CARGO_DB_PASSWORD}
  name: cargo
booking:
  hold_seconds: 90
kafka:
  enabled: true
  brokers: ["kafka:9092"]
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 90*time.Second, cfg.Booking.HoldDuration())
	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
	assert.Contains(t, cfg.Database.DSN(), "password=s3cret")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("store:\n  driver: memory\n"))
	require.NoError(t, err)

	assert.Equal(t, 120*time.Second, cfg.Booking.HoldDuration())
	assert.Equal(t, "General", cfg.Booking.DefaultCategory)
	require.NotNil(t, cfg.Booking.DefaultRate)
	assert.Equal(t, int64(15), cfg.Booking.FallbackRate())
	assert.Equal(t, DefaultRates(), cfg.Booking.Rates)
	assert.Equal(t, int64(35), cfg.Booking.Rates["Dangerous Goods"])
	assert.Equal(t, 500, cfg.Booking.SweepBatchSize)
	assert.Equal(t, 3, cfg.Booking.MaxTxRetries)
	assert.Equal(t, 6000, cfg.Booking.LargeFlightMinCapacity)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Config{Store: StoreConfig{Driver: StoreDriverMemory}}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "mongo" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Store.Driver = StoreDriverSQLite }, wantErr: true},
		{name: "sqlite with path", mutate: func(c *Config) {
			c.Store.Driver = StoreDriverSQLite
			c.SQLite.Path = "cargo.db"
		}},
		{name: "negative hold", mutate: func(c *Config) { c.Booking.HoldSeconds = -1 }, wantErr: true},
		{name: "negative rate", mutate: func(c *Config) { c.Booking.Rates["Pharma"] = -1 }, wantErr: true},
		{name: "negative default rate", mutate: func(c *Config) {
			rate := int64(-3)
			c.Booking.DefaultRate = &rate
		}, wantErr: true},
		{name: "zero default rate", mutate: func(c *Config) {
			rate := int64(0)
			c.Booking.DefaultRate = &rate
		}},
		{name: "unknown default category", mutate: func(c *Config) { c.Booking.DefaultCategory = "Livestock" }, wantErr: true},
		{name: "lower-case default category", mutate: func(c *Config) { c.Booking.DefaultCategory = "pharma" }},
		{name: "kafka without brokers", mutate: func(c *Config) { c.Kafka.Enabled = true }, wantErr: true},
		{name: "rate limit without rps", mutate: func(c *Config) { c.RateLimit.Enabled = true }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParse_ExplicitZeroDefaultRate(t *testing.T) {
	cfg, err := Parse([]byte("store:\n  driver: memory\nbooking:\n  default_rate: 0\n"))
	require.NoError(t, err)

	require.NotNil(t, cfg.Booking.DefaultRate)
	assert.Equal(t, int64(0), cfg.Booking.FallbackRate())
}

func TestParse_DefaultCategory(t *testing.T) {
	cfg, err := Parse([]byte("store:\n  driver: memory\nbooking:\n  default_category: Pharma\n"))
	require.NoError(t, err)

	assert.Equal(t, "Pharma", cfg.Booking.DefaultCategory)
}
