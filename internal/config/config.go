package config

import (
	"fmt"
	"time"

	appErrors "github.com/unclebandit/creditsim/internal/errors"
	"github.com/unclebandit/creditsim/internal/generator"
)

// Config represents the generator, worker and server configuration
type Config struct {
	Run     RunConfig     `mapstructure:"run"`
	Storage StorageConfig `mapstructure:"storage"`
	Queue   QueueConfig   `mapstructure:"queue"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Server  ServerConfig  `mapstructure:"server"`
}

// RunConfig holds the simulation parameters of one generation run
type RunConfig struct {
	Seed           int64  `mapstructure:"seed"`
	Customers      int    `mapstructure:"customers"`
	Campaigns      int    `mapstructure:"campaigns"`
	Months         int    `mapstructure:"months"`
	StartMonth     string `mapstructure:"start_month"`
	SamplingPolicy string `mapstructure:"sampling_policy"`
	ExposureMin    int    `mapstructure:"exposure_min"`
	ExposureMax    int    `mapstructure:"exposure_max"`
	BuildFeatures  bool   `mapstructure:"build_features"`
}

// StorageConfig represents where tables are persisted
type StorageConfig struct {
	CSVDir   string         `mapstructure:"csv_dir"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig represents the optional PostgreSQL table sink
type PostgresConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the lib/pq connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", p.User, p.Password, p.Host, p.Port, p.Name, p.SSLMode)
}

// QueueConfig represents table event publishing
type QueueConfig struct {
	AMQPURL string `mapstructure:"amqp_url"`
	Topic   string `mapstructure:"topic"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// MetricsConfig represents Prometheus metrics configuration
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// ServerConfig represents the read API
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DefaultConfig returns a configuration that reproduces the reference run
func DefaultConfig() *Config {
	return &Config{
		Run: RunConfig{
			Seed:           42,
			Customers:      25000,
			Campaigns:      40,
			Months:         generator.DefaultMonths,
			StartMonth:     generator.DefaultStartMonth.Format("2006-01"),
			SamplingPolicy: string(generator.SamplingFail),
			ExposureMin:    3000,
			ExposureMax:    9000,
			BuildFeatures:  true,
		},
		Storage: StorageConfig{
			CSVDir: "data",
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "disable",
			},
		},
		Queue: QueueConfig{
			Topic: "tables_ready",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 5,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
	}
}

// StartTime parses Run.StartMonth (YYYY-MM)
func (r RunConfig) StartTime() (time.Time, error) {
	t, err := time.Parse("2006-01", r.StartMonth)
	if err != nil {
		return time.Time{}, appErrors.NewConfigError("start_month", r.StartMonth, "expected YYYY-MM")
	}
	return t, nil
}

// ExposureOptions converts the run settings to generator options
func (r RunConfig) ExposureOptions() generator.ExposureOptions {
	return generator.ExposureOptions{
		Min:    r.ExposureMin,
		Max:    r.ExposureMax,
		Policy: generator.SamplingPolicy(r.SamplingPolicy),
	}
}

// Validate rejects run settings that can only fail once generation has started.
func (r RunConfig) Validate() error {
	if r.Customers <= 0 {
		return appErrors.NewConfigError("customers", r.Customers, "must be positive")
	}
	if r.Campaigns <= 0 {
		return appErrors.NewConfigError("campaigns", r.Campaigns, "must be positive")
	}
	if r.Months <= 0 {
		return appErrors.NewConfigError("months", r.Months, "must be positive")
	}
	if _, err := r.StartTime(); err != nil {
		return err
	}
	opts := r.ExposureOptions()
	if err := opts.Validate(); err != nil {
		return err
	}
	if opts.Policy == generator.SamplingFail && opts.Min > r.Customers {
		return appErrors.NewConfigError("exposure_min", opts.Min,
			fmt.Sprintf("exceeds customers (%d) under the fail sampling policy", r.Customers))
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Run.Validate(); err != nil {
		return err
	}
	if c.Storage.CSVDir == "" {
		return appErrors.NewConfigError("csv_dir", c.Storage.CSVDir, "is required")
	}
	if c.Storage.Postgres.Enabled && c.Storage.Postgres.Name == "" {
		return appErrors.NewConfigError("postgres.name", c.Storage.Postgres.Name, "is required when postgres is enabled")
	}
	if c.Queue.Topic == "" {
		return appErrors.NewConfigError("queue.topic", c.Queue.Topic, "is required")
	}
	return nil
}
