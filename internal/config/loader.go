package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads .env (if present), then the YAML file at configPath (optional),
// then environment overrides, and validates the result.
func Load(configPath string) (*Config, error) {
	// .env is optional; OS environment wins when it is absent
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if configPath != "" {
		v := viper.New()
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := applyEnvironmentOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnvironmentOverrides applies environment variable overrides to config
func applyEnvironmentOverrides(cfg *Config) error {
	ints := []struct {
		env string
		dst *int
	}{
		{"CREDITSIM_CUSTOMERS", &cfg.Run.Customers},
		{"CREDITSIM_CAMPAIGNS", &cfg.Run.Campaigns},
		{"CREDITSIM_MONTHS", &cfg.Run.Months},
		{"CREDITSIM_EXPOSURE_MIN", &cfg.Run.ExposureMin},
		{"CREDITSIM_EXPOSURE_MAX", &cfg.Run.ExposureMax},
		{"DB_PORT", &cfg.Storage.Postgres.Port},
	}
	for _, o := range ints {
		if s := os.Getenv(o.env); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("%s: %w", o.env, err)
			}
			*o.dst = v
		}
	}

	if s := os.Getenv("CREDITSIM_SEED"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("CREDITSIM_SEED: %w", err)
		}
		cfg.Run.Seed = v
	}
	if s := os.Getenv("CREDITSIM_BUILD_FEATURES"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("CREDITSIM_BUILD_FEATURES: %w", err)
		}
		cfg.Run.BuildFeatures = v
	}

	strs := []struct {
		env string
		dst *string
	}{
		{"CREDITSIM_START_MONTH", &cfg.Run.StartMonth},
		{"CREDITSIM_SAMPLING_POLICY", &cfg.Run.SamplingPolicy},
		{"CREDITSIM_DATA_DIR", &cfg.Storage.CSVDir},
		{"DB_HOST", &cfg.Storage.Postgres.Host},
		{"DB_USER", &cfg.Storage.Postgres.User},
		{"DB_PASSWORD", &cfg.Storage.Postgres.Password},
		{"DB_NAME", &cfg.Storage.Postgres.Name},
		{"AMQP_URL", &cfg.Queue.AMQPURL},
		{"LOG_LEVEL", &cfg.Logging.Level},
		{"LOG_FILE", &cfg.Logging.File},
		{"METRICS_TEXTFILE", &cfg.Metrics.Textfile},
		{"SERVER_ADDR", &cfg.Server.Addr},
	}
	for _, o := range strs {
		if s := os.Getenv(o.env); s != "" {
			*o.dst = s
		}
	}

	// DB_NAME in the environment turns the postgres sink on.
	if os.Getenv("DB_NAME") != "" {
		cfg.Storage.Postgres.Enabled = true
	}
	return nil
}
