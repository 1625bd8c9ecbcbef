package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port              string `mapstructure:"PORT"`
	Env               string `mapstructure:"ENV"`
	DataDir           string `mapstructure:"DATA_DIR"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DBMaxConns        int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns        int32  `mapstructure:"DB_MIN_CONNS"`
	SessionSecret     string `mapstructure:"SESSION_SECRET"`
	SessionTTLMinutes int    `mapstructure:"SESSION_TTL_MINUTES"`
	CORSOrigins       string `mapstructure:"CORS_ORIGINS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8600")
	v.SetDefault("ENV", "development")
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("SESSION_TTL_MINUTES", 720)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATA_DIR")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("SESSION_SECRET")
	v.BindEnv("SESSION_TTL_MINUTES")
	v.BindEnv("CORS_ORIGINS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// UsePostgres reports whether the Postgres-backed store should be used
// instead of the default JSON-file store.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Validate checks that the configuration is safe to run. Outside development
// a real SESSION_SECRET must be configured; in development a fixed fallback
// is substituted at startup so the server runs with zero setup.
func (c *Config) Validate() error {
	if c.SessionSecret == "" && !c.IsDev() {
		return fmt.Errorf("SESSION_SECRET is required when ENV is not development")
	}
	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive, got %d", c.SessionTTLMinutes)
	}
	return nil
}
