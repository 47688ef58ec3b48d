package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type DistributionConfig struct {
	// Seed fixes the balancer's tie-breaking when non-zero; zero means a
	// fresh time seed per process.
	Seed int64
}

type ReconcileConfig struct {
	// Tolerance is the per-field delta below which stored earnings are left
	// untouched.
	Tolerance float64
}

type Config struct {
	Environment  string
	HTTP         HTTPConfig
	DB           DBConfig
	Auth         AuthConfig
	Distribution DistributionConfig
	Reconcile    ReconcileConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Distribution: DistributionConfig{
			Seed: v.GetInt64("DISTRIBUTION_SEED"),
		},
		Reconcile: ReconcileConfig{
			Tolerance: v.GetFloat64("RECONCILE_TOLERANCE"),
		},
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7092
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Reconcile.Tolerance <= 0 {
		cfg.Reconcile.Tolerance = 0.01
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}
