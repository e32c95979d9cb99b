package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatasetPath string   `mapstructure:"DATASET_PATH"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`
	AuthSecret  string   `mapstructure:"AUTH_SECRET"`

	// Cohort matching tolerance bands. One canonical set for every
	// consumer; the historical call sites disagreed with each other.
	AgeTolerance    float64 `mapstructure:"COHORT_AGE_TOL"`
	BMITolerance    float64 `mapstructure:"COHORT_BMI_TOL"`
	HeightTolerance float64 `mapstructure:"COHORT_HEIGHT_TOL"`
	ASATolerance    float64 `mapstructure:"COHORT_ASA_TOL"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DATASET_PATH", "./data/cases.csv")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("COHORT_AGE_TOL", 10)
	v.SetDefault("COHORT_BMI_TOL", 8)
	v.SetDefault("COHORT_HEIGHT_TOL", 4)
	v.SetDefault("COHORT_ASA_TOL", 3)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATASET_PATH")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("AUTH_SECRET")
	v.BindEnv("COHORT_AGE_TOL")
	v.BindEnv("COHORT_BMI_TOL")
	v.BindEnv("COHORT_HEIGHT_TOL")
	v.BindEnv("COHORT_ASA_TOL")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Tolerances must be
// positive or the matcher would reject every record, and production mode
// requires AUTH_SECRET so the dataset reload endpoint is not left open.
func (c *Config) Validate() error {
	if c.DatasetPath == "" {
		return fmt.Errorf("DATASET_PATH is required")
	}
	for name, tol := range map[string]float64{
		"COHORT_AGE_TOL":    c.AgeTolerance,
		"COHORT_BMI_TOL":    c.BMITolerance,
		"COHORT_HEIGHT_TOL": c.HeightTolerance,
		"COHORT_ASA_TOL":    c.ASATolerance,
	} {
		if tol <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, tol)
		}
	}
	if c.IsProduction() && c.AuthSecret == "" {
		return fmt.Errorf("AUTH_SECRET is required in production")
	}
	return nil
}
