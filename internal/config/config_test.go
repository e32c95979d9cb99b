package config

import (
	"os"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "ENV", "DATASET_PATH", "DATABASE_URL",
		"DB_MAX_CONNS", "DB_MIN_CONNS", "CORS_ORIGINS", "AUTH_SECRET",
		"COHORT_AGE_TOL", "COHORT_BMI_TOL", "COHORT_HEIGHT_TOL", "COHORT_ASA_TOL",
	} {
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("expected development mode by default")
	}
	if cfg.AgeTolerance != 10 || cfg.BMITolerance != 8 || cfg.HeightTolerance != 4 || cfg.ASATolerance != 3 {
		t.Errorf("unexpected default tolerances: %+v", cfg)
	}
	if cfg.DatasetPath == "" {
		t.Error("expected a default dataset path")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("AUTH_SECRET", "topsecret")
	t.Setenv("COHORT_AGE_TOL", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
	if cfg.AgeTolerance != 5 {
		t.Errorf("expected age tolerance 5, got %v", cfg.AgeTolerance)
	}
}

func TestValidate_RejectsNonPositiveTolerance(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.BMITolerance = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero tolerance")
	}
}

func TestValidate_ProductionRequiresSecret(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Env = "production"
	cfg.AuthSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing AUTH_SECRET in production")
	}
	cfg.AuthSecret = "s"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error with secret set: %v", err)
	}
}

func TestValidate_RequiresDatasetPath(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.DatasetPath = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty dataset path")
	}
}
