package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8600" {
		t.Errorf("Port = %q, want 8600", cfg.Port)
	}
	if cfg.DataDir != "./data" {
		t.Errorf("DataDir = %q, want ./data", cfg.DataDir)
	}
	if cfg.SessionTTLMinutes != 720 {
		t.Errorf("SessionTTLMinutes = %d, want 720", cfg.SessionTTLMinutes)
	}
	if cfg.UsePostgres() {
		t.Error("UsePostgres true without DATABASE_URL")
	}
}

func TestValidate(t *testing.T) {
	dev := &Config{Env: "development", SessionTTLMinutes: 60}
	if err := dev.Validate(); err != nil {
		t.Errorf("dev config rejected: %v", err)
	}

	prod := &Config{Env: "production", SessionTTLMinutes: 60}
	if err := prod.Validate(); err == nil {
		t.Error("production without SESSION_SECRET accepted")
	}

	prod.SessionSecret = "s3cret"
	if err := prod.Validate(); err != nil {
		t.Errorf("valid production config rejected: %v", err)
	}

	prod.SessionTTLMinutes = 0
	if err := prod.Validate(); err == nil {
		t.Error("zero session TTL accepted")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("DATABASE_URL", "postgres://localhost/clinic")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9100" {
		t.Errorf("Port = %q, want 9100", cfg.Port)
	}
	if !cfg.UsePostgres() {
		t.Error("UsePostgres false with DATABASE_URL set")
	}
}
