package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ENV", "LOG_LEVEL", "TRIAGE_BACKEND", "TRIAGE_MIN_URGENCY", "TRIAGE_MAX_URGENCY", "STORE_TIMEOUT", "APPOINTMENT_BACKEND"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.TriageBackend != BackendMemory {
		t.Fatalf("expected memory triage backend, got %s", cfg.TriageBackend)
	}
	if cfg.TriageMinUrgency != 1 || cfg.TriageMaxUrgency != 5 {
		t.Fatalf("expected urgency range 1-5, got %d-%d", cfg.TriageMinUrgency, cfg.TriageMaxUrgency)
	}
	if cfg.StoreTimeout != 5*time.Second {
		t.Fatalf("expected default store timeout, got %s", cfg.StoreTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("TRIAGE_BACKEND", " Postgres ")
	t.Setenv("TRIAGE_MAX_URGENCY", "3")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("STORE_TIMEOUT", "750ms")
	t.Setenv("NOTE_HISTORY_LIMIT", "not-a-number")
	cfg := Load()
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.TriageBackend != BackendPostgres {
		t.Fatalf("expected normalized backend, got %q", cfg.TriageBackend)
	}
	if cfg.TriageMaxUrgency != 3 {
		t.Fatalf("expected max urgency override, got %d", cfg.TriageMaxUrgency)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if cfg.StoreTimeout != 750*time.Millisecond {
		t.Fatalf("expected store timeout override, got %s", cfg.StoreTimeout)
	}
	if cfg.NoteHistoryLimit != 100 {
		t.Fatalf("invalid int should fall back to default, got %d", cfg.NoteHistoryLimit)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"inverted range", func(c *Config) { c.TriageMinUrgency = 6 }, "exceeds"},
		{"unknown triage backend", func(c *Config) { c.TriageBackend = "sqlite" }, "TRIAGE_BACKEND"},
		{"unknown appointment backend", func(c *Config) { c.AppointmentBackend = "postgres" }, "APPOINTMENT_BACKEND"},
		{"postgres without url", func(c *Config) { c.TriageBackend = BackendPostgres; c.DatabaseURL = "" }, "DATABASE_URL"},
		{"negative note limit", func(c *Config) { c.NoteHistoryLimit = -1 }, "NOTE_HISTORY_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				TriageBackend:      BackendMemory,
				AppointmentBackend: BackendMemory,
				TriageMinUrgency:   1,
				TriageMaxUrgency:   5,
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNeedsRedis(t *testing.T) {
	cfg := &Config{TriageBackend: BackendMemory, AppointmentBackend: BackendMemory}
	if cfg.NeedsRedis() {
		t.Fatal("memory backends should not need redis")
	}
	cfg.AppointmentBackend = BackendRedis
	if !cfg.NeedsRedis() {
		t.Fatal("redis appointment backend should need redis")
	}
}
