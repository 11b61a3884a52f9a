package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.ServerPort)
	}
	if cfg.JWTExpire != 30*24*time.Hour {
		t.Errorf("expected 30d lifetime, got %s", cfg.JWTExpire)
	}
	if cfg.MaxUploadBytes != 5<<20 {
		t.Errorf("expected 5MiB upload cap, got %d", cfg.MaxUploadBytes)
	}
	if !cfg.ExposeErrors {
		t.Error("expected error detail exposed outside production")
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
}

func TestFromEnvProductionHidesErrors(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.ExposeErrors {
		t.Error("expected error detail hidden in production")
	}
	if !cfg.IsProduction() {
		t.Error("expected IsProduction")
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("expected 2 origins, got %v", cfg.CORSOrigins)
	}
}

func TestFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestParseLifetime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30d", 30 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"0d", 0, true},
		{"-1h", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLifetime(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLifetime(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLifetime(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLifetime(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
