package config

import (
	"testing"
)

func TestNewBuildsDatabaseURLFromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASSWORD", "p")
	t.Setenv("DB_NAME", "n")
	t.Setenv("DB_SSLMODE", "require")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "postgres://u:p@db:6543/n?sslmode=require"
	if cfg.DatabaseURL != want {
		t.Fatalf("expected %q, got %q", want, cfg.DatabaseURL)
	}
}

func TestNewKeepsExplicitDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://explicit/db")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DatabaseURL != "postgres://explicit/db" {
		t.Fatalf("expected explicit url to win, got %q", cfg.DatabaseURL)
	}
}

func TestNewSplitsCORSOriginsAndNormalisesUploadPrefix(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("UPLOAD_URL_PREFIX", "/media")

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %#v", cfg.CORSOrigins)
	}
	if cfg.UploadURL != "/media/" {
		t.Fatalf("expected trailing slash on upload prefix, got %q", cfg.UploadURL)
	}
}

func TestNewRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "many")

	if _, err := New(); err == nil {
		t.Fatal("expected error for non-numeric RATE_LIMIT_REQUESTS")
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := &Config{Environment: "production"}
	if !cfg.IsProduction() || cfg.IsDevelopment() {
		t.Fatalf("unexpected environment helpers for %q", cfg.Environment)
	}
}
