package config

import (
	"testing"
	"time"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
}

func TestLoad_DefaultsInDevelopment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/toeic")
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")
	t.Setenv("JWT_TTL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("expected :8080 got %q", cfg.Addr())
	}
	if cfg.JWTSecret == "" {
		t.Fatalf("expected dev secret fallback")
	}
	if cfg.JWTTTL != 72*time.Hour {
		t.Fatalf("expected 72h ttl got %v", cfg.JWTTTL)
	}
}

func TestLoad_ProductionNeedsSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/toeic")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without JWT_SECRET in production")
	}
}

func TestLoad_ParsesOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/toeic")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("PORT", ":9090")
	t.Setenv("DB_CONNECT_RETRIES", "0")
	t.Setenv("DB_RETRY_INTERVAL", "250ms")
	t.Setenv("AUTO_MIGRATE", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != ":9090" {
		t.Fatalf("unexpected addr %q", cfg.Addr())
	}
	if cfg.DBConnectTries != 1 {
		t.Fatalf("retries should clamp to 1, got %d", cfg.DBConnectTries)
	}
	if cfg.DBRetryInterval != 250*time.Millisecond {
		t.Fatalf("unexpected interval %v", cfg.DBRetryInterval)
	}
	if cfg.AutoMigrate {
		t.Fatalf("expected AutoMigrate=false")
	}
}
