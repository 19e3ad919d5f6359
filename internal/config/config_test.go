package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Environment != "development" {
		t.Errorf("Expected default environment development, got %s", cfg.Server.Environment)
	}
	if cfg.Database.Name != "task_platform" {
		t.Errorf("Expected default database name task_platform, got %s", cfg.Database.Name)
	}
	if cfg.Cache.TTLShort != 60*time.Second {
		t.Errorf("Expected short TTL 60s, got %v", cfg.Cache.TTLShort)
	}
	if cfg.Cache.TTLMedium != 5*time.Minute {
		t.Errorf("Expected medium TTL 5m, got %v", cfg.Cache.TTLMedium)
	}
	if cfg.Auth.AccessTokenTTL != 30*time.Minute {
		t.Errorf("Expected access token TTL 30m, got %v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.RefreshTokenTTL != 7*24*time.Hour {
		t.Errorf("Expected refresh token TTL 168h, got %v", cfg.Auth.RefreshTokenTTL)
	}
	if cfg.Worker.MaxTries != 3 {
		t.Errorf("Expected 3 max tries, got %d", cfg.Worker.MaxTries)
	}
	if len(cfg.Worker.Queues) != 3 {
		t.Errorf("Expected 3 default queues, got %v", cfg.Worker.Queues)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL_SHORT", "2m")
	t.Setenv("WORKER_QUEUES", "email, critical ,default")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Cache.TTLShort != 2*time.Minute {
		t.Errorf("Expected short TTL 2m, got %v", cfg.Cache.TTLShort)
	}
	if cfg.RateLimit.Enabled {
		t.Error("Expected rate limiting disabled")
	}

	want := []string{"email", "critical", "default"}
	if len(cfg.Worker.Queues) != len(want) {
		t.Fatalf("Expected %d queues, got %v", len(want), cfg.Worker.Queues)
	}
	for i, queue := range want {
		if cfg.Worker.Queues[i] != queue {
			t.Errorf("Expected queue %s at position %d, got %s", queue, i, cfg.Worker.Queues[i])
		}
	}
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("READ_TIMEOUT", "not-a-duration")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("Expected fallback to 25 open conns, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Expected fallback to 30s read timeout, got %v", cfg.Server.ReadTimeout)
	}
}

func TestLoadConfig_ProductionGuards(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("JWT_SECRET", "real-secret")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error for missing database password in production")
	}

	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET", "your-secret-key")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error for default JWT secret in production")
	}

	t.Setenv("JWT_SECRET", "real-secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected valid production config, got %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("Expected IsProduction to be true")
	}
}

func TestConfig_AddressHelpers(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetServerAddr() != "localhost:8080" {
		t.Errorf("Expected localhost:8080, got %s", cfg.GetServerAddr())
	}
	if cfg.GetRedisAddr() != "localhost:6379" {
		t.Errorf("Expected localhost:6379, got %s", cfg.GetRedisAddr())
	}
	if cfg.GetDatabaseDSN() == "" {
		t.Error("Expected a non-empty database DSN")
	}
}
