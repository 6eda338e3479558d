package config

import "testing"

func TestNewFromEnv(t *testing.T) {
	t.Run("MissingJWTSecret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		if _, err := NewFromEnv(); err == nil {
			t.Errorf("Expected an error when JWT_SECRET is not set, got nil")
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("HTTP_ADDR", "")
		t.Setenv("DATABASE_PATH", "")
		t.Setenv("ALLOWED_ORIGINS", "")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.HTTPAddr != ":8080" {
			t.Errorf("Expected default HTTP addr :8080, got %s", cfg.HTTPAddr)
		}
		if cfg.DatabasePath != "data/grocerease.db" {
			t.Errorf("Expected default database path, got %s", cfg.DatabasePath)
		}
		if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:5173" {
			t.Errorf("Expected default allowed origins, got %v", cfg.AllowedOrigins)
		}
	})

	t.Run("ParsesOriginsAndAllowList", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
		t.Setenv("TELEGRAM_ALLOW_USER_IDS", "123, 456")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
			t.Errorf("Expected two parsed origins, got %v", cfg.AllowedOrigins)
		}
		if len(cfg.TelegramAllowUserIDs) != 2 || cfg.TelegramAllowUserIDs[0] != 123 {
			t.Errorf("Expected parsed user ids [123 456], got %v", cfg.TelegramAllowUserIDs)
		}
	})

	t.Run("BadAllowListEntry", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("TELEGRAM_ALLOW_USER_IDS", "123,abc")
		if _, err := NewFromEnv(); err == nil {
			t.Errorf("Expected an error for a non-numeric user id, got nil")
		}
	})
}
