package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		AppEnv:        "dev",
		HTTPAddr:      ":8080",
		MetricsAddr:   ":9090",
		DatabaseDSN:   "postgres://localhost/expdeck",
		Env:           "prod",
		StoreType:     "postgres",
		AdminAPIKey:   "admin-123",
		BucketingSalt: "fixed-salt",
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestValidate_BadStoreType(t *testing.T) {
	cfg := validConfig()
	cfg.StoreType = "redis"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected error for unsupported store type")
	}
	if !strings.Contains(err.Error(), "STORE_TYPE") {
		t.Errorf("Expected error to name STORE_TYPE, got %v", err)
	}
}

func TestValidate_PostgresRequiresDSN(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseDSN = ""

	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for postgres store without DSN")
	}

	// Memory store does not need one.
	cfg.StoreType = "memory"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected memory store without DSN to be valid, got %v", err)
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty http addr", func(c *Config) { c.HTTPAddr = "" }, "APP_HTTP_ADDR"},
		{"empty metrics addr", func(c *Config) { c.MetricsAddr = "" }, "METRICS_ADDR"},
		{"empty env", func(c *Config) { c.Env = "" }, "ENV"},
		{"empty salt", func(c *Config) { c.BucketingSalt = "" }, "BUCKETING_SALT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Expected error to name %s, got %v", tt.field, err)
			}
		})
	}
}

func TestValidate_ProductionRejectsDefaultAdminKey(t *testing.T) {
	cfg := validConfig()
	cfg.AppEnv = "prod"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected error for default admin key in production")
	}
	if !strings.Contains(err.Error(), "ADMIN_API_KEY") {
		t.Errorf("Expected error to name ADMIN_API_KEY, got %v", err)
	}

	cfg.AdminAPIKey = "real-production-key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid production config, got %v", err)
	}
}

func TestValidate_ProductionRejectsGeneratedSalt(t *testing.T) {
	cfg := validConfig()
	cfg.AppEnv = "prod"
	cfg.AdminAPIKey = "real-production-key"
	cfg.saltWasGenerated = true

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected error for auto-generated salt in production")
	}
	if !strings.Contains(err.Error(), "BUCKETING_SALT") {
		t.Errorf("Expected error to name BUCKETING_SALT, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPAddr == "" {
		t.Error("Expected default HTTP address")
	}
	if cfg.BucketingSalt == "" {
		t.Error("Expected a bucketing salt (configured or generated)")
	}
}
