package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadContext_Defaults(t *testing.T) {
	cfg, err := LoadContext(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadContext returned error: %v", err)
	}

	if cfg.Port != "8080" || cfg.OpsPort != "9090" || cfg.Env != "development" {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("expected 7 day token ttl, got %v", cfg.TokenTTL)
	}
	if cfg.Mongo.Database != "office_attendance" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected store defaults: %+v %+v", cfg.Mongo, cfg.Redis)
	}
	if cfg.Headcount.Cron != "30 9 * * 1-5" || !cfg.Headcount.Enabled || cfg.Headcount.Workers != 8 {
		t.Fatalf("unexpected headcount defaults: %+v", cfg.Headcount)
	}
	if cfg.SMTP.Host != "" || cfg.FCM.ProjectID != "" {
		t.Fatalf("delivery channels should be off by default")
	}
}

func TestLoadContext_Overrides(t *testing.T) {
	cfg, err := LoadContext(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":               "production",
		"JWT_SECRET":        "s3cret",
		"TIMEZONE":          "Asia/Kolkata",
		"TOKEN_TTL":         "24h",
		"SMTP_HOST":         "smtp.example.com",
		"SMTP_PORT":         "2525",
		"HEADCOUNT_ENABLED": "false",
	}))
	if err != nil {
		t.Fatalf("LoadContext returned error: %v", err)
	}

	if cfg.IsDevelopment() {
		t.Fatalf("expected production env")
	}
	if cfg.Location().String() != "Asia/Kolkata" {
		t.Fatalf("unexpected location %v", cfg.Location())
	}
	if cfg.TokenTTL != 24*time.Hour || cfg.SMTP.Port != 2525 || cfg.Headcount.Enabled {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadContext_RequiresSecretOutsideDevelopment(t *testing.T) {
	_, err := LoadContext(context.Background(), envconfig.MapLookuper(map[string]string{"ENV": "production"}))
	if err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoadContext_InvalidTimezone(t *testing.T) {
	_, err := LoadContext(context.Background(), envconfig.MapLookuper(map[string]string{"TIMEZONE": "Mars/Olympus"}))
	if err == nil {
		t.Fatalf("expected error for unknown time zone")
	}
}
