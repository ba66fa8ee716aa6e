package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.App.Env != "local" {
		t.Fatalf("expected local env, got %q", cfg.App.Env)
	}
	if cfg.App.Port != 8000 {
		t.Fatalf("expected default port 8000, got %d", cfg.App.Port)
	}
	if cfg.Webhook.URL != "http://localhost:8001/api/webhooks/third-party/sync" {
		t.Fatalf("unexpected default webhook url: %q", cfg.Webhook.URL)
	}
	if cfg.Webhook.Timeout != 5*time.Second {
		t.Fatalf("expected 5s webhook timeout, got %s", cfg.Webhook.Timeout)
	}
	if len(cfg.Frontend.Origins) != 2 {
		t.Fatalf("expected 2 default frontend origins, got %v", cfg.Frontend.Origins)
	}
}

func TestLoad_EmptyWebhookURLStartsUnconfigured(t *testing.T) {
	t.Setenv("WEBHOOK_URL", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Webhook.URL != "" {
		t.Fatalf("expected empty webhook url, got %q", cfg.Webhook.URL)
	}
}

func TestLoad_FrontendOriginsParsing(t *testing.T) {
	t.Setenv("FRONTEND_ORIGINS", "http://localhost:3000, https://app.example.com ,")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(cfg.Frontend.Origins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.Frontend.Origins)
	}
	if cfg.Frontend.Origins[1] != "https://app.example.com" {
		t.Fatalf("unexpected origin: %q", cfg.Frontend.Origins[1])
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("APP_ENV", "space")
	t.Setenv("APP_PORT", "70000")
	t.Setenv("WEBHOOK_URL", "ftp://example.com/hook")
	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"APP_ENV", "APP_PORT", "WEBHOOK_URL"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error mentioning %s, got: %v", want, err)
		}
	}
}

func TestValidate_WebhookTimeout(t *testing.T) {
	t.Setenv("WEBHOOK_TIMEOUT", "not-a-duration")
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error for WEBHOOK_TIMEOUT")
	}
}
