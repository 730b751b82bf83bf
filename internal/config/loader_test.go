package config

import "testing"

func setRequiredEnv(t *testing.T) {
	t.Setenv("TG_TOKEN", "123:abc")
	t.Setenv("TG_ADMIN_IDS", "100, 200")
	t.Setenv("XUI_BASE_URL", "https://panel.example.com:2053/")
	t.Setenv("XUI_USERNAME", "admin")
	t.Setenv("XUI_PASSWORD", "secret")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("VLESS_SERVER", "vpn.example.com")
	t.Setenv("VLESS_SNI", "cdn.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Panel.BaseURL != "https://panel.example.com:2053" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.Panel.BaseURL)
	}
	if len(cfg.Telegram.AdminIDs) != 2 || cfg.Telegram.AdminIDs[0] != 100 || cfg.Telegram.AdminIDs[1] != 200 {
		t.Errorf("unexpected admin IDs: %v", cfg.Telegram.AdminIDs)
	}
	if cfg.Panel.VerifySSL {
		t.Error("expected VerifySSL to default to false")
	}
	if cfg.Panel.FallbackServer != "vpn.example.com" || cfg.Panel.FallbackPort != 443 {
		t.Errorf("unexpected fallback endpoint: %s:%d", cfg.Panel.FallbackServer, cfg.Panel.FallbackPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %q", cfg.LogLevel)
	}
}

func TestLoadMissingToken(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TG_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing TG_TOKEN")
	}
}

func TestLoadMissingPanelCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("XUI_PASSWORD", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing XUI_PASSWORD")
	}
}
