package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	// Set default values
	v.SetDefault("log_level", "info")
	v.SetDefault("XUI_VERIFY_SSL", false)
	v.SetDefault("VLESS_PORT", 443)

	// Define environment variables
	v.BindEnv("TG_TOKEN")
	v.BindEnv("TG_ADMIN_IDS")
	v.BindEnv("XUI_BASE_URL")
	v.BindEnv("XUI_USERNAME")
	v.BindEnv("XUI_PASSWORD")
	v.BindEnv("XUI_VERIFY_SSL")
	v.BindEnv("VLESS_SERVER")
	v.BindEnv("VLESS_PORT")
	v.BindEnv("VLESS_SNI")

	// Create config instance
	cfg := &Config{
		LogLevel: v.GetString("log_level"),
		Telegram: TelegramConfig{
			Token: v.GetString("TG_TOKEN"),
		},
	}

	// Parse admin IDs
	adminIDsStr := v.GetString("TG_ADMIN_IDS")
	if adminIDsStr != "" {
		adminIDsSlice := strings.Split(adminIDsStr, ",")
		adminIDs := make([]int64, 0, len(adminIDsSlice))
		for _, idStr := range adminIDsSlice {
			var id int64
			if _, err := fmt.Sscanf(strings.TrimSpace(idStr), "%d", &id); err == nil {
				adminIDs = append(adminIDs, id)
			}
		}
		cfg.Telegram.AdminIDs = adminIDs
	}

	// Parse panel configuration
	cfg.Panel = PanelConfig{
		BaseURL:        strings.TrimRight(strings.TrimSpace(v.GetString("XUI_BASE_URL")), "/"),
		Username:       strings.TrimSpace(v.GetString("XUI_USERNAME")),
		Password:       strings.TrimSpace(v.GetString("XUI_PASSWORD")),
		VerifySSL:      v.GetBool("XUI_VERIFY_SSL"),
		FallbackServer: strings.TrimSpace(v.GetString("VLESS_SERVER")),
		FallbackPort:   v.GetInt("VLESS_PORT"),
		FallbackSNI:    strings.TrimSpace(v.GetString("VLESS_SNI")),
	}

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Telegram.Token == "" {
		return errors.New("TG_TOKEN is required")
	}

	if len(cfg.Telegram.AdminIDs) == 0 {
		return errors.New("TG_ADMIN_IDS is required")
	}

	// Validate panel configuration
	if cfg.Panel.BaseURL == "" {
		return errors.New("XUI_BASE_URL is required")
	}
	if cfg.Panel.Username == "" {
		return errors.New("XUI_USERNAME is required")
	}
	if cfg.Panel.Password == "" {
		return errors.New("XUI_PASSWORD is required")
	}

	return nil
}
