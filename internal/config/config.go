package config

// Config represents the application configuration
type Config struct {
	Telegram TelegramConfig
	Panel    PanelConfig
	LogLevel string
}

// TelegramConfig holds the Telegram bot configuration
type TelegramConfig struct {
	Token    string
	AdminIDs []int64
}

// PanelConfig holds the connection settings for one 3x-ui panel
type PanelConfig struct {
	BaseURL   string
	Username  string
	Password  string
	VerifySSL bool

	// Static fallback for connection links when the panel cannot
	// produce one (see PanelService.ConnectionLink).
	FallbackServer string
	FallbackPort   int
	FallbackSNI    string
}
