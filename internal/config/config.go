// Package config loads the finmate client configuration from file,
// environment, and flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/finmate/internal/common"
)

// Theme overrides.
const (
	ThemeAuto  = ""
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Config is the client configuration.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	UI      UIConfig
	Chat    ChatConfig
}

// ServerConfig locates the FinMate server.
type ServerConfig struct {
	BaseURL string
	Cookie  string
	Timeout time.Duration
}

// ChatConfig tunes the conversation.
type ChatConfig struct {
	ExpenseLimit int
	Sound        bool
	UseAITips    bool
}

// StorageConfig locates the local database.
type StorageConfig struct {
	Path string
}

// UIConfig holds display settings. Theme, when set, wins over the saved
// dark-mode preference.
type UIConfig struct {
	Theme string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.base_url", "http://localhost:5000")
	v.SetDefault("server.timeout", 15*time.Second)
	v.SetDefault("server.cookie", "")
	v.SetDefault("chat.expense_limit", 5)
	v.SetDefault("chat.sound", true)
	v.SetDefault("chat.use_ai_tips", false)
	v.SetDefault("storage.path", DefaultStoragePath())
	v.SetDefault("ui.theme", ThemeAuto)
}

// BindEnv makes FINMATE_SERVER_BASE_URL and friends override file settings.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix("FINMATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			BaseURL: strings.TrimRight(strings.TrimSpace(v.GetString("server.base_url")), "/"),
			Timeout: v.GetDuration("server.timeout"),
			Cookie:  v.GetString("server.cookie"),
		},
		Chat: ChatConfig{
			ExpenseLimit: v.GetInt("chat.expense_limit"),
			Sound:        v.GetBool("chat.sound"),
			UseAITips:    v.GetBool("chat.use_ai_tips"),
		},
		Storage: StorageConfig{
			Path: ExpandPath(v.GetString("storage.path")),
		},
		UI: UIConfig{
			Theme: strings.ToLower(strings.TrimSpace(v.GetString("ui.theme"))),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the client cannot work with.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("%w: server.base_url", common.ErrMissingConfig)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("%w: server.timeout must be positive, got %s", common.ErrInvalidConfig, c.Server.Timeout)
	}
	if c.Chat.ExpenseLimit < 1 || c.Chat.ExpenseLimit > 100 {
		return fmt.Errorf("%w: chat.expense_limit must be between 1 and 100, got %d", common.ErrInvalidConfig, c.Chat.ExpenseLimit)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("%w: storage.path", common.ErrMissingConfig)
	}
	switch c.UI.Theme {
	case ThemeAuto, ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("%w: ui.theme must be dark or light, got %q", common.ErrInvalidConfig, c.UI.Theme)
	}
	return nil
}
