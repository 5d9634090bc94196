package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finmate/internal/common"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cfg.Server.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Server.Timeout)
	assert.Equal(t, 5, cfg.Chat.ExpenseLimit)
	assert.True(t, cfg.Chat.Sound)
	assert.False(t, cfg.Chat.UseAITips)
	assert.Equal(t, ThemeAuto, cfg.UI.Theme)
	assert.NotContains(t, cfg.Storage.Path, "~")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  base_url: https://finmate.example.com/
  timeout: 5s
  cookie: session=abc
chat:
  expense_limit: 10
  sound: false
ui:
  theme: Dark
`), 0o600))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://finmate.example.com", cfg.Server.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "session=abc", cfg.Server.Cookie)
	assert.Equal(t, 10, cfg.Chat.ExpenseLimit)
	assert.False(t, cfg.Chat.Sound)
	assert.Equal(t, ThemeDark, cfg.UI.Theme)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FINMATE_SERVER_BASE_URL", "http://10.0.0.2:8080")
	t.Setenv("FINMATE_CHAT_USE_AI_TIPS", "true")

	v := viper.New()
	SetDefaults(v)
	BindEnv(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2:8080", cfg.Server.BaseURL)
	assert.True(t, cfg.Chat.UseAITips)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		want  error
		key   string
		value any
		name  string
	}{
		{name: "empty url", key: "server.base_url", value: " ", want: common.ErrMissingConfig},
		{name: "zero timeout", key: "server.timeout", value: "0s", want: common.ErrInvalidConfig},
		{name: "limit too small", key: "chat.expense_limit", value: 0, want: common.ErrInvalidConfig},
		{name: "limit too large", key: "chat.expense_limit", value: 500, want: common.ErrInvalidConfig},
		{name: "unknown theme", key: "ui.theme", value: "solarized", want: common.ErrInvalidConfig},
		{name: "no storage", key: "storage.path", value: "", want: common.ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("FINMATE_TEST_DIR", "/srv/finmate")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "data", "f.db"), ExpandPath("~/data/f.db"))
	assert.Equal(t, "/srv/finmate/f.db", ExpandPath("$FINMATE_TEST_DIR/f.db"))
	assert.Equal(t, "~user/f.db", ExpandPath("~user/f.db"))
}

func TestXDGLocations(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("XDG_CONFIG_HOME", "/etc/xdg")
	t.Setenv("XDG_DATA_HOME", "")
	assert.Equal(t, "/etc/xdg/finmate", Dir())
	assert.Equal(t, filepath.Join(home, ".local", "share", "finmate", "finmate.db"), DefaultStoragePath())

	t.Setenv("XDG_CONFIG_HOME", "relative/dir")
	t.Setenv("XDG_DATA_HOME", "/var/data")
	assert.Equal(t, filepath.Join(home, ".config", "finmate"), Dir())
	assert.Equal(t, "/var/data/finmate/finmate.db", DefaultStoragePath())
}
