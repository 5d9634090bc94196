package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appName = "finmate"

// ExpandPath resolves a leading ~ to the home directory, then $VAR references.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}

	if rest, ok := strings.CutPrefix(path, "~"); ok && (rest == "" || rest[0] == '/') {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + rest
		}
	}

	return os.ExpandEnv(path)
}

// Dir is where config.yaml is looked up: $XDG_CONFIG_HOME/finmate, else
// ~/.config/finmate.
func Dir() string {
	return xdgDir("XDG_CONFIG_HOME", "~/.config")
}

// DefaultStoragePath is the database location when storage.path is unset:
// $XDG_DATA_HOME/finmate/finmate.db, else ~/.local/share/finmate/finmate.db.
func DefaultStoragePath() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", "~/.local/share"), appName+".db")
}

func xdgDir(env, fallback string) string {
	base := os.Getenv(env)
	if base == "" || !filepath.IsAbs(base) {
		base = ExpandPath(fallback)
	}
	return filepath.Join(base, appName)
}
