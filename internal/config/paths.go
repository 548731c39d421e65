package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDataDir returns $XDG_DATA_HOME/todo, or ~/.local/share/todo when
// XDG_DATA_HOME is unset.
func DefaultDataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve data dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", AppName), nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/todo/config.toml, or the
// platform user config directory when XDG_CONFIG_HOME is unset.
func DefaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, ConfigFileName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, AppName, ConfigFileName), nil
}

// expandPath expands a leading ~ and environment variables in p.
func expandPath(p string) string {
	if p == "" {
		return p
	}

	expanded := os.ExpandEnv(p)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return expanded
		}
		return filepath.Join(home, strings.TrimPrefix(expanded[1:], "/"))
	}
	return expanded
}
