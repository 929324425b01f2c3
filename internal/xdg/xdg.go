// Package xdg resolves XDG Base Directory paths for menagerie.
//
// It falls back to the traditional locations when the XDG environment
// variables are not set and creates the directories with private permissions.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "menagerie"

// ConfigDir returns the XDG config directory for menagerie.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/menagerie when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return dir("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for menagerie.
// It falls back to ~/.local/state/menagerie when XDG_STATE_HOME is unset.
func StateDir() (string, error) {
	return dir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func dir(env, fallback string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, fallback)
	}
	d := filepath.Join(base, appName)
	if err := os.MkdirAll(d, 0o700); err != nil { // private dir
		return "", err
	}
	return d, nil
}
