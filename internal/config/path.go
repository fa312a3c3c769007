package config

import (
	"os"
	"path/filepath"
)

// DefaultDataDir returns the default store directory based on the host OS.
// XDG_DATA_HOME wins; otherwise it prefers the per-user application data
// location and falls back to a dotdir in the home directory.
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "rofka")
	}
	if err != nil || homeDir == "" {
		return "./rofka"
	}

	// Linux: ~/.local/share/rofka when the XDG default layout exists
	if isDir(filepath.Join(homeDir, ".local", "share")) {
		return filepath.Join(homeDir, ".local", "share", "rofka")
	}

	// macOS: ~/Library/Application Support/Rofka
	if isDir(filepath.Join(homeDir, "Library")) {
		return filepath.Join(homeDir, "Library", "Application Support", "Rofka")
	}

	// Windows: %USERPROFILE%/AppData/Local/Rofka
	if isDir(filepath.Join(homeDir, "AppData")) {
		return filepath.Join(homeDir, "AppData", "Local", "Rofka")
	}

	// Fallback: ~/.rofka
	return filepath.Join(homeDir, ".rofka")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
