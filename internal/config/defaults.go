package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// platformDataDir returns the platform-specific data directory.
//
// Platform paths:
//   - macOS:   ~/Library/Application Support/easyconfd/
//   - Linux:   ~/.local/share/easyconfd/
//   - Windows: %APPDATA%\easyconfd\
//
// Falls back to ~/.easyconfd if platform detection fails.
func platformDataDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return fallbackDataDir()
		}
		return filepath.Join(home, "Library", "Application Support", "easyconfd")
	case "linux":
		if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
			return filepath.Join(dataHome, "easyconfd")
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return fallbackDataDir()
		}
		return filepath.Join(home, ".local", "share", "easyconfd")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "easyconfd")
		}
		return fallbackDataDir()
	default:
		return fallbackDataDir()
	}
}

func fallbackDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".easyconfd"
	}
	return filepath.Join(home, ".easyconfd")
}
