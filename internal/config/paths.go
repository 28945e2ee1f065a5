package config

import (
	"os"
	"path/filepath"
)

// GetRalphtownHome returns RALPHTOWN_HOME or ~/.ralphtown default
func GetRalphtownHome() string {
	home := os.Getenv("RALPHTOWN_HOME")
	if home == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".ralphtown"
		}
		return filepath.Join(homeDir, ".ralphtown")
	}
	return ExpandPath(home)
}

// GetDBPath returns $RALPHTOWN_HOME/ralphtown.db
func GetDBPath() string {
	return filepath.Join(GetRalphtownHome(), "ralphtown.db")
}

// GetSettingsPath returns $RALPHTOWN_HOME/settings.json
func GetSettingsPath() string {
	return filepath.Join(GetRalphtownHome(), "settings.json")
}

// GetCloneBasePath returns the well-known directory cloned
// repositories land in: ~/ralphtown
func GetCloneBasePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "ralphtown"
	}
	return filepath.Join(homeDir, "ralphtown")
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			if len(path) == 1 {
				return homeDir
			}
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}
