package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultListenAddr is where the API server binds unless overridden
const DefaultListenAddr = "127.0.0.1:3000"

// Settings represents the structure of ~/.ralphtown/settings.json
type Settings struct {
	AgentBin    string `json:"agent_bin,omitempty"`
	CloneDir    string `json:"clone_dir,omitempty"`
	DBPath      string `json:"db_path,omitempty"`
	Debug       *bool  `json:"debug,omitempty"`
	ListenAddr  string `json:"listen_addr,omitempty"`
	MaxLogFiles *int   `json:"max_log_files,omitempty"`
}

// LoadSettings loads settings from $RALPHTOWN_HOME/settings.json.
// Returns empty Settings if the file doesn't exist (not an error).
func LoadSettings() (*Settings, error) {
	path := GetSettingsPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil // Not an error, use defaults
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("invalid settings.json: %w", err)
	}

	// Expand ~ in configured paths
	if settings.CloneDir != "" {
		settings.CloneDir = ExpandPath(settings.CloneDir)
	}
	if settings.DBPath != "" {
		settings.DBPath = ExpandPath(settings.DBPath)
	}

	return &settings, nil
}

// SaveSettings saves settings to $RALPHTOWN_HOME/settings.json
func SaveSettings(settings *Settings) error {
	if err := os.MkdirAll(GetRalphtownHome(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(GetSettingsPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}
