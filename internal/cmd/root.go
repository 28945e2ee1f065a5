// Package cmd wires the command-line interface: flag parsing, settings
// precedence, logging setup and the dependency container.
package cmd

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ralphtown/ralphtown/internal/config"
	"github.com/ralphtown/ralphtown/internal/logging"
)

// CLI represents the command-line interface structure
type CLI struct {
	Version     kong.VersionFlag `help:"Show version information"`
	Debug       bool             `help:"Enable debug logging" short:"d"`
	DebugFile   string           `help:"Custom path for the log file (disables automatic cleanup)"`
	LogToFile   bool             `help:"Write logs to a rotated file instead of stderr"`
	MaxLogFiles int              `help:"Maximum number of log files to keep (0 = unlimited)" default:"1000"`

	Serve   ServeCmd   `cmd:"" help:"Start the ralphtown API server (default)" default:"1"`
	Status  StatusCmd  `cmd:"" help:"Show server health and session summary"`
	Service ServiceCmd `cmd:"" help:"Manage the background server service"`

	// Internal fields (not flags)
	Container *Container       `kong:"-"`
	settings  *config.Settings `kong:"-"`
}

// SetSettings sets the settings on the CLI struct
func (c *CLI) SetSettings(settings *config.Settings) {
	c.settings = settings
}

// AfterApply initializes logging after CLI parsing and applies settings
func (c *CLI) AfterApply() error {
	// Apply settings with precedence: CLI flags > env vars > settings.json > defaults

	if c.settings != nil {
		if c.MaxLogFiles == 1000 {
			if _, hasEnv := os.LookupEnv("RALPHTOWN_MAX_LOG_FILES"); !hasEnv {
				if c.settings.MaxLogFiles != nil {
					c.MaxLogFiles = *c.settings.MaxLogFiles
				}
			}
		}

		if !c.Debug {
			if _, hasEnv := os.LookupEnv("RALPHTOWN_DEBUG"); !hasEnv {
				if c.settings.Debug != nil && *c.settings.Debug {
					c.Debug = true
				}
			}
		}
	}

	// Initialize logging first and get the log file path
	logFilePath, err := logging.Initialize(c.Debug, c.DebugFile, c.MaxLogFiles, c.LogToFile)
	if err != nil {
		return err
	}

	// Set environment variables AFTER initialization so agent processes
	// inherit the debug settings and append to the SAME log file
	if c.Debug {
		os.Setenv("RALPHTOWN_DEBUG", "1")
	}
	if logFilePath != "" {
		os.Setenv("RALPHTOWN_LOG_FILE", logFilePath)
	}

	// Create container AFTER logging is initialized; the GORM logger
	// writes through logging.Logger
	container, err := NewContainer(c.settings)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	c.Container = container

	return nil
}

// Close closes all resources held by the CLI
func (c *CLI) Close() error {
	if c.Container != nil {
		return c.Container.Close()
	}
	return nil
}
