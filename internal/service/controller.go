// Package service installs and controls the background server process
// through the operating system's service manager (launchd, systemd or
// Windows services).
package service

import (
	"errors"
	"fmt"

	ksvc "github.com/kardianos/service"
)

// serviceLabel identifies the managed service across platforms.
const serviceLabel = "com.ralphtown.server"

// StatusInfo describes the background service as reported by the
// platform service manager.
type StatusInfo struct {
	Installed bool   `json:"installed"`
	Label     string `json:"label"`
	Running   bool   `json:"running"`
	Status    string `json:"status"`
}

// Controller wraps the platform service manager for the ralphtown server.
type Controller struct {
	svc ksvc.Service
}

// program satisfies the service runtime interface. The managed unit
// runs "ralphtown serve" directly, so Start and Stop have nothing to do.
type program struct{}

func (program) Start(ksvc.Service) error { return nil }

func (program) Stop(ksvc.Service) error { return nil }

// NewController builds a controller for the current executable.
func NewController() (*Controller, error) {
	cfg := &ksvc.Config{
		Name:        serviceLabel,
		DisplayName: "Ralphtown Server",
		Description: "Ralphtown local orchestration server for coding agent sessions",
		Arguments:   []string{"serve", "--log-to-file"},
	}

	svc, err := ksvc.New(program{}, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create service controller: %w", err)
	}

	return &Controller{svc: svc}, nil
}

// Install registers the service with the platform service manager.
func (c *Controller) Install() error {
	if err := c.svc.Install(); err != nil {
		return fmt.Errorf("failed to install service: %w", err)
	}
	return nil
}

// Uninstall stops the service if needed and removes its registration.
func (c *Controller) Uninstall() error {
	// A running service cannot be removed on every platform, so stop it
	// first and ignore the error when it was not running.
	_ = c.svc.Stop()

	if err := c.svc.Uninstall(); err != nil {
		return fmt.Errorf("failed to uninstall service: %w", err)
	}
	return nil
}

// Start launches the installed service.
func (c *Controller) Start() error {
	if err := c.svc.Start(); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	return nil
}

// Stop halts the running service.
func (c *Controller) Stop() error {
	if err := c.svc.Stop(); err != nil {
		return fmt.Errorf("failed to stop service: %w", err)
	}
	return nil
}

// Status reports whether the service is installed and running. A
// missing registration is a normal state, not an error.
func (c *Controller) Status() (StatusInfo, error) {
	info := StatusInfo{Label: serviceLabel, Status: "not_installed"}

	status, err := c.svc.Status()
	if errors.Is(err, ksvc.ErrNotInstalled) {
		return info, nil
	}
	if err != nil {
		return info, fmt.Errorf("failed to query service status: %w", err)
	}

	info.Installed = true
	switch status {
	case ksvc.StatusRunning:
		info.Running = true
		info.Status = "running"
	case ksvc.StatusStopped:
		info.Status = "stopped"
	default:
		info.Status = "unknown"
	}

	return info, nil
}
