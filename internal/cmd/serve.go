package cmd

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/ralphtown/ralphtown/internal/config"
	"github.com/ralphtown/ralphtown/internal/logging"
	"github.com/ralphtown/ralphtown/internal/server"
)

// ServeCmd starts the API server in the foreground
type ServeCmd struct {
	Listen string `help:"Address for the API server to bind (host:port)"`
}

// Run executes the serve command
func (s *ServeCmd) Run(cli *CLI) error {
	addr := s.Listen
	if addr == "" {
		addr = listenAddr(cli.settings)
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}

	// Sessions left running by a previous crash are demoted to error
	// before the API accepts traffic
	if err := cli.Container.Orchestrator.ReconcileStartup(context.Background()); err != nil {
		return fmt.Errorf("failed to reconcile session state: %w", err)
	}

	logging.Logger.Info("Starting ralphtown server", "address", addr)

	handler := server.NewHandler(
		cli.Container.RepoService,
		cli.Container.SessionService,
		cli.Container.CloneService,
		cli.Container.ConfigService,
		cli.Container.ServiceControl,
		cli.Container.Hub,
	)

	return server.NewServer(host, port, handler).Start()
}

// listenAddr resolves the server address with precedence: env var >
// settings.json > default
func listenAddr(settings *config.Settings) string {
	if env := os.Getenv("RALPHTOWN_LISTEN_ADDR"); env != "" {
		return env
	}
	if settings != nil && settings.ListenAddr != "" {
		return settings.ListenAddr
	}
	return config.DefaultListenAddr
}
