package cmd

import (
	"os"

	"github.com/ralphtown/ralphtown/internal/adapters/broadcast"
	adaptergit "github.com/ralphtown/ralphtown/internal/adapters/git"
	adapterprocess "github.com/ralphtown/ralphtown/internal/adapters/process"
	adapterstorage "github.com/ralphtown/ralphtown/internal/adapters/storage"
	"github.com/ralphtown/ralphtown/internal/config"
	svc "github.com/ralphtown/ralphtown/internal/service"
	"github.com/ralphtown/ralphtown/internal/services"
)

// Container holds all dependencies for the application
type Container struct {
	// Services
	CloneService   *services.CloneService
	ConfigService  *services.ConfigService
	Orchestrator   *services.Orchestrator
	RepoService    *services.RepoService
	ServiceControl *svc.Controller
	SessionService *services.SessionService

	// Event fan-out shared by the orchestrator and the transport layer
	Hub *broadcast.Hub

	// Internal - for cleanup only
	store *adapterstorage.SQLiteStore
}

// NewContainer creates a new Container with all dependencies wired
func NewContainer(settings *config.Settings) (*Container, error) {
	dbPath := config.GetDBPath()
	if settings != nil && settings.DBPath != "" {
		dbPath = settings.DBPath
	}

	store, err := adapterstorage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, err
	}

	cloneDir := config.GetCloneBasePath()
	if settings != nil && settings.CloneDir != "" {
		cloneDir = settings.CloneDir
	}

	// Agent binary precedence: env var > settings.json > built-in default
	agent := os.Getenv("RALPHTOWN_AGENT_BIN")
	if agent == "" && settings != nil {
		agent = settings.AgentBin
	}

	gitRepo := adaptergit.NewCLIRepository()
	hub := broadcast.NewHub()
	supervisor := adapterprocess.NewSupervisor()

	orchestrator := services.NewOrchestrator(store, hub, supervisor, agent)

	serviceControl, err := svc.NewController()
	if err != nil {
		store.Close()
		return nil, err
	}

	return &Container{
		CloneService:   services.NewCloneService(store, gitRepo, cloneDir),
		ConfigService:  services.NewConfigService(store),
		Hub:            hub,
		Orchestrator:   orchestrator,
		RepoService:    services.NewRepoService(store, gitRepo, orchestrator),
		ServiceControl: serviceControl,
		SessionService: services.NewSessionService(store, orchestrator),
		store:          store,
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	if c.Hub != nil {
		c.Hub.Close()
	}
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}
