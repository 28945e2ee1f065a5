package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// ServiceCmd manages the background server service
type ServiceCmd struct {
	Install   ServiceInstallCmd   `cmd:"" help:"Install the server as a background service"`
	Start     ServiceStartCmd     `cmd:"" help:"Start the background service"`
	Status    ServiceStatusCmd    `cmd:"" help:"Show background service status"`
	Stop      ServiceStopCmd      `cmd:"" help:"Stop the background service"`
	Uninstall ServiceUninstallCmd `cmd:"" help:"Remove the background service"`
}

// ServiceInstallCmd registers the server with the service manager
type ServiceInstallCmd struct{}

// Run executes the install command
func (c *ServiceInstallCmd) Run(cli *CLI) error {
	if err := cli.Container.ServiceControl.Install(); err != nil {
		return err
	}
	fmt.Println("Service installed. Start it with: ralphtown service start")
	return nil
}

// ServiceStartCmd starts the installed service
type ServiceStartCmd struct{}

// Run executes the start command
func (c *ServiceStartCmd) Run(cli *CLI) error {
	if err := cli.Container.ServiceControl.Start(); err != nil {
		return err
	}
	fmt.Println("Service started")
	return nil
}

// ServiceStopCmd stops the running service
type ServiceStopCmd struct {
	Yes bool `help:"Skip the confirmation prompt" short:"y"`
}

// Run executes the stop command
func (c *ServiceStopCmd) Run(cli *CLI) error {
	if !c.Yes {
		ok, err := confirm("Stop the ralphtown service?",
			"Running agent processes are terminated with it.")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := cli.Container.ServiceControl.Stop(); err != nil {
		return err
	}
	fmt.Println("Service stopped")
	return nil
}

// ServiceUninstallCmd removes the service registration
type ServiceUninstallCmd struct {
	Yes bool `help:"Skip the confirmation prompt" short:"y"`
}

// Run executes the uninstall command
func (c *ServiceUninstallCmd) Run(cli *CLI) error {
	if !c.Yes {
		ok, err := confirm("Uninstall the ralphtown service?",
			"The server stops and no longer starts at login.")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := cli.Container.ServiceControl.Uninstall(); err != nil {
		return err
	}
	fmt.Println("Service uninstalled")
	return nil
}

// ServiceStatusCmd reports the service manager's view of the server
type ServiceStatusCmd struct{}

// Run executes the service status command
func (c *ServiceStatusCmd) Run(cli *CLI) error {
	info, err := cli.Container.ServiceControl.Status()
	if err != nil {
		return err
	}
	fmt.Printf("Service: %s (%s)\n", info.Status, info.Label)
	return nil
}

// confirm runs an interactive yes/no prompt
func confirm(title, description string) (bool, error) {
	confirmed := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&confirmed).
				Affirmative("Yes").
				Negative("No"),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}
