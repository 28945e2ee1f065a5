package ports

import "io"

// ExitOutcome describes how a supervised process ended
type ExitOutcome struct {
	Code    int
	Success bool
}

// ProcessHandle is a live supervised process. Wait blocks and must be
// called from a background goroutine, never from a request path.
type ProcessHandle interface {
	PID() int
	Stdout() io.Reader
	Stderr() io.Reader
	Wait() (ExitOutcome, error)
	// RequestGracefulStop signals the process group to terminate
	// gracefully. Falls back to direct termination on platforms
	// without process groups.
	RequestGracefulStop() error
	// ForceStop kills the process group immediately
	ForceStop() error
}

// ProcessSupervisor spawns external commands with captured output.
// The working directory must exist; stdin is closed; stdout and stderr
// are piped. A missing executable surfaces as a
// domain.AgentNotFoundError, any other failure as a domain.SpawnError.
type ProcessSupervisor interface {
	Spawn(workingDir, name string, args ...string) (ProcessHandle, error)
}
