// Package process spawns and supervises agent child processes with
// captured output and group-wide termination.
package process

import (
	"errors"
	"io"
	"os/exec"

	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/logging"
	"github.com/ralphtown/ralphtown/internal/ports"
)

// Supervisor implements ports.ProcessSupervisor using os/exec
type Supervisor struct{}

// Compile-time interface verification
var _ ports.ProcessSupervisor = (*Supervisor)(nil)

// NewSupervisor creates a new process supervisor
func NewSupervisor() *Supervisor {
	return &Supervisor{}
}

// Spawn starts name with args inside workingDir. The child runs in its
// own process group so stop signals reach its descendants, reads stdin
// from the null device and has stdout and stderr piped back.
func (s *Supervisor) Spawn(workingDir, name string, args ...string) (ports.ProcessHandle, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = workingDir
	configureProcessGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &domain.SpawnError{Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &domain.SpawnError{Err: err}
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, domain.NewAgentNotFoundError(name)
		}
		return nil, &domain.SpawnError{Err: err}
	}

	logging.Logger.Debug("process started",
		"pid", cmd.Process.Pid,
		"command", name,
		"dir", workingDir,
	)

	return &handle{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

// handle wraps a started exec.Cmd with its piped output streams
type handle struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser
}

// Compile-time interface verification
var _ ports.ProcessHandle = (*handle)(nil)

func (h *handle) PID() int { return h.cmd.Process.Pid }

func (h *handle) Stdout() io.Reader { return h.stdout }

func (h *handle) Stderr() io.Reader { return h.stderr }

// Wait blocks until the process exits. Both output streams must be
// drained before calling Wait or the exit status can be lost.
func (h *handle) Wait() (ports.ExitOutcome, error) {
	err := h.cmd.Wait()
	if err == nil {
		return ports.ExitOutcome{Code: 0, Success: true}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Signal deaths report code -1
		return ports.ExitOutcome{Code: exitErr.ExitCode()}, nil
	}
	return ports.ExitOutcome{Code: -1}, err
}

// RequestGracefulStop implements ProcessHandle.RequestGracefulStop
func (h *handle) RequestGracefulStop() error {
	return terminateGroup(h.cmd)
}

// ForceStop implements ProcessHandle.ForceStop
func (h *handle) ForceStop() error {
	return killGroup(h.cmd)
}
