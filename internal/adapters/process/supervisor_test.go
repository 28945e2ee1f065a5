package process

import (
	"errors"
	"io"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralphtown/ralphtown/internal/domain"
	"github.com/ralphtown/ralphtown/internal/ports"
)

func requirePOSIX(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func drain(t *testing.T, r io.Reader) string {
	t.Helper()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestSpawnCapturesBothStreams(t *testing.T) {
	requirePOSIX(t)

	supervisor := NewSupervisor()
	handle, err := supervisor.Spawn(t.TempDir(), "sh", "-c", "echo hello; echo oops 1>&2")
	require.NoError(t, err)
	assert.Greater(t, handle.PID(), 0)

	stdout := drain(t, handle.Stdout())
	stderr := drain(t, handle.Stderr())

	outcome, err := handle.Wait()
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, 0, outcome.Code)
	assert.Equal(t, "hello\n", stdout)
	assert.Equal(t, "oops\n", stderr)
}

func TestSpawnRunsInWorkingDir(t *testing.T) {
	requirePOSIX(t)

	dir := t.TempDir()
	supervisor := NewSupervisor()
	handle, err := supervisor.Spawn(dir, "sh", "-c", "touch marker && ls")
	require.NoError(t, err)

	stdout := drain(t, handle.Stdout())
	drain(t, handle.Stderr())

	outcome, err := handle.Wait()
	require.NoError(t, err)
	require.True(t, outcome.Success)
	assert.True(t, strings.Contains(stdout, "marker"))
}

func TestSpawnMissingExecutable(t *testing.T) {
	supervisor := NewSupervisor()
	_, err := supervisor.Spawn(t.TempDir(), "ralphtown-no-such-binary")
	require.Error(t, err)

	var notFound *domain.AgentNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Contains(t, notFound.Message, "ralphtown-no-such-binary")
	assert.NotEmpty(t, notFound.HelpSteps)
}

func TestWaitReportsExitCode(t *testing.T) {
	requirePOSIX(t)

	supervisor := NewSupervisor()
	handle, err := supervisor.Spawn(t.TempDir(), "sh", "-c", "exit 3")
	require.NoError(t, err)

	drain(t, handle.Stdout())
	drain(t, handle.Stderr())

	outcome, err := handle.Wait()
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, 3, outcome.Code)
}

func TestGracefulStopEndsProcess(t *testing.T) {
	requirePOSIX(t)

	supervisor := NewSupervisor()
	handle, err := supervisor.Spawn(t.TempDir(), "sh", "-c", "sleep 30")
	require.NoError(t, err)

	go io.Copy(io.Discard, handle.Stdout())
	go io.Copy(io.Discard, handle.Stderr())

	require.NoError(t, handle.RequestGracefulStop())

	done := make(chan ports.ExitOutcome, 1)
	go func() {
		outcome, _ := handle.Wait()
		done <- outcome
	}()

	select {
	case outcome := <-done:
		assert.False(t, outcome.Success)
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit after graceful stop")
	}

	// Signalling an exited process is not an error
	assert.NoError(t, handle.ForceStop())
}
