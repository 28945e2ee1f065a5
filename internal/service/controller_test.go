package service

import (
	"errors"
	"testing"

	ksvc "github.com/kardianos/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService stubs the platform manager. Only Status is exercised by
// these tests; the embedded interface covers the remaining methods.
type fakeService struct {
	ksvc.Service

	err    error
	status ksvc.Status
}

func (f fakeService) Status() (ksvc.Status, error) { return f.status, f.err }

func TestControllerStatus(t *testing.T) {
	tests := []struct {
		name string
		svc  fakeService
		want StatusInfo
	}{
		{
			name: "running",
			svc:  fakeService{status: ksvc.StatusRunning},
			want: StatusInfo{Installed: true, Label: serviceLabel, Running: true, Status: "running"},
		},
		{
			name: "stopped",
			svc:  fakeService{status: ksvc.StatusStopped},
			want: StatusInfo{Installed: true, Label: serviceLabel, Status: "stopped"},
		},
		{
			name: "installed but state unknown",
			svc:  fakeService{status: ksvc.StatusUnknown},
			want: StatusInfo{Installed: true, Label: serviceLabel, Status: "unknown"},
		},
		{
			name: "not installed",
			svc:  fakeService{err: ksvc.ErrNotInstalled},
			want: StatusInfo{Label: serviceLabel, Status: "not_installed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Controller{svc: tt.svc}

			info, err := c.Status()

			require.NoError(t, err)
			assert.Equal(t, tt.want, info)
		})
	}
}

func TestControllerStatusQueryFailure(t *testing.T) {
	c := &Controller{svc: fakeService{err: errors.New("dbus unavailable")}}

	_, err := c.Status()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query service status")
}
