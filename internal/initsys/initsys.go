// Package initsys installs and drives the controller service unit on
// the host init system. Systemd and upstart are managed through their
// native tools; hosts without either (containers) fall back to a
// direct supervisor with a PID file.
package initsys

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/opendaylight-tools/odlctl/internal/osfamily"
)

// Runner runs commands and returns combined output; injectable for tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Unit describes a service to install for the controller.
type Unit struct {
	Name        string
	Description string
	ExecStart   string
	ExecStop    string
	User        string
	Group       string
	WorkingDir  string
	Env         map[string]string
}

// Manager abstracts the host init system.
type Manager interface {
	// Kind returns the init system this manager drives.
	Kind() osfamily.InitSystem

	// UnitPath returns where the unit/job file for name lives.
	UnitPath(name string) string

	// InstallUnit renders and writes the unit file; returns true
	// when the on-disk file changed.
	InstallUnit(u Unit) (bool, error)

	// RemoveUnit deletes the unit file if present.
	RemoveUnit(name string) error

	// Reload re-reads unit definitions (daemon-reload or equivalent).
	Reload(ctx context.Context) error

	Enable(ctx context.Context, name string) error
	Disable(ctx context.Context, name string) error
	Start(ctx context.Context, name string) error
	Stop(ctx context.Context, name string) error
	Restart(ctx context.Context, name string) error

	// IsActive reports whether the service is currently running.
	IsActive(ctx context.Context, name string) bool

	// IsEnabled reports whether the service starts on boot.
	IsEnabled(ctx context.Context, name string) bool
}

// New returns the Manager for the detected init system. root prefixes
// filesystem paths ("/" in production).
func New(kind osfamily.InitSystem, r Runner, root string) (Manager, error) {
	if r == nil {
		r = execRunner{}
	}
	if root == "" {
		root = "/"
	}
	switch kind {
	case osfamily.Systemd:
		return &systemdManager{run: r, root: root}, nil
	case osfamily.Upstart:
		return &upstartManager{run: r, root: root}, nil
	case osfamily.NoInit:
		return &directManager{root: root}, nil
	default:
		return nil, fmt.Errorf("unsupported init system %q", kind)
	}
}
