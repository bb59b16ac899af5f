// Package sysuser creates the system user and group that own an
// archive-route controller install. Lookups go through os/user;
// creation shells out to groupadd/useradd.
package sysuser

import (
	"context"
	"fmt"
	"os/exec"
	"os/user"
	"strings"
)

// Runner runs commands and returns combined output; injectable for tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// UserOpts describes the service account for the controller.
type UserOpts struct {
	Name    string
	Group   string // primary group; created separately
	HomeDir string // typically the install dir
	Shell   string // defaults to /sbin/nologin
	System  bool
}

// Manager asserts user/group presence.
type Manager struct {
	run         Runner
	lookupUser  func(name string) (*user.User, error)
	lookupGroup func(name string) (*user.Group, error)
}

// New builds a Manager with real lookups and exec.
func New() *Manager {
	return NewWith(nil, nil, nil)
}

// NewWith allows injecting dependencies for testing.
func NewWith(r Runner, lookupUser func(string) (*user.User, error), lookupGroup func(string) (*user.Group, error)) *Manager {
	if r == nil {
		r = execRunner{}
	}
	if lookupUser == nil {
		lookupUser = user.Lookup
	}
	if lookupGroup == nil {
		lookupGroup = user.LookupGroup
	}
	return &Manager{run: r, lookupUser: lookupUser, lookupGroup: lookupGroup}
}

// GroupExists reports whether the named group is present.
func (m *Manager) GroupExists(name string) bool {
	_, err := m.lookupGroup(name)
	return err == nil
}

// UserExists reports whether the named user is present.
func (m *Manager) UserExists(name string) bool {
	_, err := m.lookupUser(name)
	return err == nil
}

// EnsureGroup creates the group when missing; returns true when created.
func (m *Manager) EnsureGroup(ctx context.Context, name string, system bool) (bool, error) {
	if m.GroupExists(name) {
		return false, nil
	}
	args := []string{}
	if system {
		args = append(args, "--system")
	}
	args = append(args, name)
	if out, err := m.run.Run(ctx, "groupadd", args...); err != nil {
		return false, fmt.Errorf("groupadd %s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return true, nil
}

// EnsureUser creates the user when missing; returns true when created.
func (m *Manager) EnsureUser(ctx context.Context, opts UserOpts) (bool, error) {
	if opts.Name == "" {
		return false, fmt.Errorf("user name required")
	}
	if m.UserExists(opts.Name) {
		return false, nil
	}
	shell := opts.Shell
	if shell == "" {
		shell = "/sbin/nologin"
	}
	args := []string{"--shell", shell}
	if opts.System {
		args = append(args, "--system")
	}
	if opts.Group != "" {
		args = append(args, "-g", opts.Group)
	}
	if opts.HomeDir != "" {
		args = append(args, "-d", opts.HomeDir, "-M")
	}
	args = append(args, opts.Name)
	if out, err := m.run.Run(ctx, "useradd", args...); err != nil {
		return false, fmt.Errorf("useradd %s: %w: %s", opts.Name, err, strings.TrimSpace(string(out)))
	}
	return true, nil
}
