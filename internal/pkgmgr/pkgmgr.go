// Package pkgmgr wraps the native package managers used on supported
// OS families. All state changes go through the host's own tooling;
// this layer only adds idempotent checks and repo registration.
package pkgmgr

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/opendaylight-tools/odlctl/internal/osfamily"
)

// Runner runs commands and returns combined output; injectable for tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner is the production Runner backed by exec.CommandContext.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Repo describes a package repository to register on the host.
type Repo struct {
	Name        string
	Description string
	BaseURL     string
	GPGKeyURL   string
	GPGCheck    bool
}

// Manager abstracts a native package manager.
type Manager interface {
	// Name returns the tool name, e.g. "dnf".
	Name() string

	// AddRepo registers a repository; returns true when the host
	// repo configuration changed.
	AddRepo(ctx context.Context, repo Repo) (bool, error)

	// Install installs packages, surfacing the native tool's error.
	Install(ctx context.Context, pkgs ...string) error

	// Remove removes packages.
	Remove(ctx context.Context, pkgs ...string) error

	// Installed reports whether a package is installed.
	Installed(ctx context.Context, pkg string) (bool, error)

	// InstalledVersion returns the installed version of a package,
	// or "" when not installed.
	InstalledVersion(ctx context.Context, pkg string) (string, error)
}

// ForFamily returns the Manager matching the OS family. root prefixes
// filesystem paths for repo files ("/" in production).
func ForFamily(family osfamily.Family, r Runner, root string) (Manager, error) {
	if r == nil {
		r = ExecRunner{}
	}
	if root == "" {
		root = "/"
	}
	switch family {
	case osfamily.RedHat:
		return &yumManager{run: r, root: root, tool: preferTool("dnf", "yum")}, nil
	case osfamily.Debian:
		return &aptManager{run: r, root: root}, nil
	case osfamily.Suse:
		return &zypperManager{run: r, root: root}, nil
	default:
		return nil, fmt.Errorf("no package manager for OS family %q", family)
	}
}

// preferTool returns the first tool found on PATH, falling back to the last.
func preferTool(tools ...string) string {
	for _, t := range tools {
		if _, err := exec.LookPath(t); err == nil {
			return t
		}
	}
	return tools[len(tools)-1]
}

// writeFileIfChanged writes content only when the target differs,
// reporting whether a write happened.
func writeFileIfChanged(path string, content []byte, mode os.FileMode) (bool, error) {
	if cur, err := os.ReadFile(path); err == nil && string(cur) == string(content) {
		return false, nil
	}
	if err := os.WriteFile(path, content, mode); err != nil {
		return false, err
	}
	return true, nil
}
