package pkgmgr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type zypperManager struct {
	run  Runner
	root string
}

func (m *zypperManager) Name() string { return "zypper" }

func (m *zypperManager) AddRepo(ctx context.Context, repo Repo) (bool, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n", repo.Name)
	fmt.Fprintf(&b, "name=%s\n", repo.Description)
	fmt.Fprintf(&b, "baseurl=%s\n", repo.BaseURL)
	fmt.Fprintf(&b, "enabled=1\nautorefresh=1\n")
	if repo.GPGCheck && repo.GPGKeyURL != "" {
		fmt.Fprintf(&b, "gpgcheck=1\ngpgkey=%s\n", repo.GPGKeyURL)
	} else {
		fmt.Fprintf(&b, "gpgcheck=0\n")
	}

	path := filepath.Join(m.root, "etc", "zypp", "repos.d", repo.Name+".repo")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	return writeFileIfChanged(path, []byte(b.String()), 0o644)
}

func (m *zypperManager) Install(ctx context.Context, pkgs ...string) error {
	args := append([]string{"--non-interactive", "install"}, pkgs...)
	if out, err := m.run.Run(ctx, "zypper", args...); err != nil {
		return fmt.Errorf("zypper install %s: %w: %s", strings.Join(pkgs, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (m *zypperManager) Remove(ctx context.Context, pkgs ...string) error {
	args := append([]string{"--non-interactive", "remove"}, pkgs...)
	if out, err := m.run.Run(ctx, "zypper", args...); err != nil {
		return fmt.Errorf("zypper remove: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (m *zypperManager) Installed(ctx context.Context, pkg string) (bool, error) {
	_, err := m.run.Run(ctx, "rpm", "-q", pkg)
	return err == nil, nil
}

func (m *zypperManager) InstalledVersion(ctx context.Context, pkg string) (string, error) {
	out, err := m.run.Run(ctx, "rpm", "-q", "--qf", "%{VERSION}", pkg)
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(string(out)), nil
}
