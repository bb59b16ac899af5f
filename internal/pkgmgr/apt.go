package pkgmgr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type aptManager struct {
	run  Runner
	root string
}

func (m *aptManager) Name() string { return "apt-get" }

func (m *aptManager) AddRepo(ctx context.Context, repo Repo) (bool, error) {
	line := fmt.Sprintf("# %s\ndeb %s /\n", repo.Description, repo.BaseURL)
	path := filepath.Join(m.root, "etc", "apt", "sources.list.d", repo.Name+".list")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	changed, err := writeFileIfChanged(path, []byte(line), 0o644)
	if err != nil {
		return false, err
	}
	if changed {
		if out, err := m.run.Run(ctx, "apt-get", "update"); err != nil {
			return true, fmt.Errorf("apt-get update: %w: %s", err, strings.TrimSpace(string(out)))
		}
	}
	return changed, nil
}

func (m *aptManager) Install(ctx context.Context, pkgs ...string) error {
	args := append([]string{"install", "-y", "--no-install-recommends"}, pkgs...)
	if out, err := m.run.Run(ctx, "apt-get", args...); err != nil {
		return fmt.Errorf("apt-get install %s: %w: %s", strings.Join(pkgs, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (m *aptManager) Remove(ctx context.Context, pkgs ...string) error {
	args := append([]string{"remove", "-y"}, pkgs...)
	if out, err := m.run.Run(ctx, "apt-get", args...); err != nil {
		return fmt.Errorf("apt-get remove: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (m *aptManager) Installed(ctx context.Context, pkg string) (bool, error) {
	out, err := m.run.Run(ctx, "dpkg-query", "-W", "-f=${Status}", pkg)
	if err != nil {
		return false, nil
	}
	return strings.Contains(string(out), "install ok installed"), nil
}

func (m *aptManager) InstalledVersion(ctx context.Context, pkg string) (string, error) {
	out, err := m.run.Run(ctx, "dpkg-query", "-W", "-f=${Version}", pkg)
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(string(out)), nil
}
