package pkgmgr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type yumManager struct {
	run  Runner
	root string
	tool string // dnf or yum
}

func (m *yumManager) Name() string { return m.tool }

func (m *yumManager) repoPath(name string) string {
	return filepath.Join(m.root, "etc", "yum.repos.d", name+".repo")
}

func (m *yumManager) AddRepo(ctx context.Context, repo Repo) (bool, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n", repo.Name)
	fmt.Fprintf(&b, "name=%s\n", repo.Description)
	fmt.Fprintf(&b, "baseurl=%s\n", repo.BaseURL)
	fmt.Fprintf(&b, "enabled=1\n")
	if repo.GPGCheck && repo.GPGKeyURL != "" {
		fmt.Fprintf(&b, "gpgcheck=1\ngpgkey=%s\n", repo.GPGKeyURL)
	} else {
		fmt.Fprintf(&b, "gpgcheck=0\n")
	}

	path := m.repoPath(repo.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	return writeFileIfChanged(path, []byte(b.String()), 0o644)
}

func (m *yumManager) Install(ctx context.Context, pkgs ...string) error {
	args := append([]string{"install", "-y"}, pkgs...)
	if out, err := m.run.Run(ctx, m.tool, args...); err != nil {
		return fmt.Errorf("%s install %s: %w: %s", m.tool, strings.Join(pkgs, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (m *yumManager) Remove(ctx context.Context, pkgs ...string) error {
	args := append([]string{"remove", "-y"}, pkgs...)
	if out, err := m.run.Run(ctx, m.tool, args...); err != nil {
		return fmt.Errorf("%s remove: %w: %s", m.tool, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (m *yumManager) Installed(ctx context.Context, pkg string) (bool, error) {
	_, err := m.run.Run(ctx, "rpm", "-q", pkg)
	// rpm -q exits non-zero for missing packages
	return err == nil, nil
}

func (m *yumManager) InstalledVersion(ctx context.Context, pkg string) (string, error) {
	out, err := m.run.Run(ctx, "rpm", "-q", "--qf", "%{VERSION}", pkg)
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(string(out)), nil
}
