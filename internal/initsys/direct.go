package initsys

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/opendaylight-tools/odlctl/internal/osfamily"
)

// directManager supervises the controller without an init system:
// detached exec, PID file, appended log file. Used in containers and
// chroots where neither systemd nor upstart is present.
type directManager struct {
	root string
	mu   sync.Mutex
}

func (m *directManager) Kind() osfamily.InitSystem { return osfamily.NoInit }

func (m *directManager) UnitPath(name string) string {
	return filepath.Join(m.root, "etc", "odlctl", name+".service.json")
}

func (m *directManager) pidPath(name string) string {
	return filepath.Join(m.root, "run", "odlctl", name+".pid")
}

func (m *directManager) logPath(name string) string {
	return filepath.Join(m.root, "var", "log", "odlctl", name+".log")
}

func (m *directManager) InstallUnit(u Unit) (bool, error) {
	data, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return false, err
	}
	path := m.UnitPath(u.Name)
	if cur, err := os.ReadFile(path); err == nil && string(cur) == string(data) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func (m *directManager) RemoveUnit(name string) error {
	err := os.Remove(m.UnitPath(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (m *directManager) Reload(ctx context.Context) error { return nil }

// Enable is a no-op without an init system.
func (m *directManager) Enable(ctx context.Context, name string) error  { return nil }
func (m *directManager) Disable(ctx context.Context, name string) error { return nil }

func (m *directManager) loadUnit(name string) (Unit, error) {
	data, err := os.ReadFile(m.UnitPath(name))
	if err != nil {
		return Unit{}, fmt.Errorf("service %s not installed: %w", name, err)
	}
	var u Unit
	if err := json.Unmarshal(data, &u); err != nil {
		return Unit{}, err
	}
	return u, nil
}

func (m *directManager) pid(name string) (int, bool) {
	b, err := os.ReadFile(m.pidPath(name))
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	if processAlive(pid) {
		return pid, true
	}
	// stale PID file
	_ = os.Remove(m.pidPath(name))
	return 0, false
}

func (m *directManager) Start(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, running := m.pid(name); running {
		return nil
	}
	u, err := m.loadUnit(name)
	if err != nil {
		return err
	}
	argv := strings.Fields(u.ExecStart)
	if len(argv) == 0 {
		return errors.New("empty ExecStart")
	}

	if err := os.MkdirAll(filepath.Dir(m.logPath(name)), 0o755); err != nil {
		return err
	}
	lf, err := os.OpenFile(m.logPath(name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = u.WorkingDir
	cmd.Stdout = lf
	cmd.Stderr = lf
	cmd.Stdin = nil
	for k, v := range u.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	// Detach from this session/process group
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		_ = lf.Close()
		return fmt.Errorf("start %s: %w", name, err)
	}
	pid := cmd.Process.Pid
	if err := os.MkdirAll(filepath.Dir(m.pidPath(name)), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(m.pidPath(name), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		_ = syscall.Kill(pid, syscall.SIGTERM)
		_ = lf.Close()
		return err
	}
	// keep the log file open briefly so early output is not lost
	go func(f *os.File) {
		time.Sleep(500 * time.Millisecond)
		_ = f.Sync()
		_ = f.Close()
	}(lf)
	return nil
}

func (m *directManager) Stop(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pid, running := m.pid(name)
	if !running {
		return nil
	}
	// graceful TERM to the process group first, then the PID
	if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil {
		_ = syscall.Kill(pid, syscall.SIGTERM)
	}
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			_ = os.Remove(m.pidPath(name))
			return nil
		}
		time.Sleep(300 * time.Millisecond)
	}
	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
		_ = syscall.Kill(pid, syscall.SIGKILL)
	}
	killDeadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(killDeadline) {
		if !processAlive(pid) {
			_ = os.Remove(m.pidPath(name))
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	_ = os.Remove(m.pidPath(name))
	if processAlive(pid) {
		return fmt.Errorf("failed to stop %s (pid %d)", name, pid)
	}
	return nil
}

func (m *directManager) Restart(ctx context.Context, name string) error {
	if err := m.Stop(ctx, name); err != nil {
		return err
	}
	return m.Start(ctx, name)
}

func (m *directManager) IsActive(ctx context.Context, name string) bool {
	_, running := m.pid(name)
	return running
}

func (m *directManager) IsEnabled(ctx context.Context, name string) bool {
	_, err := os.Stat(m.UnitPath(name))
	return err == nil
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	// signal 0 tests for existence without sending a signal
	return syscall.Kill(pid, 0) == nil
}
