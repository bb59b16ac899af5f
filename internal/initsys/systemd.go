package initsys

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/opendaylight-tools/odlctl/internal/osfamily"
)

var systemdUnitTmpl = template.Must(template.New("unit").Parse(`[Unit]
Description={{.Description}}
After=network.target

[Service]
Type=simple
{{- if .User}}
User={{.User}}
{{- end}}
{{- if .Group}}
Group={{.Group}}
{{- end}}
{{- range $k, $v := .Env}}
Environment={{$k}}={{$v}}
{{- end}}
{{- if .WorkingDir}}
WorkingDirectory={{.WorkingDir}}
{{- end}}
ExecStart={{.ExecStart}}
{{- if .ExecStop}}
ExecStop={{.ExecStop}}
{{- end}}
Restart=on-failure
LimitNOFILE=65536

[Install]
WantedBy=multi-user.target
`))

type systemdManager struct {
	run  Runner
	root string
}

func (m *systemdManager) Kind() osfamily.InitSystem { return osfamily.Systemd }

func (m *systemdManager) UnitPath(name string) string {
	return filepath.Join(m.root, "etc", "systemd", "system", name+".service")
}

func (m *systemdManager) InstallUnit(u Unit) (bool, error) {
	var buf bytes.Buffer
	if err := systemdUnitTmpl.Execute(&buf, u); err != nil {
		return false, fmt.Errorf("render unit %s: %w", u.Name, err)
	}
	path := m.UnitPath(u.Name)
	if cur, err := os.ReadFile(path); err == nil && bytes.Equal(cur, buf.Bytes()) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func (m *systemdManager) RemoveUnit(name string) error {
	err := os.Remove(m.UnitPath(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (m *systemdManager) systemctl(ctx context.Context, args ...string) error {
	if out, err := m.run.Run(ctx, "systemctl", args...); err != nil {
		return fmt.Errorf("systemctl %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (m *systemdManager) Reload(ctx context.Context) error {
	return m.systemctl(ctx, "daemon-reload")
}

func (m *systemdManager) Enable(ctx context.Context, name string) error {
	return m.systemctl(ctx, "enable", name)
}

func (m *systemdManager) Disable(ctx context.Context, name string) error {
	return m.systemctl(ctx, "disable", name)
}

func (m *systemdManager) Start(ctx context.Context, name string) error {
	return m.systemctl(ctx, "start", name)
}

func (m *systemdManager) Stop(ctx context.Context, name string) error {
	return m.systemctl(ctx, "stop", name)
}

func (m *systemdManager) Restart(ctx context.Context, name string) error {
	return m.systemctl(ctx, "restart", name)
}

func (m *systemdManager) IsActive(ctx context.Context, name string) bool {
	out, err := m.run.Run(ctx, "systemctl", "is-active", name)
	return err == nil && strings.TrimSpace(string(out)) == "active"
}

func (m *systemdManager) IsEnabled(ctx context.Context, name string) bool {
	out, err := m.run.Run(ctx, "systemctl", "is-enabled", name)
	return err == nil && strings.TrimSpace(string(out)) == "enabled"
}
