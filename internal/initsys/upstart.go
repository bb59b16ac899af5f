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

var upstartJobTmpl = template.Must(template.New("job").Parse(`description "{{.Description}}"

start on runlevel [2345]
stop on runlevel [016]

respawn
{{- if .User}}
setuid {{.User}}
{{- end}}
{{- if .Group}}
setgid {{.Group}}
{{- end}}
{{- range $k, $v := .Env}}
env {{$k}}={{$v}}
{{- end}}
{{- if .WorkingDir}}
chdir {{.WorkingDir}}
{{- end}}

exec {{.ExecStart}}
`))

type upstartManager struct {
	run  Runner
	root string
}

func (m *upstartManager) Kind() osfamily.InitSystem { return osfamily.Upstart }

func (m *upstartManager) UnitPath(name string) string {
	return filepath.Join(m.root, "etc", "init", name+".conf")
}

func (m *upstartManager) InstallUnit(u Unit) (bool, error) {
	var buf bytes.Buffer
	if err := upstartJobTmpl.Execute(&buf, u); err != nil {
		return false, fmt.Errorf("render job %s: %w", u.Name, err)
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

func (m *upstartManager) RemoveUnit(name string) error {
	err := os.Remove(m.UnitPath(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (m *upstartManager) initctl(ctx context.Context, args ...string) error {
	if out, err := m.run.Run(ctx, "initctl", args...); err != nil {
		return fmt.Errorf("initctl %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (m *upstartManager) Reload(ctx context.Context) error {
	return m.initctl(ctx, "reload-configuration")
}

// Enable is a no-op: upstart jobs start on the runlevel stanza in the job file.
func (m *upstartManager) Enable(ctx context.Context, name string) error { return nil }

func (m *upstartManager) Disable(ctx context.Context, name string) error { return nil }

func (m *upstartManager) Start(ctx context.Context, name string) error {
	return m.initctl(ctx, "start", name)
}

func (m *upstartManager) Stop(ctx context.Context, name string) error {
	return m.initctl(ctx, "stop", name)
}

func (m *upstartManager) Restart(ctx context.Context, name string) error {
	if err := m.Stop(ctx, name); err != nil {
		// stopping an already-stopped job fails; start regardless
		_ = err
	}
	return m.Start(ctx, name)
}

func (m *upstartManager) IsActive(ctx context.Context, name string) bool {
	out, err := m.run.Run(ctx, "initctl", "status", name)
	return err == nil && strings.Contains(string(out), "start/running")
}

func (m *upstartManager) IsEnabled(ctx context.Context, name string) bool {
	_, err := os.Stat(m.UnitPath(name))
	return err == nil
}
