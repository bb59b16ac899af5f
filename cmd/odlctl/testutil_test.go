package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opendaylight-tools/odlctl/internal/config"
	"github.com/opendaylight-tools/odlctl/internal/controller"
	"github.com/opendaylight-tools/odlctl/internal/initsys"
	"github.com/opendaylight-tools/odlctl/internal/karafcfg"
	"github.com/opendaylight-tools/odlctl/internal/osfamily"
	"github.com/opendaylight-tools/odlctl/internal/pkgmgr"
	ui "github.com/opendaylight-tools/odlctl/internal/ui"
)

// errMock is a generic error for test assertions.
var errMock = errors.New("mock error")

// fakeInit implements initsys.Manager for testing.
type fakeInit struct {
	kind    osfamily.InitSystem
	active  bool
	enabled bool
	calls   []string
	failOn  string
}

func (f *fakeInit) call(name string) error {
	f.calls = append(f.calls, name)
	if f.failOn == name {
		return errMock
	}
	return nil
}

func (f *fakeInit) Kind() osfamily.InitSystem {
	if f.kind == "" {
		return osfamily.Systemd
	}
	return f.kind
}
func (f *fakeInit) UnitPath(name string) string { return "/etc/systemd/system/" + name + ".service" }
func (f *fakeInit) InstallUnit(u initsys.Unit) (bool, error) {
	return true, f.call("install-unit")
}
func (f *fakeInit) RemoveUnit(name string) error           { return f.call("remove-unit") }
func (f *fakeInit) Reload(ctx context.Context) error       { return f.call("reload") }
func (f *fakeInit) Enable(ctx context.Context, name string) error {
	if err := f.call("enable"); err != nil {
		return err
	}
	f.enabled = true
	return nil
}
func (f *fakeInit) Disable(ctx context.Context, name string) error {
	if err := f.call("disable"); err != nil {
		return err
	}
	f.enabled = false
	return nil
}
func (f *fakeInit) Start(ctx context.Context, name string) error {
	if err := f.call("start"); err != nil {
		return err
	}
	f.active = true
	return nil
}
func (f *fakeInit) Stop(ctx context.Context, name string) error {
	if err := f.call("stop"); err != nil {
		return err
	}
	f.active = false
	return nil
}
func (f *fakeInit) Restart(ctx context.Context, name string) error {
	if err := f.call("restart"); err != nil {
		return err
	}
	f.active = true
	return nil
}
func (f *fakeInit) IsActive(ctx context.Context, name string) bool  { return f.active }
func (f *fakeInit) IsEnabled(ctx context.Context, name string) bool { return f.enabled }

// fakeClient implements controller.Client for testing.
type fakeClient struct {
	listening bool
	health    controller.Health
	healthErr error
	events    []controller.Event
}

func (f *fakeClient) IsListening(ctx context.Context) bool { return f.listening }
func (f *fakeClient) Health(ctx context.Context) (controller.Health, error) {
	return f.health, f.healthErr
}
func (f *fakeClient) WaitReady(ctx context.Context, interval time.Duration) error {
	if f.healthErr != nil {
		return f.healthErr
	}
	if !f.health.Operational() {
		return fmt.Errorf("controller not ready: %w", context.DeadlineExceeded)
	}
	return nil
}
func (f *fakeClient) SubscribeEvents(ctx context.Context) (<-chan controller.Event, error) {
	ch := make(chan controller.Event, len(f.events))
	for _, e := range f.events {
		ch <- e
	}
	close(ch)
	return ch, nil
}

// fakeStore implements karafcfg.Store for testing.
type fakeStore struct {
	features   []string
	port       int
	changed    bool
	featureErr error
	portErr    error
}

func (f *fakeStore) SetBootFeatures(features []string) (bool, error) {
	f.features = features
	return f.changed, f.featureErr
}
func (f *fakeStore) SetLogLevels(levels map[string]string) (bool, error) { return f.changed, nil }
func (f *fakeStore) SetRESTPort(port int) (bool, error) {
	f.port = port
	return f.changed, f.portErr
}
func (f *fakeStore) WriteTomcatUsers(u, p string) (bool, error) { return f.changed, nil }
func (f *fakeStore) BootFeatures() ([]string, error)            { return f.features, f.featureErr }
func (f *fakeStore) RESTPort() (int, error)                     { return f.port, f.portErr }
func (f *fakeStore) Backup() ([]string, error)                  { return nil, nil }

var _ karafcfg.Store = (*fakeStore)(nil)

// fakePkg implements pkgmgr.Manager for testing.
type fakePkg struct {
	installed map[string]string // name -> version
}

func (f *fakePkg) Name() string { return "dnf" }
func (f *fakePkg) AddRepo(ctx context.Context, repo pkgmgr.Repo) (bool, error) { return false, nil }
func (f *fakePkg) Install(ctx context.Context, pkgs ...string) error {
	for _, p := range pkgs {
		if f.installed == nil {
			f.installed = map[string]string{}
		}
		f.installed[p] = "0"
	}
	return nil
}
func (f *fakePkg) Remove(ctx context.Context, pkgs ...string) error {
	for _, p := range pkgs {
		delete(f.installed, p)
	}
	return nil
}
func (f *fakePkg) Installed(ctx context.Context, pkg string) (bool, error) {
	_, ok := f.installed[pkg]
	return ok, nil
}
func (f *fakePkg) InstalledVersion(ctx context.Context, pkg string) (string, error) {
	return f.installed[pkg], nil
}

// mockPrompter returns canned responses in order.
type mockPrompter struct {
	responses   []string
	interactive bool
	callIndex   int
}

func (p *mockPrompter) ReadLine(prompt string) (string, error) {
	if p.callIndex >= len(p.responses) {
		return "", fmt.Errorf("no more responses configured")
	}
	resp := p.responses[p.callIndex]
	p.callIndex++
	return resp, nil
}

func (p *mockPrompter) IsInteractive() bool { return p.interactive }

// testCfg returns a minimal valid config for testing.
func testCfg() config.Config {
	cfg := config.Defaults()
	cfg.Prefix = "/tmp/odlctl-test"
	return cfg
}

// testDeps wires fakes into a Deps with a buffered output.
func testDeps(init *fakeInit, client *fakeClient, store *fakeStore, pkg *fakePkg) (*Deps, *bytes.Buffer) {
	if init == nil {
		init = &fakeInit{}
	}
	if client == nil {
		client = &fakeClient{}
	}
	if store == nil {
		store = &fakeStore{}
	}
	if pkg == nil {
		pkg = &fakePkg{}
	}
	out := &bytes.Buffer{}
	return &Deps{
		Cfg:      testCfg(),
		OS:       osfamily.Info{Family: osfamily.RedHat, ID: "centos", VersionID: "9"},
		Init:     init,
		Pkg:      pkg,
		Store:    store,
		Client:   client,
		Printer:  ui.NewPrinter("text"),
		Prompter: &mockPrompter{},
		Output:   out,
	}, out
}
