package main

import (
	"context"
	"testing"
)

func findCheck(t *testing.T, checks []doctorCheck, name string) doctorCheck {
	t.Helper()
	for _, c := range checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found in %+v", name, checks)
	return doctorCheck{}
}

func TestRunDoctor_Healthy(t *testing.T) {
	init := &fakeInit{active: true, enabled: true}
	client := &fakeClient{listening: true, health: healthyController()}
	store := &fakeStore{features: []string{"odl-restconf", "odl-dlux-all"}, port: 8181}
	pkg := &fakePkg{installed: map[string]string{"opendaylight": "0.18.2"}}
	d, _ := testDeps(init, client, store, pkg)
	d.Cfg.Method = "package"

	checks := runDoctor(context.Background(), d)

	if c := findCheck(t, checks, "os family"); !c.OK {
		t.Errorf("os family failed: %+v", c)
	}
	if c := findCheck(t, checks, "init system"); !c.OK || c.Warn {
		t.Errorf("init system: %+v", c)
	}
	if c := findCheck(t, checks, "package installed"); !c.OK || c.Detail != "0.18.2" {
		t.Errorf("package installed: %+v", c)
	}
	if c := findCheck(t, checks, "karaf config"); !c.OK {
		t.Errorf("karaf config: %+v", c)
	}
	if c := findCheck(t, checks, "rest port config"); !c.OK || c.Warn {
		t.Errorf("rest port config: %+v", c)
	}
	if c := findCheck(t, checks, "rest listening"); !c.OK {
		t.Errorf("rest listening: %+v", c)
	}
	if c := findCheck(t, checks, "controller health"); !c.OK {
		t.Errorf("controller health: %+v", c)
	}
}

func TestRunDoctor_NotInstalled(t *testing.T) {
	store := &fakeStore{featureErr: errMock, portErr: errMock}
	d, _ := testDeps(&fakeInit{}, &fakeClient{}, store, &fakePkg{})
	d.Cfg.Method = "package"

	checks := runDoctor(context.Background(), d)

	if c := findCheck(t, checks, "package installed"); c.OK {
		t.Errorf("expected package check to fail: %+v", c)
	}
	if c := findCheck(t, checks, "karaf config"); c.OK {
		t.Errorf("expected karaf config to fail: %+v", c)
	}
	if c := findCheck(t, checks, "rest listening"); c.OK {
		t.Errorf("expected rest listening to fail: %+v", c)
	}
}

func TestRunDoctor_PortDrift(t *testing.T) {
	store := &fakeStore{features: []string{"odl-restconf"}, port: 9191}
	d, _ := testDeps(&fakeInit{active: true}, &fakeClient{}, store, &fakePkg{})
	d.Cfg.Method = "package"

	checks := runDoctor(context.Background(), d)
	c := findCheck(t, checks, "rest port config")
	if !c.Warn {
		t.Errorf("expected drift warning: %+v", c)
	}
}

func TestRunDoctor_NoInitWarns(t *testing.T) {
	d, _ := testDeps(&fakeInit{kind: "none"}, &fakeClient{}, &fakeStore{}, &fakePkg{})
	d.Cfg.Method = "package"

	checks := runDoctor(context.Background(), d)
	c := findCheck(t, checks, "init system")
	if !c.Warn || !c.OK {
		t.Errorf("expected warn for missing init system: %+v", c)
	}
}

func TestRunDoctor_DegradedHealth(t *testing.T) {
	h := healthyController()
	h.Status = "DEGRADED"
	d, _ := testDeps(&fakeInit{active: true}, &fakeClient{listening: true, health: h}, &fakeStore{port: 8181}, &fakePkg{installed: map[string]string{"opendaylight": "1"}})
	d.Cfg.Method = "package"

	checks := runDoctor(context.Background(), d)
	c := findCheck(t, checks, "controller health")
	if c.OK {
		t.Errorf("expected degraded health to fail: %+v", c)
	}
	if c.Detail != "DEGRADED" {
		t.Errorf("detail = %q", c.Detail)
	}
}
