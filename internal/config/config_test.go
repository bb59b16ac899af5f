package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultsAndDerived(t *testing.T) {
	cfg := Defaults()
	if cfg.Method != MethodPackage {
		t.Fatalf("default method = %s", cfg.Method)
	}
	if got := cfg.InstallDir(); got != "/opt/opendaylight-"+cfg.Version {
		t.Fatalf("InstallDir = %s", got)
	}
	if !strings.Contains(cfg.TarballURL(), cfg.Version+".tar.gz") {
		t.Fatalf("TarballURL = %s", cfg.TarballURL())
	}
}

func TestBootFeatures(t *testing.T) {
	cfg := Defaults()
	cfg.Features = []string{"odl-restconf", "ssh", "odl-l2switch-switch", "odl-restconf"}
	got := cfg.BootFeatures()

	// defaults first, extras appended, dupes removed
	if got[0] != "config" {
		t.Fatalf("first feature = %s", got[0])
	}
	want := len(DefaultFeatures) + 2 // ssh and odl-restconf deduped
	if len(got) != want {
		t.Fatalf("feature count = %d, want %d (%v)", len(got), want, got)
	}
	if got[len(got)-1] != "odl-l2switch-switch" {
		t.Fatalf("last feature = %s", got[len(got)-1])
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "odlctl.yaml")
	body := "method: archive\nrest_port: 8282\nlog_levels:\n  org.opendaylight.ovsdb: TRACE\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ODL_VERSION", "0.19.0")
	t.Setenv("ODL_METHOD", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Method != MethodArchive {
		t.Fatalf("method = %s", cfg.Method)
	}
	if cfg.RestPort != 8282 {
		t.Fatalf("rest port = %d", cfg.RestPort)
	}
	if cfg.Version != "0.19.0" {
		t.Fatalf("env override lost: version = %s", cfg.Version)
	}
	if cfg.LogLevels["org.opendaylight.ovsdb"] != "TRACE" {
		t.Fatalf("log levels = %v", cfg.LogLevels)
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	cfg.Method = "tarball"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "unknown install method") {
		t.Fatalf("expected unknown method error, got %v", err)
	}
	cfg = Defaults()
	cfg.RestPort = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected port error")
	}
}
