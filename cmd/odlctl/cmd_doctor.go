package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/cobra"

	"github.com/opendaylight-tools/odlctl/internal/config"
	"github.com/opendaylight-tools/odlctl/internal/exitcodes"
	"github.com/opendaylight-tools/odlctl/internal/osfamily"
	ui "github.com/opendaylight-tools/odlctl/internal/ui"
)

// doctorCheck is one diagnostic probe result.
type doctorCheck struct {
	Name   string `json:"name" yaml:"name"`
	OK     bool   `json:"ok" yaml:"ok"`
	Warn   bool   `json:"warn,omitempty" yaml:"warn,omitempty"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

const (
	minFreeDisk = 2 << 30 // extraction roughly doubles the tarball
	minFreeMem  = 1 << 30 // Karaf defaults to a 512m heap
)

// runDoctor executes all diagnostic checks, best-effort and read-only.
func runDoctor(ctx context.Context, d *Deps) []doctorCheck {
	var checks []doctorCheck
	add := func(name string, ok bool, detail string) {
		checks = append(checks, doctorCheck{Name: name, OK: ok, Detail: detail})
	}
	warn := func(name, detail string) {
		checks = append(checks, doctorCheck{Name: name, OK: true, Warn: true, Detail: detail})
	}

	add("os family", true, fmt.Sprintf("%s (%s %s)", d.OS.Family, d.OS.ID, d.OS.VersionID))

	if d.Init.Kind() == osfamily.NoInit {
		warn("init system", "no systemd or upstart; using direct process supervision")
	} else {
		add("init system", true, string(d.Init.Kind()))
	}

	if path, err := exec.LookPath("java"); err == nil {
		add("java runtime", true, path)
	} else {
		add("java runtime", false, "java not found on PATH; odlctl install will add it")
	}

	switch d.Cfg.Method {
	case config.MethodPackage:
		installed, err := d.Pkg.Installed(ctx, "opendaylight")
		switch {
		case err != nil:
			add("package installed", false, err.Error())
		case installed:
			ver, _ := d.Pkg.InstalledVersion(ctx, "opendaylight")
			add("package installed", true, ver)
		default:
			add("package installed", false, "opendaylight is not installed")
		}
	case config.MethodArchive:
		dir := d.Cfg.InstallDir()
		if _, err := os.Stat(dir); err == nil {
			add("install dir", true, dir)
		} else {
			add("install dir", false, dir+" does not exist")
		}
	}

	if features, err := d.Store.BootFeatures(); err == nil {
		add("karaf config", true, fmt.Sprintf("%d boot features", len(features)))
	} else {
		add("karaf config", false, err.Error())
	}
	if port, err := d.Store.RESTPort(); err == nil {
		if port == d.Cfg.RestPort {
			add("rest port config", true, fmt.Sprintf(":%d", port))
		} else {
			warn("rest port config", fmt.Sprintf("file has :%d, config wants :%d; run odlctl configure", port, d.Cfg.RestPort))
		}
	} else {
		add("rest port config", false, err.Error())
	}

	dialCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	listening := d.Client.IsListening(dialCtx)
	cancel()
	if listening {
		add("rest listening", true, fmt.Sprintf(":%d", d.Cfg.RestPort))
		healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		h, err := d.Client.Health(healthCtx)
		cancel()
		switch {
		case err != nil:
			add("controller health", false, err.Error())
		case h.Operational():
			add("controller health", true, h.Status)
		default:
			add("controller health", false, h.Status)
		}
	} else {
		add("rest listening", false, fmt.Sprintf("nothing on :%d", d.Cfg.RestPort))
	}

	if usage, err := disk.Usage(d.Cfg.Prefix); err == nil {
		detail := fmt.Sprintf("%s free on %s", ui.FormatBytes(usage.Free), d.Cfg.Prefix)
		if usage.Free < minFreeDisk {
			warn("disk space", detail)
		} else {
			add("disk space", true, detail)
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		detail := fmt.Sprintf("%s available", ui.FormatBytes(vm.Available))
		if vm.Available < minFreeMem {
			warn("memory", detail)
		} else {
			add("memory", true, detail)
		}
	}

	return checks
}

func printDoctorText(d *Deps, checks []doctorCheck) {
	p := d.Printer
	p.Section("Diagnostics")
	failed := 0
	for _, c := range checks {
		line := c.Name
		if c.Detail != "" {
			line += ": " + c.Detail
		}
		switch {
		case c.Warn:
			p.Warn(line)
		case c.OK:
			p.Success(line)
		default:
			p.Error(line)
			failed++
		}
	}
	fmt.Fprintln(d.Output)
	if failed == 0 {
		p.Success(fmt.Sprintf("%d checks passed", len(checks)))
	} else {
		p.Error(fmt.Sprintf("%d of %d checks failed", failed, len(checks)))
	}
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		checks := runDoctor(cmd.Context(), d)

		switch flagOutput {
		case "json":
			d.Printer.JSON(checks)
		case "yaml":
			d.Printer.YAML(checks)
		default:
			printDoctorText(d, checks)
		}
		for _, c := range checks {
			if !c.OK {
				return exitcodes.PreconditionError("diagnostics found problems")
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
