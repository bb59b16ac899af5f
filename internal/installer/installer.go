// Package installer builds and applies the resource plans that put the
// controller on a host: package-manager route or archive route, plus
// the shared configuration and service resources.
package installer

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/opendaylight-tools/odlctl/internal/archive"
	"github.com/opendaylight-tools/odlctl/internal/config"
	"github.com/opendaylight-tools/odlctl/internal/initsys"
	"github.com/opendaylight-tools/odlctl/internal/karafcfg"
	"github.com/opendaylight-tools/odlctl/internal/osfamily"
	"github.com/opendaylight-tools/odlctl/internal/pkgmgr"
	"github.com/opendaylight-tools/odlctl/internal/resource"
	"github.com/opendaylight-tools/odlctl/internal/sysuser"
)

// ControllerPackage is the native package name on all supported families.
const ControllerPackage = "opendaylight"

// Runner runs commands and returns combined output; injectable for tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Deps carries the collaborators the planner drives. Zero-value fields
// get production defaults from New.
type Deps struct {
	OS    osfamily.Info
	Init  initsys.Manager
	Pkg   pkgmgr.Manager
	Users *sysuser.Manager
	Store karafcfg.Store
	Fetch *archive.Fetcher
	HTTP  archive.HTTPDoer
	Run   Runner

	// CacheDir holds downloaded tarballs between runs.
	CacheDir string

	DownloadProgress archive.ProgressFunc
	ExtractProgress  archive.ExtractProgressFunc
}

// Installer plans and applies controller installs.
type Installer struct {
	cfg config.Config
	d   Deps
}

// New builds an Installer, filling unset deps with production defaults.
func New(cfg config.Config, d Deps) *Installer {
	if d.Users == nil {
		d.Users = sysuser.New()
	}
	if d.Store == nil {
		d.Store = karafcfg.New(cfg.InstallDir())
	}
	if d.Fetch == nil {
		d.Fetch = archive.NewFetcher()
	}
	if d.HTTP == nil {
		d.HTTP = http.DefaultClient
	}
	if d.Run == nil {
		d.Run = execRunner{}
	}
	if d.CacheDir == "" {
		d.CacheDir = "/var/cache/odlctl"
	}
	return &Installer{cfg: cfg, d: d}
}

// javaPackage returns the runtime dependency for the OS family, unless
// overridden in the config.
func (in *Installer) javaPackage() string {
	if in.cfg.JavaPackage != "" {
		return in.cfg.JavaPackage
	}
	switch in.d.OS.Family {
	case osfamily.Debian:
		return "openjdk-17-jre-headless"
	default:
		return "java-17-openjdk-headless"
	}
}

func (in *Installer) repo() pkgmgr.Repo {
	return pkgmgr.Repo{
		Name:        "opendaylight",
		Description: "OpenDaylight SDN controller",
		BaseURL:     in.cfg.RepoURL,
	}
}

func (in *Installer) unit() initsys.Unit {
	dir := in.cfg.InstallDir()
	return initsys.Unit{
		Name:        in.cfg.ServiceName(),
		Description: "OpenDaylight SDN controller",
		ExecStart:   filepath.Join(dir, "bin", "karaf") + " server",
		ExecStop:    filepath.Join(dir, "bin", "stop"),
		User:        in.cfg.User,
		Group:       in.cfg.Group,
		WorkingDir:  dir,
	}
}

// packageResource asserts an installed package, with a real probe so
// already-installed packages report unchanged.
func (in *Installer) packageResource(pkg string) resource.Resource {
	return resource.NewState("package:"+pkg,
		func(ctx context.Context) (bool, error) {
			installed, err := in.d.Pkg.Installed(ctx, pkg)
			return !installed, err
		},
		func(ctx context.Context) (bool, error) {
			if err := in.d.Pkg.Install(ctx, pkg); err != nil {
				return false, err
			}
			return true, nil
		})
}

// backupResource snapshots the managed config files before the first
// edit of a run. Like checksum verification it changes nothing itself.
func (in *Installer) backupResource() resource.Resource {
	return resource.NewState("backup:config", nil, func(ctx context.Context) (bool, error) {
		_, err := in.d.Store.Backup()
		return false, err
	})
}

// configResources are shared by both routes: applied after the
// distribution lands, before the service starts.
func (in *Installer) configResources() []resource.Resource {
	cfg := in.cfg
	out := []resource.Resource{
		resource.NewState("file:featuresBoot", nil, func(ctx context.Context) (bool, error) {
			return in.d.Store.SetBootFeatures(cfg.BootFeatures())
		}),
		resource.NewState("file:restPort", nil, func(ctx context.Context) (bool, error) {
			return in.d.Store.SetRESTPort(cfg.RestPort)
		}),
	}
	if len(cfg.LogLevels) > 0 {
		out = append(out, resource.NewState("file:logLevels", nil, func(ctx context.Context) (bool, error) {
			return in.d.Store.SetLogLevels(cfg.LogLevels)
		}))
	}
	// credentials are only managed on the archive route; packaged
	// builds carry their own user store migration
	if cfg.Method == config.MethodArchive {
		out = append(out, resource.NewState("file:tomcatUsers", nil, func(ctx context.Context) (bool, error) {
			return in.d.Store.WriteTomcatUsers(cfg.AdminUser, cfg.AdminPassword)
		}))
	}
	return out
}

func (in *Installer) serviceResources() []resource.Resource {
	name := in.cfg.ServiceName()
	return []resource.Resource{
		resource.NewState("service:enable",
			func(ctx context.Context) (bool, error) {
				return !in.d.Init.IsEnabled(ctx, name), nil
			},
			func(ctx context.Context) (bool, error) {
				if err := in.d.Init.Enable(ctx, name); err != nil {
					return false, err
				}
				return true, nil
			}),
		resource.NewState("service:start",
			func(ctx context.Context) (bool, error) {
				return !in.d.Init.IsActive(ctx, name), nil
			},
			func(ctx context.Context) (bool, error) {
				if err := in.d.Init.Start(ctx, name); err != nil {
					return false, err
				}
				return true, nil
			}),
	}
}

// InstallPlan builds the ordered plan for the configured method.
func (in *Installer) InstallPlan() (*resource.Plan, error) {
	switch in.cfg.Method {
	case config.MethodPackage:
		return in.packagePlan(), nil
	case config.MethodArchive:
		return in.archivePlan(), nil
	default:
		return nil, fmt.Errorf("unknown install method %q", in.cfg.Method)
	}
}

func (in *Installer) packagePlan() *resource.Plan {
	plan := resource.NewPlan()
	plan.Add(resource.NewState("repo:opendaylight", nil, func(ctx context.Context) (bool, error) {
		return in.d.Pkg.AddRepo(ctx, in.repo())
	}))
	plan.Add(in.packageResource(in.javaPackage()))
	plan.Add(in.packageResource(ControllerPackage))
	plan.Add(in.backupResource())
	plan.Add(in.configResources()...)
	plan.Add(in.serviceResources()...)
	return plan
}

func (in *Installer) archivePlan() *resource.Plan {
	cfg := in.cfg
	installDir := cfg.InstallDir()
	tarURL := cfg.TarballURL()
	tarName := baseName(tarURL)
	tarPath := filepath.Join(in.d.CacheDir, tarName)

	plan := resource.NewPlan()
	plan.Add(in.packageResource(in.javaPackage()))

	plan.Add(resource.NewState("group:"+cfg.Group, nil, func(ctx context.Context) (bool, error) {
		return in.d.Users.EnsureGroup(ctx, cfg.Group, true)
	}))
	plan.Add(resource.NewState("user:"+cfg.User, nil, func(ctx context.Context) (bool, error) {
		return in.d.Users.EnsureUser(ctx, sysuser.UserOpts{
			Name:    cfg.User,
			Group:   cfg.Group,
			HomeDir: installDir,
			System:  true,
		})
	}))

	plan.Add(resource.NewState("download:"+tarName,
		func(ctx context.Context) (bool, error) {
			return !fileExists(tarPath), nil
		},
		func(ctx context.Context) (bool, error) {
			if err := in.d.Fetch.Fetch(ctx, tarURL, tarPath, in.d.DownloadProgress); err != nil {
				return false, err
			}
			return true, nil
		}))

	if cfg.ChecksumURL != "" {
		plan.Add(resource.NewState("checksum:"+tarName, nil, func(ctx context.Context) (bool, error) {
			sum, err := in.fetchChecksum(ctx, cfg.ChecksumURL, tarName)
			if err != nil {
				return false, err
			}
			// verification changes nothing; it only gates the plan
			return false, archive.VerifySHA256(tarPath, sum)
		}))
	}

	plan.Add(resource.NewState("extract:"+installDir,
		func(ctx context.Context) (bool, error) {
			return !fileExists(filepath.Join(installDir, "bin", "karaf")), nil
		},
		func(ctx context.Context) (bool, error) {
			if err := archive.Extract(tarPath, cfg.Prefix, in.d.ExtractProgress); err != nil {
				return false, err
			}
			return true, nil
		}))

	plan.Add(resource.NewState("owner:"+installDir, nil, func(ctx context.Context) (bool, error) {
		out, err := in.d.Run.Run(ctx, "chown", "-R", cfg.User+":"+cfg.Group, installDir)
		if err != nil {
			return false, fmt.Errorf("chown %s: %w: %s", installDir, err, strings.TrimSpace(string(out)))
		}
		return true, nil
	}))

	plan.Add(in.backupResource())
	plan.Add(in.configResources()...)

	svc := cfg.ServiceName()
	plan.Add(resource.NewState("unit:"+svc, nil, func(ctx context.Context) (bool, error) {
		changed, err := in.d.Init.InstallUnit(in.unit())
		if err != nil || !changed {
			return changed, err
		}
		return true, in.d.Init.Reload(ctx)
	}))
	plan.Add(in.serviceResources()...)
	return plan
}

// UninstallPlan tears down in reverse order: stop, disable, then remove
// the distribution the way it arrived.
func (in *Installer) UninstallPlan() (*resource.Plan, error) {
	if err := in.cfg.Validate(); err != nil {
		return nil, err
	}
	cfg := in.cfg
	svc := cfg.ServiceName()

	plan := resource.NewPlan()
	plan.Add(resource.NewState("service:stop",
		func(ctx context.Context) (bool, error) {
			return in.d.Init.IsActive(ctx, svc), nil
		},
		func(ctx context.Context) (bool, error) {
			if err := in.d.Init.Stop(ctx, svc); err != nil {
				return false, err
			}
			return true, nil
		}))
	plan.Add(resource.NewState("service:disable",
		func(ctx context.Context) (bool, error) {
			return in.d.Init.IsEnabled(ctx, svc), nil
		},
		func(ctx context.Context) (bool, error) {
			if err := in.d.Init.Disable(ctx, svc); err != nil {
				return false, err
			}
			return true, nil
		}))

	switch cfg.Method {
	case config.MethodPackage:
		plan.Add(resource.NewState("package:"+ControllerPackage,
			func(ctx context.Context) (bool, error) {
				return in.d.Pkg.Installed(ctx, ControllerPackage)
			},
			func(ctx context.Context) (bool, error) {
				if err := in.d.Pkg.Remove(ctx, ControllerPackage); err != nil {
					return false, err
				}
				return true, nil
			}))
	case config.MethodArchive:
		plan.Add(resource.NewState("unit:"+svc, nil, func(ctx context.Context) (bool, error) {
			if err := in.d.Init.RemoveUnit(svc); err != nil {
				return false, err
			}
			return true, in.d.Init.Reload(ctx)
		}))
		plan.Add(resource.NewState("dir:"+cfg.InstallDir(),
			func(ctx context.Context) (bool, error) {
				return fileExists(cfg.InstallDir()), nil
			},
			func(ctx context.Context) (bool, error) {
				out, err := in.d.Run.Run(ctx, "rm", "-rf", cfg.InstallDir())
				if err != nil {
					return false, fmt.Errorf("remove %s: %w: %s", cfg.InstallDir(), err, strings.TrimSpace(string(out)))
				}
				return true, nil
			}))
	}
	return plan, nil
}

// ConfigurePlan reapplies the config-file resources on an existing
// install, without touching packages or the service.
func (in *Installer) ConfigurePlan() *resource.Plan {
	return resource.NewPlan(in.configResources()...)
}

// Install builds and applies the install plan.
func (in *Installer) Install(ctx context.Context, progress resource.ProgressFunc) ([]resource.Result, error) {
	plan, err := in.InstallPlan()
	if err != nil {
		return nil, err
	}
	return plan.Apply(ctx, progress)
}

// Configure applies only the configuration resources.
func (in *Installer) Configure(ctx context.Context, progress resource.ProgressFunc) ([]resource.Result, error) {
	return in.ConfigurePlan().Apply(ctx, progress)
}

// Uninstall builds and applies the removal plan.
func (in *Installer) Uninstall(ctx context.Context, progress resource.ProgressFunc) ([]resource.Result, error) {
	plan, err := in.UninstallPlan()
	if err != nil {
		return nil, err
	}
	return plan.Apply(ctx, progress)
}

func (in *Installer) fetchChecksum(ctx context.Context, url, name string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := in.d.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch checksums %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch checksums %s: status %s", url, resp.Status)
	}
	return archive.ParseChecksumList(resp.Body, name)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// baseName returns the last URL segment.
func baseName(url string) string {
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}
