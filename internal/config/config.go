package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Install methods supported by the planner.
const (
	MethodPackage = "package"
	MethodArchive = "archive"
)

// DefaultFeatures is the feature set booted by a stock controller
// install. Extra features are appended after these.
var DefaultFeatures = []string{
	"config", "standard", "region", "package", "kar", "ssh", "management",
}

// Config holds user/system configuration for the installer.
// Values merge in order: defaults, optional YAML file, environment,
// then command-line flags (applied by the CLI layer).
type Config struct {
	Method        string            `yaml:"method"`         // package | archive
	Version       string            `yaml:"version"`        // controller version, e.g. 0.18.2
	Prefix        string            `yaml:"prefix"`         // parent dir for archive installs
	RestPort      int               `yaml:"rest_port"`      // northbound REST port
	Features      []string          `yaml:"features"`       // extra boot features
	LogLevels     map[string]string `yaml:"log_levels"`     // logger name -> level
	AdminUser     string            `yaml:"admin_user"`     // credentials for tomcat-users.xml
	AdminPassword string            `yaml:"admin_password"` //
	User          string            `yaml:"user"`           // service user (archive route)
	Group         string            `yaml:"group"`          // service group (archive route)
	DownloadURL   string            `yaml:"download_url"`   // full tarball URL; empty = derived
	ChecksumURL   string            `yaml:"checksum_url"`   // optional sha256 list URL
	RepoURL       string            `yaml:"repo_url"`       // package repository base URL
	JavaPackage   string            `yaml:"java_package"`   // override runtime package name
}

// Defaults returns controller-specific defaults aligned with the
// upstream distribution layout.
func Defaults() Config {
	return Config{
		Method:        MethodPackage,
		Version:       "0.18.2",
		Prefix:        "/opt",
		RestPort:      8181,
		AdminUser:     "admin",
		AdminPassword: "admin",
		User:          "odl",
		Group:         "odl",
		RepoURL:       "https://nexus.opendaylight.org/content/repositories/opendaylight-rpm",
	}
}

// InstallDir returns the versioned install directory for archive installs,
// e.g. /opt/opendaylight-0.18.2.
func (c Config) InstallDir() string {
	return filepath.Join(c.Prefix, "opendaylight-"+c.Version)
}

// TarballURL returns the distribution tarball URL, deriving the default
// Nexus location when no explicit download_url is configured.
func (c Config) TarballURL() string {
	if c.DownloadURL != "" {
		return c.DownloadURL
	}
	return fmt.Sprintf(
		"https://nexus.opendaylight.org/content/repositories/opendaylight.release/org/opendaylight/integration/opendaylight/%s/opendaylight-%s.tar.gz",
		c.Version, c.Version)
}

// ServiceName is the unit/job name installed for the controller.
func (c Config) ServiceName() string { return "opendaylight" }

// BootFeatures returns the full featuresBoot list: defaults followed by
// extras, order preserved, duplicates removed.
func (c Config) BootFeatures() []string {
	seen := make(map[string]bool, len(DefaultFeatures)+len(c.Features))
	out := make([]string, 0, len(DefaultFeatures)+len(c.Features))
	for _, f := range append(append([]string{}, DefaultFeatures...), c.Features...) {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// Load returns defaults merged with an optional YAML config file and
// environment overrides. path may be empty.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("ODL_METHOD"); v != "" {
		cfg.Method = v
	}
	if v := os.Getenv("ODL_VERSION"); v != "" {
		cfg.Version = v
	}
	if v := os.Getenv("ODL_PREFIX"); v != "" {
		cfg.Prefix = v
	}
	if v := os.Getenv("ODL_REST_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.RestPort = port
		}
	}

	return cfg, nil
}

// Validate checks option values that the planner depends on.
func (c Config) Validate() error {
	switch c.Method {
	case MethodPackage, MethodArchive:
	default:
		return fmt.Errorf("unknown install method %q (use %s or %s)", c.Method, MethodPackage, MethodArchive)
	}
	if c.RestPort <= 0 || c.RestPort > 65535 {
		return fmt.Errorf("invalid rest port %d", c.RestPort)
	}
	if c.Version == "" {
		return fmt.Errorf("version required")
	}
	return nil
}
