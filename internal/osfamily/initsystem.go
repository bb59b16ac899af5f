package osfamily

import (
	"os"
	"path/filepath"
)

// InitSystem identifies the host service manager.
type InitSystem string

const (
	Systemd InitSystem = "systemd"
	Upstart InitSystem = "upstart"
	NoInit  InitSystem = "none" // containers, chroots
)

// DetectInit probes for the running init system under root.
// systemd mounts /run/systemd/system; upstart ships /sbin/initctl.
func DetectInit(root string) InitSystem {
	if st, err := os.Stat(filepath.Join(root, "run", "systemd", "system")); err == nil && st.IsDir() {
		return Systemd
	}
	if _, err := os.Stat(filepath.Join(root, "sbin", "initctl")); err == nil {
		return Upstart
	}
	return NoInit
}
