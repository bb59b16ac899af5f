// Package osfamily detects the host OS family and init system. The
// planner branches on both; anything it cannot classify is rejected
// up front rather than partway through an install.
package osfamily

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Family identifies a supported Linux package-management lineage.
type Family string

const (
	RedHat Family = "redhat"
	Debian Family = "debian"
	Suse   Family = "suse"
)

// Info describes the detected host OS.
type Info struct {
	Family    Family
	ID        string // os-release ID, e.g. "centos"
	VersionID string // os-release VERSION_ID, e.g. "9"
}

// Detect reads /etc/os-release under root and classifies the host.
// root is "/" in production; tests point it at a fixture tree.
func Detect(root string) (Info, error) {
	path := filepath.Join(root, "etc", "os-release")
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return detectFrom(f)
}

func detectFrom(r io.Reader) (Info, error) {
	fields := map[string]string{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[k] = strings.Trim(v, `"`)
	}
	if err := sc.Err(); err != nil {
		return Info{}, err
	}

	info := Info{ID: fields["ID"], VersionID: fields["VERSION_ID"]}
	fam, ok := classify(fields["ID"], fields["ID_LIKE"])
	if !ok {
		return Info{}, fmt.Errorf("unsupported OS family %q (supported: redhat, debian, suse)", fields["ID"])
	}
	info.Family = fam
	return info, nil
}

func classify(id, idLike string) (Family, bool) {
	ids := append([]string{id}, strings.Fields(idLike)...)
	for _, v := range ids {
		switch v {
		case "rhel", "centos", "fedora", "rocky", "almalinux":
			return RedHat, true
		case "debian", "ubuntu":
			return Debian, true
		case "sles", "opensuse", "suse", "opensuse-leap", "opensuse-tumbleweed":
			return Suse, true
		}
	}
	return "", false
}
