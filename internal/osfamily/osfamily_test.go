package osfamily

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeOSRelease(t *testing.T, root, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(root, "etc"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "etc", "os-release"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDetect(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		family  Family
		id      string
		wantErr bool
	}{
		{
			name:   "centos",
			body:   "NAME=\"CentOS Stream\"\nID=\"centos\"\nID_LIKE=\"rhel fedora\"\nVERSION_ID=\"9\"\n",
			family: RedHat, id: "centos",
		},
		{
			name:   "ubuntu",
			body:   "ID=ubuntu\nID_LIKE=debian\nVERSION_ID=\"22.04\"\n",
			family: Debian, id: "ubuntu",
		},
		{
			name:   "leap",
			body:   "ID=\"opensuse-leap\"\nID_LIKE=\"suse opensuse\"\nVERSION_ID=\"15.5\"\n",
			family: Suse, id: "opensuse-leap",
		},
		{
			name:    "alpine unsupported",
			body:    "ID=alpine\nVERSION_ID=3.19\n",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			writeOSRelease(t, root, tc.body)
			info, err := Detect(root)
			if tc.wantErr {
				if err == nil || !strings.Contains(err.Error(), "unsupported OS family") {
					t.Fatalf("expected unsupported family error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if info.Family != tc.family || info.ID != tc.id {
				t.Fatalf("got %+v", info)
			}
		})
	}
}

func TestDetect_MissingFile(t *testing.T) {
	if _, err := Detect(t.TempDir()); err == nil {
		t.Fatal("expected error for missing os-release")
	}
}

func TestDetectInit(t *testing.T) {
	root := t.TempDir()
	if got := DetectInit(root); got != NoInit {
		t.Fatalf("empty root: %s", got)
	}

	if err := os.MkdirAll(filepath.Join(root, "run", "systemd", "system"), 0o755); err != nil {
		t.Fatal(err)
	}
	if got := DetectInit(root); got != Systemd {
		t.Fatalf("systemd root: %s", got)
	}

	upRoot := t.TempDir()
	if err := os.MkdirAll(filepath.Join(upRoot, "sbin"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(upRoot, "sbin", "initctl"), []byte{}, 0o755); err != nil {
		t.Fatal(err)
	}
	if got := DetectInit(upRoot); got != Upstart {
		t.Fatalf("upstart root: %s", got)
	}
}
