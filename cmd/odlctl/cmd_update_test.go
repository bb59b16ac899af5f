package main

import (
	"bytes"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/opendaylight-tools/odlctl/internal/update"
	ui "github.com/opendaylight-tools/odlctl/internal/ui"
)

// mockUpdater implements CLIUpdater with canned behavior.
type mockUpdater struct {
	release    *update.Release
	fetchErr   error
	archive    []byte
	verifyErr  error
	binary     []byte
	extractErr error
	installErr error

	downloaded bool
	verified   bool
	installed  bool
	rolledBack bool
}

func (m *mockUpdater) FetchLatestRelease() (*update.Release, error) {
	return m.release, m.fetchErr
}
func (m *mockUpdater) FetchReleaseByTag(tag string) (*update.Release, error) {
	return m.release, m.fetchErr
}
func (m *mockUpdater) Download(asset *update.Asset, progress update.ProgressFunc) ([]byte, error) {
	m.downloaded = true
	if progress != nil {
		progress(int64(len(m.archive)), int64(len(m.archive)))
	}
	return m.archive, nil
}
func (m *mockUpdater) VerifyChecksum(data []byte, release *update.Release, assetName string) error {
	m.verified = true
	return m.verifyErr
}
func (m *mockUpdater) ExtractBinary(archiveData []byte) ([]byte, error) {
	return m.binary, m.extractErr
}
func (m *mockUpdater) Install(binaryData []byte) error {
	m.installed = true
	return m.installErr
}
func (m *mockUpdater) Rollback() error {
	m.rolledBack = true
	return nil
}

func testRelease(tag string) *update.Release {
	ver := strings.TrimPrefix(tag, "v")
	return &update.Release{
		TagName: tag,
		Body:    "bug fixes",
		Assets: []update.Asset{
			{Name: fmt.Sprintf("odlctl_%s_%s_%s.tar.gz", ver, runtime.GOOS, runtime.GOARCH), Size: 64},
			{Name: "checksums.txt"},
		},
	}
}

func updateOpts(current string) updateCoreOpts {
	return updateCoreOpts{currentVersion: current, binaryPath: "/tmp/odlctl"}
}

func TestRunUpdateCore_AlreadyUpToDate(t *testing.T) {
	m := &mockUpdater{release: testRelease("v1.0.0")}
	out := &bytes.Buffer{}

	err := runUpdateCore(m, updateOpts("v1.0.0"), ui.NewPrinter("text"), &mockPrompter{}, out, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.downloaded {
		t.Error("should not download when up to date")
	}
}

func TestRunUpdateCore_CheckOnly(t *testing.T) {
	m := &mockUpdater{release: testRelease("v2.0.0")}
	opts := updateOpts("v1.0.0")
	opts.checkOnly = true

	err := runUpdateCore(m, opts, ui.NewPrinter("text"), &mockPrompter{}, &bytes.Buffer{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.downloaded || m.installed {
		t.Error("check-only must not download or install")
	}
}

func TestRunUpdateCore_FullFlow(t *testing.T) {
	m := &mockUpdater{
		release: testRelease("v2.0.0"),
		archive: []byte("archive"),
		binary:  []byte("binary"),
	}
	opts := updateOpts("v1.0.0")
	opts.force = true

	err := runUpdateCore(m, opts, ui.NewPrinter("text"), &mockPrompter{}, &bytes.Buffer{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.downloaded || !m.verified || !m.installed {
		t.Errorf("flow skipped steps: downloaded=%v verified=%v installed=%v", m.downloaded, m.verified, m.installed)
	}
	if m.rolledBack {
		t.Error("unexpected rollback")
	}
}

func TestRunUpdateCore_SkipVerify(t *testing.T) {
	m := &mockUpdater{
		release: testRelease("v2.0.0"),
		archive: []byte("archive"),
		binary:  []byte("binary"),
	}
	opts := updateOpts("v1.0.0")
	opts.force = true
	opts.skipVerify = true

	if err := runUpdateCore(m, opts, ui.NewPrinter("text"), &mockPrompter{}, &bytes.Buffer{}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.verified {
		t.Error("verify should be skipped")
	}
}

func TestRunUpdateCore_RollbackOnBadBinary(t *testing.T) {
	m := &mockUpdater{
		release: testRelease("v2.0.0"),
		archive: []byte("archive"),
		binary:  []byte("binary"),
	}
	opts := updateOpts("v1.0.0")
	opts.force = true

	verify := func(path string) (string, error) { return "", errMock }
	err := runUpdateCore(m, opts, ui.NewPrinter("text"), &mockPrompter{}, &bytes.Buffer{}, verify)
	if err == nil {
		t.Fatal("expected error from failed verification")
	}
	if !m.rolledBack {
		t.Error("expected rollback")
	}
}

func TestRunUpdateCore_PromptDecline(t *testing.T) {
	m := &mockUpdater{release: testRelease("v2.0.0")}
	prompter := &mockPrompter{responses: []string{"n"}, interactive: true}

	err := runUpdateCore(m, updateOpts("v1.0.0"), ui.NewPrinter("text"), prompter, &bytes.Buffer{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.downloaded {
		t.Error("declined update must not download")
	}
}

func TestRunUpdateCore_FetchError(t *testing.T) {
	m := &mockUpdater{fetchErr: errMock}

	err := runUpdateCore(m, updateOpts("v1.0.0"), ui.NewPrinter("text"), &mockPrompter{}, &bytes.Buffer{}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
}
