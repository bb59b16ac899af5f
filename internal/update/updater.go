// Package update checks GitHub releases for a newer odlctl and swaps
// the running binary in place.
package update

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/opendaylight-tools/odlctl/internal/archive"
)

// Updater replaces the running odlctl binary with a released build.
type Updater struct {
	CurrentVersion string
	BinaryPath     string
}

// NewUpdater creates an updater for the current executable, resolving
// symlinks so the real file gets replaced.
func NewUpdater(currentVersion string) (*Updater, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable path: %w", err)
	}
	realPath, err := filepath.EvalSymlinks(execPath)
	if err != nil {
		realPath = execPath
	}
	return &Updater{CurrentVersion: currentVersion, BinaryPath: realPath}, nil
}

// FetchLatestRelease gets the latest release from GitHub.
func (u *Updater) FetchLatestRelease() (*Release, error) { return FetchLatestRelease() }

// FetchReleaseByTag gets a specific release by tag.
func (u *Updater) FetchReleaseByTag(tag string) (*Release, error) { return FetchReleaseByTag(tag) }

// CheckResult holds the outcome of an update check.
type CheckResult struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	Release         *Release
}

// Check compares the running version with the latest release.
func (u *Updater) Check() (*CheckResult, error) {
	release, err := FetchLatestRelease()
	if err != nil {
		return nil, err
	}
	return &CheckResult{
		CurrentVersion:  strings.TrimPrefix(u.CurrentVersion, "v"),
		LatestVersion:   strings.TrimPrefix(release.TagName, "v"),
		UpdateAvailable: IsNewerVersion(u.CurrentVersion, release.TagName),
		Release:         release,
	}, nil
}

// ProgressFunc is called during download with bytes downloaded and total size.
type ProgressFunc func(downloaded, total int64)

// Download fetches the release archive into memory.
func (u *Updater) Download(asset *Asset, progress ProgressFunc) ([]byte, error) {
	resp, err := http.Get(asset.BrowserDownloadURL)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: %s", resp.Status)
	}

	var reader io.Reader = resp.Body
	if progress != nil {
		reader = &progressReader{reader: resp.Body, total: resp.ContentLength, progress: progress}
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read download: %w", err)
	}
	return data, nil
}

type progressReader struct {
	reader     io.Reader
	total      int64
	downloaded int64
	progress   ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.downloaded += int64(n)
	if pr.progress != nil {
		pr.progress(pr.downloaded, pr.total)
	}
	return n, err
}

// VerifyChecksum validates the archive against the release's
// checksums.txt.
func (u *Updater) VerifyChecksum(data []byte, release *Release, assetName string) error {
	checksumAsset, err := ChecksumAsset(release)
	if err != nil {
		return err
	}
	resp, err := http.Get(checksumAsset.BrowserDownloadURL)
	if err != nil {
		return fmt.Errorf("download checksums: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	expected, err := archive.ParseChecksumList(resp.Body, assetName)
	if err != nil {
		return err
	}
	return verifySHA256Bytes(data, expected)
}

// ExtractBinary pulls the odlctl binary out of the tar.gz archive.
func (u *Updater) ExtractBinary(archiveData []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(archiveData))
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if header.Typeflag == tar.TypeReg &&
			(header.Name == binaryName || strings.HasSuffix(header.Name, "/"+binaryName)) {
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("read binary: %w", err)
			}
			return data, nil
		}
	}
	return nil, fmt.Errorf("binary not found in archive")
}

// Install swaps the binary atomically: backup, temp write in the same
// directory, rename.
func (u *Updater) Install(binaryData []byte) error {
	info, err := os.Stat(u.BinaryPath)
	if err != nil {
		return fmt.Errorf("stat current binary: %w", err)
	}
	mode := info.Mode()

	backupPath := u.BinaryPath + ".backup"
	if err := copyFile(u.BinaryPath, backupPath); err != nil {
		return fmt.Errorf("create backup: %w", err)
	}

	dir := filepath.Dir(u.BinaryPath)
	tempFile, err := os.CreateTemp(dir, binaryName+"-update-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(binaryData); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("write new binary: %w", err)
	}
	tempFile.Close()

	if err := os.Chmod(tempPath, mode); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := os.Rename(tempPath, u.BinaryPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("install binary: %w", err)
	}
	return nil
}

// Rollback restores the backup created by Install.
func (u *Updater) Rollback() error {
	backupPath := u.BinaryPath + ".backup"
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("no backup found")
	}
	return os.Rename(backupPath, u.BinaryPath)
}

func verifySHA256Bytes(data []byte, expectedHex string) error {
	sum := sha256.Sum256(data)
	actual := hex.EncodeToString(sum[:])
	if !strings.EqualFold(actual, expectedHex) {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expectedHex, actual)
	}
	return nil
}

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	dest, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = dest.Close() }()

	_, err = io.Copy(dest, source)
	return err
}
