package update

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	// Public repo: https://github.com/opendaylight-tools/odlctl
	defaultAPIBase = "https://api.github.com/repos/opendaylight-tools/odlctl"

	binaryName  = "odlctl"
	httpTimeout = 30 * time.Second
)

// apiBase is swapped in tests to point at a local server.
var apiBase = defaultAPIBase

// Release mirrors the fields of the GitHub release API we consume.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Body        string    `json:"body"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
	HTMLURL     string    `json:"html_url"`
	Assets      []Asset   `json:"assets"`
}

// Asset is one downloadable artifact of a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
	ContentType        string `json:"content_type"`
}

func fetchRelease(url string) (*Release, error) {
	client := &http.Client{Timeout: httpTimeout}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", binaryName)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("release not found")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API error: %s", resp.Status)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("parse release: %w", err)
	}
	return &release, nil
}

// FetchLatestRelease gets the latest release from GitHub.
func FetchLatestRelease() (*Release, error) {
	return fetchRelease(apiBase + "/releases/latest")
}

// FetchReleaseByTag gets a specific release by tag.
func FetchReleaseByTag(tag string) (*Release, error) {
	if !strings.HasPrefix(tag, "v") {
		tag = "v" + tag
	}
	return fetchRelease(apiBase + "/releases/tags/" + tag)
}

// AssetForPlatform finds the archive for the current OS/arch.
// Expected asset format: odlctl_1.2.0_linux_amd64.tar.gz
func AssetForPlatform(release *Release) (*Asset, error) {
	suffix := fmt.Sprintf("_%s_%s.tar.gz", runtime.GOOS, runtime.GOARCH)
	for i := range release.Assets {
		asset := &release.Assets[i]
		if strings.HasPrefix(asset.Name, binaryName+"_") && strings.HasSuffix(asset.Name, suffix) {
			return asset, nil
		}
	}
	return nil, fmt.Errorf("no binary for %s/%s in release %s", runtime.GOOS, runtime.GOARCH, release.TagName)
}

// ChecksumAsset finds the checksums.txt asset.
func ChecksumAsset(release *Release) (*Asset, error) {
	for i := range release.Assets {
		if release.Assets[i].Name == "checksums.txt" {
			return &release.Assets[i], nil
		}
	}
	return nil, fmt.Errorf("checksums.txt not found in release")
}

// IsNewerVersion reports whether latest is newer than current.
// Dev and unparseable builds always update.
func IsNewerVersion(current, latest string) bool {
	if !strings.HasPrefix(current, "v") {
		current = "v" + current
	}
	if !strings.HasPrefix(latest, "v") {
		latest = "v" + latest
	}
	if !semver.IsValid(current) {
		return true
	}
	if !semver.IsValid(latest) {
		return false
	}
	return semver.Compare(latest, current) > 0
}
