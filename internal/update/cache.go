package update

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Check results are cached under the user's home dir so the background
// check in every command invocation does not hammer the GitHub API.
const cacheTTL = 10 * time.Minute

// CacheEntry is the persisted form of the last check.
type CacheEntry struct {
	CheckedAt       time.Time `json:"checked_at"`
	LatestVersion   string    `json:"latest_version"`
	UpdateAvailable bool      `json:"update_available"`
}

func cachePath(homeDir string) string {
	return filepath.Join(homeDir, ".update-check")
}

// LoadCache reads the persisted check result, if any.
func LoadCache(homeDir string) (*CacheEntry, error) {
	var entry CacheEntry
	data, err := os.ReadFile(cachePath(homeDir))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// SaveCache persists a check result for later invocations.
func SaveCache(homeDir string, entry *CacheEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(cachePath(homeDir), data, 0o644)
}

// IsCacheValid reports whether the entry is fresh enough to reuse.
func IsCacheValid(entry *CacheEntry) bool {
	return entry != nil && time.Since(entry.CheckedAt) < cacheTTL
}

// ForceCheck hits the API regardless of cache freshness and stores the
// result for the next background check.
func ForceCheck(homeDir, currentVersion string) (*CheckResult, error) {
	updater, err := NewUpdater(currentVersion)
	if err != nil {
		return nil, err
	}
	result, err := updater.Check()
	if err != nil {
		return nil, err
	}
	_ = SaveCache(homeDir, &CacheEntry{
		CheckedAt:       time.Now(),
		LatestVersion:   result.LatestVersion,
		UpdateAvailable: result.UpdateAvailable,
	})
	return result, nil
}
