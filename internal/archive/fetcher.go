// Package archive downloads and unpacks controller distribution
// tarballs for the archive install route.
package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// HTTPDoer matches http.Client's Do.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// ProgressFunc is called during download with bytes downloaded and total size
// (total is -1 when the server does not report Content-Length).
type ProgressFunc func(downloaded, total int64)

// Fetcher downloads distribution archives.
type Fetcher struct {
	http HTTPDoer
}

// NewFetcher builds a Fetcher with a real http client.
func NewFetcher() *Fetcher {
	return &Fetcher{http: &http.Client{Timeout: 30 * time.Minute}}
}

// NewFetcherWith allows injecting an HTTPDoer for testing.
func NewFetcherWith(h HTTPDoer) *Fetcher {
	if h == nil {
		return NewFetcher()
	}
	return &Fetcher{http: h}
}

// Fetch streams url into dest. The file is written to a temp sibling
// and renamed into place, so a partial download never lands at dest.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string, progress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".partial-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	var reader io.Reader = resp.Body
	if progress != nil {
		reader = &progressReader{reader: resp.Body, total: resp.ContentLength, progress: progress}
	}

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("download %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// progressReader wraps a reader to report progress
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
