// Package downloader implements a small HTTP download manager used by the hub
// package to fetch vocabulary files. Downloads go to a uniquely named temporary
// file in the target directory and are renamed into place only on success, so a
// partially downloaded file is never visible under its final name.
package downloader

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ProgressCallback is called during a download with the number of bytes
// transferred so far and the total size (-1 if the server didn't report one).
type ProgressCallback func(downloadedBytes, totalBytes int64)

// Manager executes downloads. It is safe for concurrent use.
type Manager struct {
	client      *http.Client
	semaphore   chan struct{}
	maxParallel int
}

// DefaultMaxParallel is the default number of concurrent downloads per Manager.
const DefaultMaxParallel = 4

// New creates a Manager with default settings.
func New() *Manager {
	m := &Manager{
		client: &http.Client{Timeout: 10 * time.Minute},
	}
	return m.MaxParallel(DefaultMaxParallel)
}

// MaxParallel limits the number of concurrent downloads. It returns the
// updated Manager to allow chaining during construction.
func (m *Manager) MaxParallel(n int) *Manager {
	if n < 1 {
		n = 1
	}
	m.maxParallel = n
	m.semaphore = make(chan struct{}, n)
	return m
}

// WithClient replaces the underlying HTTP client. It returns the updated
// Manager to allow chaining during construction.
func (m *Manager) WithClient(client *http.Client) *Manager {
	m.client = client
	return m
}

// Download fetches url into filePath. The transfer happens through a temporary
// file in the same directory which is atomically renamed to filePath once the
// body has been fully read. progress may be nil.
func (m *Manager) Download(ctx context.Context, url, filePath string, progress ProgressCallback) error {
	select {
	case m.semaphore <- struct{}{}:
		defer func() { <-m.semaphore }()
	case <-ctx.Done():
		return ctx.Err()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to build request for %q", url)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to fetch %q", url)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("fetching %q: unexpected status %s", url, resp.Status)
	}

	tmpPath := filePath + ".tmp-" + uuid.NewString()
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary download file %q", tmpPath)
	}
	removeTmp := true
	defer func() {
		if removeTmp {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	klog.V(1).Infof("downloading %s -> %s (%d bytes reported)", url, filePath, resp.ContentLength)
	if err := copyWithProgress(tmpFile, resp.Body, resp.ContentLength, progress); err != nil {
		return errors.Wrapf(err, "while downloading %q", url)
	}

	removeTmp = false
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "failed to close temporary download file %q", tmpPath)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "failed to move downloaded file %q to %q", tmpPath, filePath)
	}
	klog.V(2).Infof("download of %s finished", filepath.Base(filePath))
	return nil
}

func copyWithProgress(dst io.Writer, src io.Reader, total int64, progress ProgressCallback) error {
	if progress == nil {
		_, err := io.Copy(dst, src)
		return err
	}
	var downloaded int64
	buf := make([]byte, 256*1024)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return writeErr
			}
			downloaded += int64(n)
			progress(downloaded, total)
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}
