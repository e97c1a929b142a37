// Package hub fetches and caches vocabulary files.
//
// Files are stored under a local cache directory, keyed by the sha256 of their
// URL, so repeated constructions of the same encoding hit the disk cache and
// never the network. Concurrent processes downloading the same file are
// coordinated through a lock file.
package hub

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/gomlx/go-tiktoken/internal/downloader"
	"github.com/gomlx/go-tiktoken/internal/files"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// CacheDirEnv, when set, overrides the default cache directory.
const CacheDirEnv = "TIKTOKEN_CACHE_DIR"

// DefaultDirCreationPerm is used when creating cache directories.
const DefaultDirCreationPerm = os.FileMode(0755)

// Client fetches remote files into a local cache directory.
//
// The zero value is not usable; create it with New. A Client is safe for
// concurrent use.
type Client struct {
	cacheDir        string
	forceDownload   bool
	progress        downloader.ProgressCallback
	downloadManager *downloader.Manager
}

// New creates a Client using the default cache directory: $TIKTOKEN_CACHE_DIR
// if set, otherwise <user cache dir>/go-tiktoken.
func New() *Client {
	return &Client{
		cacheDir:        DefaultCacheDir(),
		downloadManager: downloader.New(),
	}
}

// DefaultCacheDir resolves the cache directory the same way New does.
func DefaultCacheDir() string {
	if dir := os.Getenv(CacheDirEnv); dir != "" {
		return dir
	}
	base, err := os.UserCacheDir()
	if err != nil {
		// Fall back to a hidden directory under the working directory.
		base = ".cache"
	}
	return filepath.Join(base, "go-tiktoken")
}

// WithCacheDir changes the cache directory. It returns the updated Client to
// allow chaining during construction.
func (c *Client) WithCacheDir(dir string) *Client {
	c.cacheDir = dir
	return c
}

// WithForceDownload makes Fetch re-download files even when already cached.
// It returns the updated Client to allow chaining during construction.
func (c *Client) WithForceDownload(force bool) *Client {
	c.forceDownload = force
	return c
}

// WithProgressCallback sets a callback invoked during downloads. It returns
// the updated Client to allow chaining during construction.
func (c *Client) WithProgressCallback(fn downloader.ProgressCallback) *Client {
	c.progress = fn
	return c
}

// CacheDir returns the directory used to store fetched files.
func (c *Client) CacheDir() string { return c.cacheDir }

// CachePath returns the local path a given URL caches to, whether or not it
// has been fetched yet.
func (c *Client) CachePath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.cacheDir, hex.EncodeToString(sum[:]))
}

// HasCached reports whether the file for url is already in the cache.
func (c *Client) HasCached(url string) bool {
	return files.Exists(c.CachePath(url))
}

// Fetch returns the local path of the file for url, downloading it first if it
// is not cached yet. The download is coordinated with other processes through
// a lock file, and the file only appears under its final name once complete.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	filePath := c.CachePath(url)
	if err := c.lockedDownload(ctx, url, filePath); err != nil {
		return "", err
	}
	return filePath, nil
}

func (c *Client) getDownloadManager() *downloader.Manager {
	if c.downloadManager == nil {
		c.downloadManager = downloader.New()
	}
	return c.downloadManager
}

// lockedDownload downloads url to filePath.
//
// If filePath exists and forceDownload is false, it is assumed to already have
// been correctly downloaded and the call returns immediately. A lock file at
// filePath+".lock" coordinates multiple processes/programs trying to download
// the same file at the same time.
func (c *Client) lockedDownload(ctx context.Context, url, filePath string) error {
	if files.Exists(filePath) {
		if !c.forceDownload {
			return nil
		}
		if err := os.Remove(filePath); err != nil {
			return errors.Wrapf(err, "failed to remove %q while force-downloading %q", filePath, url)
		}
	}

	// Checks whether context has already been cancelled, and exit immediately.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := files.MkdirAll(filepath.Dir(filePath), DefaultDirCreationPerm); err != nil {
		return err
	}

	lockPath := filePath + ".lock"
	var mainErr error
	errLock := execOnFileLock(lockPath, func() {
		if files.Exists(filePath) {
			// Some concurrent other process (or goroutine) already downloaded the file.
			return
		}
		mainErr = c.getDownloadManager().Download(ctx, url, filePath, c.progress)
		if mainErr != nil {
			mainErr = errors.WithMessagef(mainErr, "while downloading %q to %q", url, filePath)
			return
		}
		// File now exists, so the lock file is no longer needed.
		if err := os.Remove(lockPath); err != nil {
			klog.Warningf("error removing lock file %q: %+v", lockPath, err)
		}
	})
	if mainErr != nil {
		return mainErr
	}
	if errLock != nil {
		return errors.WithMessagef(errLock, "while locking %q to download %q", lockPath, url)
	}
	return nil
}
