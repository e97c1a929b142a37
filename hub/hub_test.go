package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestFetch(t *testing.T) {
	server, hits := newTestServer(t, "vocabulary bytes")
	client := New().WithCacheDir(t.TempDir())
	url := server.URL + "/file"

	assert.False(t, client.HasCached(url))

	path, err := client.Fetch(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, client.CachePath(url), path)
	assert.True(t, client.HasCached(url))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "vocabulary bytes", string(data))

	// A second fetch is served from disk.
	_, err = client.Fetch(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	// No lock or temporary files left behind.
	entries, err := os.ReadDir(client.CacheDir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(path), entries[0].Name())
}

func TestFetch_ForceDownload(t *testing.T) {
	server, hits := newTestServer(t, "v1")
	client := New().WithCacheDir(t.TempDir())
	url := server.URL + "/file"

	_, err := client.Fetch(context.Background(), url)
	require.NoError(t, err)

	_, err = client.WithForceDownload(true).Fetch(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetch_ContextCancelled(t *testing.T) {
	server, hits := newTestServer(t, "v1")
	client := New().WithCacheDir(t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Fetch(ctx, server.URL+"/file")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), hits.Load())
}

func TestFetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)
	client := New().WithCacheDir(t.TempDir())
	url := server.URL + "/file"

	_, err := client.Fetch(context.Background(), url)
	require.Error(t, err)
	assert.False(t, client.HasCached(url))
}

func TestFetch_ProgressCallback(t *testing.T) {
	server, _ := newTestServer(t, "0123456789")
	var calls int
	var last int64
	client := New().
		WithCacheDir(t.TempDir()).
		WithProgressCallback(func(downloaded, total int64) {
			calls++
			last = downloaded
		})

	_, err := client.Fetch(context.Background(), server.URL+"/file")
	require.NoError(t, err)
	assert.Positive(t, calls)
	assert.Equal(t, int64(10), last)
}

func TestCachePath(t *testing.T) {
	client := New().WithCacheDir("/tmp/cache")
	a := client.CachePath("https://example.com/a")
	b := client.CachePath("https://example.com/b")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, client.CachePath("https://example.com/a"))
	assert.Equal(t, "/tmp/cache", filepath.Dir(a))
}

func TestDefaultCacheDir_EnvOverride(t *testing.T) {
	t.Setenv(CacheDirEnv, "/tmp/override")
	assert.Equal(t, "/tmp/override", DefaultCacheDir())
	assert.Equal(t, "/tmp/override", New().CacheDir())
}
