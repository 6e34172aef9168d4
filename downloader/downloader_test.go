package downloader

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripplanner.dev/gtfs/testutil"
)

func TestHTTPGet(t *testing.T) {
	server := testutil.NewFeedServer()
	defer server.Close()

	server.SetFeed("/feed.pb", []byte("0123456789"))

	body, err := HTTPGet(
		context.Background(),
		server.URL("/feed.pb"),
		map[string]string{"X-Api-Key": "secret"},
		GetOptions{},
	)
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789"), body)
	assert.Equal(t, "secret", server.LastHeaders("/feed.pb").Get("X-Api-Key"))

	// Bodies over MaxSize are refused
	_, err = HTTPGet(context.Background(), server.URL("/feed.pb"), nil, GetOptions{MaxSize: 4})
	assert.True(t, errors.Is(err, ErrTooLarge))

	// A body of exactly MaxSize is fine
	body, err = HTTPGet(context.Background(), server.URL("/feed.pb"), nil, GetOptions{MaxSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789"), body)
}

func TestHTTPGetStatusError(t *testing.T) {
	server := testutil.NewFeedServer()
	defer server.Close()

	server.SetStatus("/feed.pb", http.StatusForbidden)

	_, err := HTTPGet(context.Background(), server.URL("/feed.pb"), nil, GetOptions{})
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, server.URL("/feed.pb"), statusErr.URL)

	_, err = HTTPGet(context.Background(), server.URL("/missing"), nil, GetOptions{})
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestMemoryDownloaderCaches(t *testing.T) {
	server := testutil.NewFeedServer()
	defer server.Close()
	server.SetFeed("/static.zip", []byte("v1"))

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	d := NewMemoryDownloader()
	d.TimeNow = func() time.Time { return now }

	opts := GetOptions{Cache: true, CacheTTL: time.Hour}

	body, err := d.Get(context.Background(), server.URL("/static.zip"), nil, opts)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), body)

	server.SetFeed("/static.zip", []byte("v2"))

	body, err = d.Get(context.Background(), server.URL("/static.zip"), nil, opts)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), body)
	assert.Equal(t, 1, server.RequestsFor("/static.zip"))

	now = now.Add(61 * time.Minute)
	body, err = d.Get(context.Background(), server.URL("/static.zip"), nil, opts)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), body)
	assert.Equal(t, 2, server.RequestsFor("/static.zip"))

	// No caching when not asked for
	_, err = d.Get(context.Background(), server.URL("/static.zip"), nil, GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, server.RequestsFor("/static.zip"))
}

func TestMemoryDownloaderForgetAndSweep(t *testing.T) {
	server := testutil.NewFeedServer()
	defer server.Close()
	server.SetFeed("/a.zip", []byte("a"))
	server.SetFeed("/b.zip", []byte("b"))

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	d := NewMemoryDownloader()
	d.TimeNow = func() time.Time { return now }

	var _ Forgetter = d

	_, err := d.Get(context.Background(), server.URL("/a.zip"), nil, GetOptions{Cache: true, CacheTTL: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len())

	// Forgotten copies are downloaded again
	require.NoError(t, d.Forget(server.URL("/a.zip")))
	assert.Equal(t, 0, d.Len())
	_, err = d.Get(context.Background(), server.URL("/a.zip"), nil, GetOptions{Cache: true, CacheTTL: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, 2, server.RequestsFor("/a.zip"))

	// Storing b after a has expired sweeps a
	now = now.Add(2 * time.Minute)
	_, err = d.Get(context.Background(), server.URL("/b.zip"), nil, GetOptions{Cache: true, CacheTTL: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len())
}

func TestFilesystemCaches(t *testing.T) {
	server := testutil.NewFeedServer()
	defer server.Close()
	server.SetFeed("/static.zip", []byte("v1"))

	now := time.Now().Truncate(time.Second)
	d, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)
	d.TimeNow = func() time.Time { return now }

	opts := GetOptions{Cache: true, CacheTTL: time.Hour}

	body, err := d.Get(context.Background(), server.URL("/static.zip"), nil, opts)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), body)

	server.SetFeed("/static.zip", []byte("v2"))

	// A second instance over the same directory sees the cached copy
	d2, err := NewFilesystem(d.Path)
	require.NoError(t, err)
	d2.TimeNow = d.TimeNow

	body, err = d2.Get(context.Background(), server.URL("/static.zip"), nil, opts)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), body)
	assert.Equal(t, 1, server.RequestsFor("/static.zip"))

	now = now.Add(2 * time.Hour)
	body, err = d2.Get(context.Background(), server.URL("/static.zip"), nil, opts)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), body)
	assert.Equal(t, 2, server.RequestsFor("/static.zip"))
}

func TestFilesystemDoesNotCacheFailures(t *testing.T) {
	server := testutil.NewFeedServer()
	defer server.Close()
	server.SetStatus("/static.zip", http.StatusInternalServerError)

	d, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	opts := GetOptions{Cache: true, CacheTTL: time.Hour}

	_, err = d.Get(context.Background(), server.URL("/static.zip"), nil, opts)
	require.Error(t, err)

	var statusErr *StatusError
	assert.True(t, errors.As(err, &statusErr))

	server.SetFeed("/static.zip", []byte("ok"))
	body, err := d.Get(context.Background(), server.URL("/static.zip"), nil, opts)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), body)
}

func TestFilesystemForget(t *testing.T) {
	server := testutil.NewFeedServer()
	defer server.Close()
	server.SetFeed("/static.zip", []byte("v1"))

	d, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	opts := GetOptions{Cache: true, CacheTTL: time.Hour}

	_, err = d.Get(context.Background(), server.URL("/static.zip"), nil, opts)
	require.NoError(t, err)

	server.SetFeed("/static.zip", []byte("v2"))
	require.NoError(t, d.Forget(server.URL("/static.zip")))

	body, err := d.Get(context.Background(), server.URL("/static.zip"), nil, opts)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), body)

	// Forgetting what isn't there is fine
	require.NoError(t, d.Forget(server.URL("/missing.zip")))
}
