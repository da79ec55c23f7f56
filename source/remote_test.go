package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/dynsynonym/config"
	"github.com/c360/dynsynonym/errors"
	"github.com/c360/dynsynonym/pkg/retry"
)

func remoteConfig(url string) config.FilterConfig {
	cfg := config.DefaultFilterConfig()
	cfg.SourceKind = config.SourceRemote
	cfg.Location = url
	cfg.ConnectTimeoutMs = 1000
	cfg.ReadTimeoutMs = 1000
	return cfg
}

// newTestRemote disables retry jitter and shrinks delays so failure tests
// stay fast.
func newTestRemote(url string) *RemoteSource {
	src := NewRemoteSource(remoteConfig(url))
	src.retryCfg = retry.Config{MaxAttempts: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1.0}
	return src
}

func TestRemoteSource_ConditionalGetCycle(t *testing.T) {
	ctx := context.Background()
	var conditional atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			conditional.Add(1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte("a,b,c"))
	}))
	defer server.Close()

	src := newTestRemote(server.URL)
	defer src.Close()

	// First poll: no validator yet, changed without a request
	changed, err := src.CheckChanged(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	body, err := src.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a,b,c", string(body))

	// Second poll: 304, no fetch needed
	changed, err = src.CheckChanged(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, int64(1), conditional.Load())
}

func TestRemoteSource_LastModifiedValidator(t *testing.T) {
	ctx := context.Background()
	const stamp = "Wed, 01 Jan 2025 00:00:00 GMT"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-Modified-Since") == stamp {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Last-Modified", stamp)
		_, _ = w.Write([]byte("x,y"))
	}))
	defer server.Close()

	src := newTestRemote(server.URL)
	defer src.Close()

	_, err := src.Fetch(ctx)
	require.NoError(t, err)

	changed, err := src.CheckChanged(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRemoteSource_ChangedContentTriggersFetch(t *testing.T) {
	ctx := context.Background()
	var version atomic.Int64
	version.Store(1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		etag := `"v1"`
		body := "a,b"
		if version.Load() == 2 {
			etag = `"v2"`
			body = "a,b,c"
		}
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	src := newTestRemote(server.URL)
	defer src.Close()

	_, err := src.Fetch(ctx)
	require.NoError(t, err)

	version.Store(2)
	changed, err := src.CheckChanged(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	body, err := src.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a,b,c", string(body))
}

func TestRemoteSource_TimeoutLeavesMarkerUnchanged(t *testing.T) {
	ctx := context.Background()
	var hang atomic.Bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hang.Load() {
			time.Sleep(2 * time.Second)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte("a,b"))
	}))
	defer server.Close()

	cfg := remoteConfig(server.URL)
	cfg.ReadTimeoutMs = 100
	src := NewRemoteSource(cfg)
	src.retryCfg = retry.Config{MaxAttempts: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1.0}
	defer src.Close()

	_, err := src.Fetch(ctx)
	require.NoError(t, err)

	hang.Store(true)
	_, err = src.Fetch(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSourceUnavailable)

	// Marker unchanged: the stored validator is still v1
	src.mu.Lock()
	etag := src.etag
	src.mu.Unlock()
	assert.Equal(t, `"v1"`, etag)

	// Next poll retries from the last known good state
	hang.Store(false)
	changed, err := src.CheckChanged(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRemoteSource_ServerErrorRetriedThenSurfaced(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	src := NewRemoteSource(remoteConfig(server.URL))
	src.retryCfg = retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1.0}
	defer src.Close()

	_, err := src.Fetch(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSourceUnavailable)
	assert.Equal(t, int64(2), calls.Load(), "5xx is retried within the cycle budget")
}

func TestRemoteSource_NotFoundNotRetried(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	src := NewRemoteSource(remoteConfig(server.URL))
	src.retryCfg = retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1.0}
	defer src.Close()

	_, err := src.Fetch(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSourceUnavailable)
	assert.Equal(t, int64(1), calls.Load(), "4xx fails the cycle immediately")
}

func TestRemoteSource_CloseIdempotent(t *testing.T) {
	src := newTestRemote("http://rules.internal/synonyms.txt")
	assert.NoError(t, src.Close())
	assert.NoError(t, src.Close())
}

func TestRemoteSource_Describe(t *testing.T) {
	src := newTestRemote("http://rules.internal/synonyms.txt")
	d := src.Describe()
	assert.Equal(t, config.SourceRemote, d.Kind)
	assert.Equal(t, "remote:http://rules.internal/synonyms.txt", d.String())
}
