package source

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/c360/dynsynonym/config"
	"github.com/c360/dynsynonym/errors"
	"github.com/c360/dynsynonym/pkg/retry"
)

// RemoteSource fetches synonym rules from an HTTP endpoint. Change
// detection issues a conditional GET carrying the validators from the last
// successful fetch (If-None-Match for ETag, If-Modified-Since for
// Last-Modified); a 304 means unchanged. Fetch performs a full GET and
// records the response validators as the new freshness marker.
//
// The pooled HTTP client lives for the lifetime of the source and is
// released exactly once by Close. Per-request bodies are drained and closed
// on every path so connections return to the pool.
type RemoteSource struct {
	url      string
	client   *http.Client
	retryCfg retry.Config

	mu           sync.Mutex
	etag         string
	lastModified string

	closeOnce sync.Once
}

// NewRemoteSource creates an HTTP-backed source from a validated filter
// configuration.
func NewRemoteSource(cfg config.FilterConfig) *RemoteSource {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout(),
		}).DialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout(),
		ResponseHeaderTimeout: cfg.ReadTimeout(),
		MaxIdleConns:          4,
		MaxIdleConnsPerHost:   2,
	}

	return &RemoteSource{
		url: cfg.Location,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.ConnectTimeout() + cfg.ReadTimeout(),
		},
		retryCfg: retry.Remote(),
	}
}

// CheckChanged issues a conditional request against the stored validators.
// Before the first successful Fetch there is nothing to compare against and
// it reports changed without a request.
func (r *RemoteSource) CheckChanged(ctx context.Context) (bool, error) {
	r.mu.Lock()
	etag, lastModified := r.etag, r.lastModified
	r.mu.Unlock()

	if etag == "" && lastModified == "" {
		return true, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return false, errors.WrapFatal(err, "RemoteSource", "CheckChanged", "build request")
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return false, unavailable(err, "RemoteSource", "CheckChanged", "conditional GET")
	}
	defer drain(resp)

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	default:
		return false, unavailable(
			fmt.Errorf("unexpected status %s", resp.Status),
			"RemoteSource", "CheckChanged", "conditional GET")
	}
}

// Fetch GETs the full rule body. Transport errors and 5xx responses are
// retried within a small budget; on success the response validators become
// the new freshness marker, on failure the marker is untouched.
func (r *RemoteSource) Fetch(ctx context.Context) ([]byte, error) {
	return retry.DoWithResult(ctx, r.retryCfg, func() ([]byte, error) {
		return r.fetchOnce(ctx)
	})
}

func (r *RemoteSource) fetchOnce(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, retry.NonRetryable(
			errors.WrapFatal(err, "RemoteSource", "Fetch", "build request"))
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, unavailable(err, "RemoteSource", "Fetch", "GET body")
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := unavailable(
			fmt.Errorf("unexpected status %s", resp.Status),
			"RemoteSource", "Fetch", "GET body")
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// Client errors won't resolve within this cycle's retry budget
			return nil, retry.NonRetryable(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable(err, "RemoteSource", "Fetch", "read body")
	}

	r.mu.Lock()
	r.etag = resp.Header.Get("ETag")
	r.lastModified = resp.Header.Get("Last-Modified")
	r.mu.Unlock()

	return body, nil
}

// Describe identifies this source
func (r *RemoteSource) Describe() Descriptor {
	return Descriptor{Kind: config.SourceRemote, Location: r.url}
}

// Close releases the pooled connections exactly once
func (r *RemoteSource) Close() error {
	r.closeOnce.Do(func() {
		r.client.CloseIdleConnections()
	})
	return nil
}

// drain consumes and closes a response body so the connection can be reused
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
