package release

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/veracode/cli-installer/internal/config"
)

// latestVersionFile is the well-known plain-text pointer to the current release.
const latestVersionFile = "LATEST_VERSION"

// HTTPDoer describes the minimal HTTP client capability required by the
// resolver, allowing tests to substitute their own implementation.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client for every request made by the
// client, including artifact transfers.
func WithHTTPClient(h HTTPDoer) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
			c.downloadClient = h
		}
	}
}

// Client resolves release versions and composes artifact URLs against a base URL.
type Client struct {
	baseURL        string
	httpClient     HTTPDoer
	downloadClient HTTPDoer
}

// NewClient creates a release client. The proxy URL, when non-empty, is
// validated before use and routes every request made by the client.
func NewClient(baseURL, proxy string, timeout time.Duration, opts ...Option) (*Client, error) {
	httpClient, err := NewHTTPClient(proxy, timeout)
	if err != nil {
		return nil, err
	}

	downloadClient, err := NewDownloadHTTPClient(proxy, timeout)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     httpClient,
		downloadClient: downloadClient,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// NewHTTPClient builds an *http.Client, optionally routed through an http://
// proxy. The proxy scheme is validated before any request is attempted.
func NewHTTPClient(proxy string, timeout time.Duration) (*http.Client, error) {
	if err := config.ValidateProxy(proxy); err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: timeout}

	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}

		client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	return client, nil
}

// NewDownloadHTTPClient builds an *http.Client for artifact transfers. The
// timeout caps dialing, the TLS handshake and the wait for response headers
// only; reading the body is unbounded, so a large archive is never cut off
// partway through the transfer.
func NewDownloadHTTPClient(proxy string, timeout time.Duration) (*http.Client, error) {
	if err := config.ValidateProxy(proxy); err != nil {
		return nil, err
	}

	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
	}

	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}

		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &http.Client{Transport: transport}, nil
}

// ResolveVersion returns the trimmed explicit version when one is supplied,
// making no network calls. Otherwise it fetches the latest-version pointer
// from the base URL and returns the trimmed response body.
func (c *Client) ResolveVersion(ctx context.Context, explicit string) (string, error) {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return trimmed, nil
	}

	latestURL := c.ArtifactURL(latestVersionFile)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, latestURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build latest version request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch latest version: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch latest version: %s returned %s", latestURL, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read latest version: %w", err)
	}

	return strings.TrimSpace(string(body)), nil
}

// ArtifactURL composes the fully-qualified URL of a file hosted under the
// base URL, normalizing duplicate slashes in the path.
func (c *Client) ArtifactURL(fileName string) string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		// The base URL is validated at config load; fall back to naive joining.
		return c.baseURL + "/" + fileName
	}

	u.Path = path.Join(u.Path, fileName)

	return u.String()
}

// DownloadClient exposes the transfer client so the downloader shares the
// same proxy configuration without the resolver's overall request timeout.
func (c *Client) DownloadClient() HTTPDoer {
	return c.downloadClient
}
