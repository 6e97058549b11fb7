// Package htmlfetch downloads third-party HTML pages the way a browser would
// and returns their bodies decoded to UTF-8.
package htmlfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"domainintel/pkg/serrors"

	"golang.org/x/net/html/charset"
)

const (
	// DefaultUserAgent mimics a desktop browser; storefronts often refuse
	// unknown agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	// AcceptHTML is sent as the Accept header of every request.
	AcceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	// DefaultTimeout bounds a fetch when the caller's context has no deadline.
	DefaultTimeout = 8 * time.Second
	// DefaultMaxBodyBytes caps how much of a page is read.
	DefaultMaxBodyBytes int64 = 2 << 20
)

// Options configures a Client. Zero values fall back to the package defaults.
type Options struct {
	// Timeout is the overall timeout of the underlying http.Client.
	Timeout time.Duration
	// UserAgent is sent with every request.
	UserAgent string
	// MaxBodyBytes caps the number of body bytes read per response.
	MaxBodyBytes int64
	// Transport overrides the HTTP transport, mostly for tests.
	Transport http.RoundTripper
}

// Client fetches HTML pages. It is safe for concurrent use and holds no
// mutable state after construction.
type Client struct {
	httpClient   *http.Client
	userAgent    string
	maxBodyBytes int64
}

// New constructs a Client from opts.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
		}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after %d redirects", len(via))
				}

				return nil
			},
		},
		userAgent:    opts.UserAgent,
		maxBodyBytes: opts.MaxBodyBytes,
	}
}

var (
	defaultOnce   sync.Once //nolint: gochecknoglobals
	defaultClient *Client   //nolint: gochecknoglobals
)

// Default returns the process-wide Client built with default options. It is
// created on first use and never modified afterwards.
func Default() *Client {
	defaultOnce.Do(func() {
		defaultClient = New(Options{})
	})

	return defaultClient
}

// UserAgent returns the user agent sent by c.
func (c *Client) UserAgent() string { return c.userAgent }

// Timeout returns the overall timeout of a single fetch.
func (c *Client) Timeout() time.Duration { return c.httpClient.Timeout }

// Fetch performs a GET request for pageURL and returns the body decoded to
// UTF-8. Non-2xx statuses are returned as serrors.ErrRateLimited (429) or
// serrors.ErrUpstream; context expiry as serrors.ErrTimeout.
func (c *Client) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", AcceptHTML)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", serrors.Wrap(serrors.ErrTimeout, err, "could not fetch %s", pageURL)
		}

		return "", fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", serrors.With(serrors.ErrRateLimited, "rate limited by %s", req.URL.Host)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", serrors.With(serrors.ErrUpstream, "unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		reader = resp.Body
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, io.LimitReader(reader, c.maxBodyBytes)); err != nil {
		return "", fmt.Errorf("could not read response body: %w", err)
	}

	return sb.String(), nil
}
