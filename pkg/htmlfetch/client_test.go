package htmlfetch_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"domainintel/pkg/htmlfetch"
	"domainintel/pkg/serrors"

	"github.com/stretchr/testify/require"
)

// rtFunc allows using a function as an http.RoundTripper.
type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestClient(fn rtFunc, maxBody int64) *htmlfetch.Client {
	return htmlfetch.New(htmlfetch.Options{Transport: fn, MaxBodyBytes: maxBody})
}

func response(status int, contentType, body string) *http.Response {
	h := http.Header{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}

	return &http.Response{StatusCode: status, Header: h, Body: io.NopCloser(strings.NewReader(body))}
}

func TestFetch_SendsBrowserHeaders(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, htmlfetch.DefaultUserAgent, r.Header.Get("User-Agent"))
		require.Equal(t, htmlfetch.AcceptHTML, r.Header.Get("Accept"))
		require.NotEmpty(t, r.Header.Get("Accept-Language"))

		return response(http.StatusOK, "text/html; charset=utf-8", "<p>$9.99</p>"), nil
	}, 0)

	body, err := c.Fetch(context.Background(), "https://www.example.com/search?domain=a.com")
	require.NoError(t, err)
	require.Equal(t, "<p>$9.99</p>", body)
}

func TestFetch_DecodesCharset(t *testing.T) {
	// "café" in ISO-8859-1
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return response(http.StatusOK, "text/html; charset=iso-8859-1", "caf\xe9"), nil
	}, 0)

	body, err := c.Fetch(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.Equal(t, "café", body)
}

func TestFetch_CapsBody(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return response(http.StatusOK, "text/html", strings.Repeat("a", 100)), nil
	}, 10)

	body, err := c.Fetch(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.Len(t, body, 10)
}

func TestFetch_StatusErrors(t *testing.T) {
	tests := []struct {
		status int
		kind   serrors.Kind
	}{
		{http.StatusTooManyRequests, serrors.ErrRateLimited},
		{http.StatusForbidden, serrors.ErrUpstream},
		{http.StatusBadGateway, serrors.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(func(r *http.Request) (*http.Response, error) {
				return response(tt.status, "text/html", "denied"), nil
			}, 0)

			_, err := c.Fetch(context.Background(), "https://example.com")
			require.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestFetch_ContextTimeout(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		<-r.Context().Done()

		return nil, r.Context().Err()
	}, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Fetch(ctx, "https://example.com")
	require.ErrorIs(t, err, serrors.ErrTimeout)
}

func TestDefault_IsSingleton(t *testing.T) {
	a := htmlfetch.Default()
	b := htmlfetch.Default()
	require.Same(t, a, b)
	require.Equal(t, htmlfetch.DefaultUserAgent, a.UserAgent())
	require.Equal(t, htmlfetch.DefaultTimeout, a.Timeout())
}

func TestNew_Timeout(t *testing.T) {
	require.Equal(t, 12*time.Second, htmlfetch.New(htmlfetch.Options{Timeout: 12 * time.Second}).Timeout())
}
