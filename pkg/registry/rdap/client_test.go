package rdap_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"domainintel/pkg/registry/rdap"
	"domainintel/pkg/serrors"

	"github.com/stretchr/testify/require"
)

// rtFunc allows using a function as an http.RoundTripper.
type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestClient(fn rtFunc) *rdap.Client {
	return rdap.New(&http.Client{Transport: fn}, rdap.Options{})
}

func respond(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(body))}
}

const verisignBody = `{
  "objectClassName": "domain",
  "ldhName": "GOOGLE.COM",
  "events": [
    {"eventAction": "registration", "eventDate": "1997-09-15T04:00:00Z"},
    {"eventAction": "expiration", "eventDate": "2028-09-14T04:00:00Z"}
  ],
  "entities": [
    {
      "objectClassName": "entity",
      "handle": "292",
      "roles": ["registrar"],
      "vcardArray": ["vcard", [["version", {}, "text", "4.0"], ["fn", {}, "text", "MarkMonitor Inc."]]],
      "entities": [{"roles": ["abuse"], "vcardArray": ["vcard", [["fn", {}, "text", "Abuse desk"]]]}]
    }
  ]
}`

func TestClient_DomainURL(t *testing.T) {
	c := rdap.New(http.DefaultClient, rdap.Options{
		Endpoints:   map[string]string{".test": "https://rdap.example.test/v1"},
		FallbackURL: "https://fallback.example/",
	})

	require.Equal(t, "https://rdap.verisign.com/com/v1/domain/google.com", c.DomainURL("google.com"))
	require.Equal(t, "https://rdap.example.test/v1/domain/a.test", c.DomainURL("a.test"))
	require.Equal(t, "https://fallback.example/domain/a.zz", c.DomainURL("a.zz"))
}

func TestClient_Lookup_success(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "rdap.verisign.com", r.URL.Host)
		require.Equal(t, "/com/v1/domain/google.com", r.URL.Path)
		require.Contains(t, r.Header.Get("Accept"), "application/rdap+json")

		return respond(http.StatusOK, verisignBody), nil
	})

	reg, err := c.Lookup(context.Background(), "google.com")
	require.NoError(t, err)
	require.Equal(t, "google.com", reg.Domain)
	require.Equal(t, "MarkMonitor Inc.", reg.Registrar)
	require.Equal(t, "1997-09-15T04:00:00Z", reg.CreatedAt)
	require.Equal(t, "rdap", reg.Source)
}

func TestClient_Lookup_nestedRegistrarHandle(t *testing.T) {
	body := `{"entities":[{"roles":["registrant"],"entities":[{"roles":["registrar"],"handle":"NAMECHEAP-INC"}]}]}`
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, "rdap.org", r.URL.Host)

		return respond(http.StatusOK, body), nil
	})

	reg, err := c.Lookup(context.Background(), "example.zz")
	require.NoError(t, err)
	require.Equal(t, "NAMECHEAP-INC", reg.Registrar)
	require.Empty(t, reg.CreatedAt)
}

func TestClient_Lookup_errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   serrors.Kind
	}{
		{name: "not found", status: http.StatusNotFound, body: "", kind: serrors.ErrNotFound},
		{name: "rate limited", status: http.StatusTooManyRequests, body: "slow down", kind: serrors.ErrRateLimited},
		{name: "server error", status: http.StatusBadGateway, body: "bad upstream", kind: serrors.ErrUpstream},
		{name: "invalid json", status: http.StatusOK, body: "<html>", kind: serrors.ErrUpstream},
		{name: "rdap error object", status: http.StatusOK, body: `{"errorCode":400,"title":"bad"}`, kind: serrors.ErrUpstream},
		{name: "empty record", status: http.StatusOK, body: `{"events":[]}`, kind: serrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(func(r *http.Request) (*http.Response, error) {
				return respond(tt.status, tt.body), nil
			})

			reg, err := c.Lookup(context.Background(), "example.com")
			require.Nil(t, reg)
			require.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestClient_Lookup_transportError(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return nil, io.ErrUnexpectedEOF
	})

	_, err := c.Lookup(context.Background(), "example.com")
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
