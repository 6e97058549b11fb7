// Package rdap provides a registry.Client backed by public RDAP services.
package rdap

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"domainintel/pkg/registry"
	"domainintel/pkg/serrors"

	"github.com/go-faster/errors"
)

// DefaultFallbackURL is the RDAP redirector used for TLDs without a direct endpoint.
const DefaultFallbackURL = "https://rdap.org/"

// maxBodyBytes caps RDAP response bodies.
const maxBodyBytes = 1 << 20

// directEndpoints lists registry RDAP base URLs by TLD. Going direct saves
// the redirect through rdap.org, which is rate limited.
var directEndpoints = map[string]string{ //nolint: gochecknoglobals
	"com":    "https://rdap.verisign.com/com/v1/",
	"net":    "https://rdap.verisign.com/net/v1/",
	"org":    "https://rdap.publicinterestregistry.net/rdap/",
	"io":     "https://rdap.nic.io/",
	"dev":    "https://rdap.nic.google/",
	"app":    "https://rdap.nic.google/",
	"uk":     "https://rdap.nominet.uk/uk/",
	"eu":     "https://rdap.eu/",
	"nl":     "https://rdap.sidn.nl/rdap/",
	"au":     "https://rdap.auda.org.au/rdap/",
	"cc":     "https://rdap.verisign.com/cc/v1/",
	"tv":     "https://rdap.verisign.com/tv/v1/",
	"xyz":    "https://rdap.centralnic.com/xyz/",
	"co":     "https://rdap.nic.co/",
	"me":     "https://rdap.nic.me/",
	"ai":     "https://rdap.nic.ai/",
	"info":   "https://rdap.afilias.net/rdap/info/",
	"biz":    "https://rdap.nic.biz/",
	"online": "https://rdap.centralnic.com/online/",
	"site":   "https://rdap.centralnic.com/site/",
	"top":    "https://rdap.nic.top/",
}

// Options configures a Client.
type Options struct {
	// Endpoints adds or overrides RDAP base URLs by TLD (without dot).
	Endpoints map[string]string
	// FallbackURL is used for TLDs without an endpoint. Defaults to DefaultFallbackURL.
	FallbackURL string
}

// Client looks up domains over RDAP. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	endpoints  map[string]string
	fallback   string
}

// Ensure Client conforms to the registry.Client interface at compile time.
var _ registry.Client = (*Client)(nil)

// New constructs a Client using httpClient for all requests.
func New(httpClient *http.Client, opts Options) *Client {
	endpoints := make(map[string]string, len(directEndpoints)+len(opts.Endpoints))
	for tld, ep := range directEndpoints {
		endpoints[tld] = ep
	}
	for tld, ep := range opts.Endpoints {
		endpoints[strings.TrimPrefix(strings.ToLower(tld), ".")] = ep
	}
	if opts.FallbackURL == "" {
		opts.FallbackURL = DefaultFallbackURL
	}

	return &Client{httpClient: httpClient, endpoints: endpoints, fallback: opts.FallbackURL}
}

// Name implements registry.Client.
func (c *Client) Name() string { return "rdap" }

// DomainURL returns the RDAP domain query URL for domain.
func (c *Client) DomainURL(domain string) string {
	tld := domain
	if i := strings.LastIndexByte(domain, '.'); i >= 0 {
		tld = domain[i+1:]
	}
	endpoint, ok := c.endpoints[strings.ToLower(tld)]
	if !ok {
		endpoint = c.fallback
	}

	return strings.TrimRight(endpoint, "/") + "/domain/" + domain
}

type entity struct {
	Roles      []string          `json:"roles"`
	Handle     string            `json:"handle"`
	VCardArray []json.RawMessage `json:"vcardArray"`
	Entities   []entity          `json:"entities"`
}

type event struct {
	Action string `json:"eventAction"`
	Date   string `json:"eventDate"`
}

type domainResponse struct {
	ErrorCode *int     `json:"errorCode"`
	Title     string   `json:"title"`
	Events    []event  `json:"events"`
	Entities  []entity `json:"entities"`
}

// Lookup queries the RDAP service responsible for domain.
func (c *Client) Lookup(ctx context.Context, domain string) (*registry.Registration, error) {
	// https://www.rfc-editor.org/rfc/rfc9083
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DomainURL(domain), nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not create request")
	}
	req.Header.Set("Accept", "application/rdap+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "could not send request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "could not read response body")
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, serrors.With(serrors.ErrNotFound, "rdap: %s not found", domain)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, serrors.With(serrors.ErrRateLimited, "rdap: rate limited")
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, serrors.With(serrors.ErrUpstream, "rdap: unexpected status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var dr domainResponse
	if err := json.Unmarshal(b, &dr); err != nil {
		return nil, serrors.Wrap(serrors.ErrUpstream, err, "rdap: could not decode response")
	}
	if dr.ErrorCode != nil {
		return nil, serrors.With(serrors.ErrUpstream, "rdap: error %d: %s", *dr.ErrorCode, dr.Title)
	}

	reg := &registry.Registration{
		Domain:    domain,
		Registrar: registrarName(dr.Entities),
		CreatedAt: registrationDate(dr.Events),
		Source:    c.Name(),
	}
	if reg.Registrar == "" && reg.CreatedAt == "" {
		return nil, serrors.With(serrors.ErrNotFound, "rdap: no registration data for %s", domain)
	}

	return reg, nil
}

func registrationDate(events []event) string {
	for _, e := range events {
		if strings.EqualFold(e.Action, "registration") {
			return e.Date
		}
	}

	return ""
}

// registrarName walks the entity tree and returns the name of the first
// entity with the registrar role.
func registrarName(entities []entity) string {
	for _, e := range entities {
		if !hasRole(e, "registrar") {
			if name := registrarName(e.Entities); name != "" {
				return name
			}

			continue
		}
		if name := vcardFN(e.VCardArray); name != "" {
			return name
		}
		if e.Handle != "" && !isDigits(e.Handle) {
			return e.Handle
		}
	}

	return ""
}

func hasRole(e entity, role string) bool {
	for _, r := range e.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}

	return false
}

// vcardFN extracts the formatted name from a jCard: ["vcard", [[name, params, type, value], ...]].
func vcardFN(vcard []json.RawMessage) string {
	if len(vcard) != 2 {
		return ""
	}
	var props [][]json.RawMessage
	if err := json.Unmarshal(vcard[1], &props); err != nil {
		return ""
	}
	for _, p := range props {
		if len(p) < 4 {
			continue
		}
		var name, value string
		if json.Unmarshal(p[0], &name) != nil || name != "fn" {
			continue
		}
		if json.Unmarshal(p[3], &value) == nil {
			return strings.TrimSpace(value)
		}
	}

	return ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return s != ""
}
