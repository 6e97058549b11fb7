// Package whois provides a registry.Client speaking the WHOIS protocol
// (RFC 3912) over TCP port 43.
package whois

import (
	"context"
	"io"
	"net"
	"regexp"
	"strings"
	"time"

	"domainintel/pkg/registry"
	"domainintel/pkg/serrors"

	"github.com/go-faster/errors"
)

const (
	// DefaultTimeout bounds dialing plus reading when the caller has no deadline.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxResponseBytes caps the amount of data read from a server.
	DefaultMaxResponseBytes int64 = 64 << 10
)

// defaultServers maps TLDs to their registry WHOIS servers.
var defaultServers = map[string]string{ //nolint: gochecknoglobals
	"com": "whois.verisign-grs.com", "net": "whois.verisign-grs.com",
	"org": "whois.pir.org", "io": "whois.nic.io",
	"dev": "whois.nic.google", "app": "whois.nic.google",
	"co": "whois.nic.co", "me": "whois.nic.me",
	"uk": "whois.nic.uk", "us": "whois.nic.us",
	"ca": "whois.cira.ca", "au": "whois.auda.org.au",
	"de": "whois.denic.de", "fr": "whois.nic.fr",
	"nl": "whois.sidn.nl", "eu": "whois.eu",
	"xyz": "whois.nic.xyz", "info": "whois.afilias.net",
	"biz": "whois.nic.biz", "top": "whois.nic.top",
	"edu": "whois.educause.edu", "gov": "whois.dotgov.gov",
}

var (
	registrarRe = regexp.MustCompile(`(?im)^\s*(?:registrar|sponsoring registrar|registrar[- ]name)\s*:\s*(.+)$`)
	createdRe   = regexp.MustCompile(
		`(?im)^\s*(?:creation date|created on|created|domain record activated|registered on|registration time)\s*:\s*(.+)$`)
)

// restrictedIndicators are phrases servers use when refusing to answer.
var restrictedIndicators = []string{ //nolint: gochecknoglobals
	"not authorised", "not authorized", "access denied",
	"ip address used to perform", "exceeded the established limit",
	"query rate limit exceeded", "too many queries",
}

// notFoundIndicators are phrases servers use for unregistered domains.
var notFoundIndicators = []string{ //nolint: gochecknoglobals
	"no match for", "not found", "no data found", "no entries found", "status: free",
}

// Options configures a Client.
type Options struct {
	// Servers adds or overrides WHOIS servers by TLD. Values may carry a port;
	// port 43 is used otherwise.
	Servers map[string]string
	// Timeout bounds a whole query when ctx carries no earlier deadline.
	Timeout time.Duration
	// MaxResponseBytes caps the response size.
	MaxResponseBytes int64
}

// Client queries WHOIS servers. It is safe for concurrent use.
type Client struct {
	servers  map[string]string
	timeout  time.Duration
	maxBytes int64
	dialer   net.Dialer
}

// Ensure Client conforms to the registry.Client interface at compile time.
var _ registry.Client = (*Client)(nil)

// New constructs a Client.
func New(opts Options) *Client {
	servers := make(map[string]string, len(defaultServers)+len(opts.Servers))
	for tld, s := range defaultServers {
		servers[tld] = s
	}
	for tld, s := range opts.Servers {
		servers[strings.TrimPrefix(strings.ToLower(tld), ".")] = s
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxResponseBytes <= 0 {
		opts.MaxResponseBytes = DefaultMaxResponseBytes
	}

	return &Client{servers: servers, timeout: opts.Timeout, maxBytes: opts.MaxResponseBytes}
}

// Name implements registry.Client.
func (c *Client) Name() string { return "whois" }

// serverFor returns the host:port of the WHOIS server for domain.
func (c *Client) serverFor(domain string) (string, bool) {
	tld := domain
	if i := strings.LastIndexByte(domain, '.'); i >= 0 {
		tld = domain[i+1:]
	}
	server, ok := c.servers[strings.ToLower(tld)]
	if !ok {
		return "", false
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "43")
	}

	return server, true
}

// Lookup queries the WHOIS server responsible for domain.
func (c *Client) Lookup(ctx context.Context, domain string) (*registry.Registration, error) {
	server, ok := c.serverFor(domain)
	if !ok {
		return nil, serrors.With(serrors.ErrNotFound, "whois: no server for %s", domain)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dialer.DialContext(ctx, "tcp", server)
	if err != nil {
		return nil, errors.Wrapf(err, "could not dial %s", server)
	}
	defer func() {
		_ = conn.Close()
	}()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := io.WriteString(conn, domain+"\r\n"); err != nil {
		return nil, errors.Wrap(err, "could not write query")
	}
	b, err := io.ReadAll(io.LimitReader(conn, c.maxBytes))
	if err != nil && len(b) == 0 {
		return nil, errors.Wrap(err, "could not read response")
	}

	reg, err := Parse(string(b))
	if err != nil {
		return nil, err
	}
	reg.Domain = domain
	reg.Source = c.Name()

	return reg, nil
}

// Parse extracts registrar and creation date from a raw WHOIS response.
func Parse(raw string) (*registry.Registration, error) {
	reg := &registry.Registration{
		Registrar: firstValue(registrarRe, raw),
		CreatedAt: firstValue(createdRe, raw),
	}
	if reg.Registrar != "" || reg.CreatedAt != "" {
		return reg, nil
	}

	// Registry footers quote the restriction phrases too, so they only
	// count once nothing could be extracted.
	lower := strings.ToLower(raw)
	for _, indicator := range notFoundIndicators {
		if strings.Contains(lower, indicator) {
			return nil, serrors.With(serrors.ErrNotFound, "whois: domain not registered")
		}
	}
	for _, indicator := range restrictedIndicators {
		if strings.Contains(lower, indicator) {
			return nil, serrors.With(serrors.ErrRateLimited, "whois: access restricted")
		}
	}

	return nil, serrors.With(serrors.ErrNotFound, "whois: no registration data")
}

// firstValue returns the first usable capture of re in raw.
func firstValue(re *regexp.Regexp, raw string) string {
	for _, m := range re.FindAllStringSubmatch(raw, -1) {
		v := strings.TrimSpace(m[1])
		lv := strings.ToLower(v)
		if v == "" || strings.HasPrefix(lv, "http") || lv == "not available" || strings.Contains(lv, "redacted") {
			continue
		}

		return v
	}

	return ""
}
