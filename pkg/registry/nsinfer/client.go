// Package nsinfer guesses the registrar of a domain from its authoritative
// nameservers. Many registrars host DNS for their customers by default, so
// the NS suffix is a weak but cheap registrar signal.
package nsinfer

import (
	"context"
	"strings"
	"time"

	"domainintel/pkg/registry"
	"domainintel/pkg/serrors"

	"github.com/go-faster/errors"
	"github.com/miekg/dns"
)

const (
	// DefaultServer is the recursive resolver queried for NS records.
	DefaultServer = "1.1.1.1:53"
	// DefaultTimeout bounds a single DNS exchange.
	DefaultTimeout = 3 * time.Second
)

// nsRegistrars maps nameserver suffixes to registrar names.
var nsRegistrars = []struct { //nolint: gochecknoglobals
	suffix    string
	registrar string
}{
	{"domaincontrol.com", "GoDaddy"},
	{"registrar-servers.com", "Namecheap"},
	{"googledomains.com", "Google Domains"},
	{"ns.cloudflare.com", "Cloudflare"},
	{"worldnic.com", "Network Solutions"},
	{"azure-dns.com", "Microsoft"},
	{"name-services.com", "Enom / Tucows"},
	{"dns-parking.com", "Hostinger"},
	{"porkbun.com", "Porkbun"},
	{"dynadot.com", "Dynadot"},
	{"gandi.net", "Gandi SAS"},
	{"ovh.net", "OVHcloud"},
	{"ui-dns.com", "IONOS"},
}

// Options configures a Client.
type Options struct {
	// Server is the resolver address (host:port). Defaults to DefaultServer.
	Server string
	// Timeout bounds a single exchange. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Client infers registrars from NS records. It is safe for concurrent use.
type Client struct {
	server string
	dns    *dns.Client
}

// Ensure Client conforms to the registry.Client interface at compile time.
var _ registry.Client = (*Client)(nil)

// New constructs a Client.
func New(opts Options) *Client {
	if opts.Server == "" {
		opts.Server = DefaultServer
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	return &Client{server: opts.Server, dns: &dns.Client{Net: "udp", Timeout: opts.Timeout}}
}

// Name implements registry.Client.
func (c *Client) Name() string { return "dns" }

// Lookup resolves the NS records of domain and maps them to a registrar.
func (c *Client) Lookup(ctx context.Context, domain string) (*registry.Registration, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domain), dns.TypeNS)
	m.RecursionDesired = true

	r, _, err := c.dns.ExchangeContext(ctx, m, c.server)
	if err != nil {
		return nil, errors.Wrapf(err, "could not query NS for %s", domain)
	}
	if r.Rcode == dns.RcodeNameError {
		return nil, serrors.With(serrors.ErrNotFound, "dns: %s does not exist", domain)
	}
	if r.Rcode != dns.RcodeSuccess {
		return nil, serrors.With(serrors.ErrUpstream, "dns: rcode %s", dns.RcodeToString[r.Rcode])
	}

	for _, rr := range r.Answer {
		ns, ok := rr.(*dns.NS)
		if !ok {
			continue
		}
		if registrar := Infer(ns.Ns); registrar != "" {
			return &registry.Registration{Domain: domain, Registrar: registrar, Source: c.Name()}, nil
		}
	}

	return nil, serrors.With(serrors.ErrNotFound, "dns: no known nameserver for %s", domain)
}

// Infer returns the registrar associated with nameserver host, or "".
func Infer(nameserver string) string {
	host := strings.ToLower(strings.TrimSuffix(nameserver, "."))
	for _, p := range nsRegistrars {
		if host == p.suffix || strings.HasSuffix(host, "."+p.suffix) {
			return p.registrar
		}
	}
	if strings.Contains(host, ".awsdns-") {
		return "Amazon"
	}

	return ""
}
