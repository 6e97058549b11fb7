// Package domainname turns free-text URL input into canonical domain names.
// Every function in this package is pure: no I/O, no shared state.
package domainname

import (
	"net"
	"net/url"
	"path"
	"sort"
	"strings"

	"domainintel/pkg/domain"
	"domainintel/pkg/serrors"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

const (
	// MsgRequired is reported for empty or whitespace-only input.
	MsgRequired = "URL is required"
	// MsgInvalid is reported when the input does not parse into a URL with a host.
	MsgInvalid = "Invalid URL format"
)

// idnaProfile maps internationalized names to their ASCII form for lookups.
var idnaProfile = idna.New(idna.MapForLookup(), idna.Transitional(false)) //nolint: gochecknoglobals

// withScheme prepends https:// unless raw already starts with http:// or
// https:// (case-insensitive).
func withScheme(raw string) string {
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}

	return "https://" + raw
}

// Parse parses free-text input into a URL, defaulting the scheme to https.
// The returned error is a serrors.ErrBadRequest carrying MsgRequired or
// MsgInvalid as its message.
func Parse(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, serrors.With(serrors.ErrBadRequest, MsgRequired)
	}

	u, err := url.Parse(withScheme(trimmed))
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, MsgInvalid)
	}
	if u.Hostname() == "" {
		return nil, serrors.With(serrors.ErrBadRequest, MsgInvalid)
	}

	return u, nil
}

// Validate reports whether raw is a syntactically valid URL, after
// prepending https:// when no http(s) scheme is present.
func Validate(raw string) domain.ValidationResult {
	if _, err := Parse(raw); err != nil {
		return domain.ValidationResult{IsValid: false, Error: serrors.Message(err, MsgInvalid)}
	}

	return domain.ValidationResult{IsValid: true}
}

// stripHost lowercases host, removes a trailing root dot and a leading "www.".
func stripHost(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")

	return strings.TrimPrefix(host, "www.")
}

// ExtractDomain returns the lowercase hostname of raw without a leading
// "www.". When raw cannot be parsed it is returned unchanged.
func ExtractDomain(raw string) string {
	u, err := Parse(raw)
	if err != nil {
		return raw
	}

	return stripHost(u.Hostname())
}

// Normalize validates raw and returns its canonical domain. Internationalized
// hostnames are converted to their ASCII (punycode) form when possible.
func Normalize(raw string) (domain.NormalizedDomain, error) {
	u, err := Parse(raw)
	if err != nil {
		return domain.NormalizedDomain{}, err
	}

	host := stripHost(u.Hostname())
	if ascii, err := idnaProfile.ToASCII(host); err == nil && ascii != "" {
		host = ascii
	}

	return domain.NormalizedDomain{Hostname: host}, nil
}

// TLD returns the last label of host prefixed with a dot, e.g. ".com".
// Single-label hosts and IP addresses have no TLD.
func TLD(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if net.ParseIP(host) != nil {
		return ""
	}
	i := strings.LastIndexByte(host, '.')
	if i < 0 || i == len(host)-1 {
		return ""
	}

	return host[i:]
}

// Registrable returns the registrable domain (eTLD+1) of host according to
// the public suffix list, falling back to host itself.
func Registrable(host string) string {
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}

	return registrable
}

// CanonicalURL returns a canonical representation of raw:
//   - scheme defaults to https and is lower-cased together with the host
//   - default ports are dropped
//   - the path is cleaned, "/" when empty, without trailing slash
//   - query parameters are sorted by key and value
//   - the fragment is removed
func CanonicalURL(raw string) (string, error) {
	u, err := Parse(raw)
	if err != nil {
		return "", err
	}

	u.Scheme = strings.ToLower(u.Scheme)

	cleaned := path.Clean("/" + u.Path)
	if cleaned != "/" {
		cleaned = strings.TrimRight(cleaned, "/")
	}
	u.Path = cleaned
	u.RawPath = ""

	host := strings.ToLower(u.Hostname())
	port := u.Port()
	switch {
	case port == "",
		u.Scheme == "http" && port == "80",
		u.Scheme == "https" && port == "443":
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
		u.Host = host
	default:
		u.Host = net.JoinHostPort(host, port)
	}

	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			sort.Strings(q[k])
		}
		u.RawQuery = q.Encode()
	}
	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), nil
}
