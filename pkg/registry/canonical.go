package registry

import "strings"

// registrarAliases maps lower-case fragments of raw registrar names onto the
// canonical names used by the reputation list. Order matters: the first
// matching fragment wins.
var registrarAliases = []struct { //nolint: gochecknoglobals
	fragment  string
	canonical string
}{
	{"godaddy", "GoDaddy"},
	{"wild west domains", "GoDaddy"},
	{"namecheap", "Namecheap"},
	{"google", "Google Domains"},
	{"cloudflare", "Cloudflare"},
	{"amazon", "Amazon"},
	{"microsoft", "Microsoft"},
	{"network solutions", "Network Solutions"},
}

// CanonicalRegistrar maps a raw registrar string such as "GoDaddy.com, LLC"
// onto its canonical name ("GoDaddy"). Unknown registrars are returned
// trimmed but otherwise unchanged.
func CanonicalRegistrar(raw string) string {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	for _, a := range registrarAliases {
		if strings.Contains(lower, a.fragment) {
			return a.canonical
		}
	}

	return trimmed
}
