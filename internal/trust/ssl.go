package trust

import (
	"strings"

	"domainintel/pkg/domain"
)

const (
	// MsgHTTPS is reported when the input used the https scheme.
	MsgHTTPS = "Website uses HTTPS encryption"
	// MsgNoHTTPS is reported otherwise.
	MsgNoHTTPS = "Website does not use HTTPS encryption"
)

// AnalyzeSSL reports whether raw starts with "https://" (case-insensitive).
// No connection is made: this only looks at the scheme the caller typed, and
// raw is not trimmed, so leading whitespace means no HTTPS.
func AnalyzeSSL(raw string) domain.SSLSignal {
	if strings.HasPrefix(strings.ToLower(raw), "https://") {
		return domain.SSLSignal{HasSSL: true, Message: MsgHTTPS}
	}

	return domain.SSLSignal{HasSSL: false, Message: MsgNoHTTPS}
}
