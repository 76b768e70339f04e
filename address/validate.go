package address

import (
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"

	"github.com/moriyoshi/badass-srs/internal/rfc5322/addrspec"
)

// Validate reports whether address looks like a deliverable bare address.
// It is a best-effort check and not a full RFC 5321 validator.
func Validate(address string) bool {
	spec, err := addrspec.Parse(address)
	if err != nil {
		return false
	}
	if spec.Domain.Type == addrspec.DomainLiteral {
		return isIPv4Literal(string(spec.Domain.ValueBytes()))
	}
	return isHostname(string(spec.Domain.Data))
}

func isIPv4Literal(s string) bool {
	octets := strings.Split(s, ".")
	if len(octets) != 4 {
		return false
	}
	for _, o := range octets {
		if len(o) < 1 || len(o) > 3 {
			return false
		}
		for i := 0; i < len(o); i++ {
			if o[i] < '0' || o[i] > '9' {
				return false
			}
		}
	}
	return true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func isLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}

func isLabel(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '-') {
			return false
		}
	}
	return true
}

func isHostname(domain string) bool {
	if !isASCII(domain) {
		var err error
		domain, err = idna.Lookup.ToASCII(domain)
		if err != nil {
			return false
		}
	}
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !isLabel(label) {
			return false
		}
	}
	tld := labels[len(labels)-1]
	if len(tld) > 4 && strings.EqualFold(tld[:4], "xn--") {
		return true
	}
	return len(tld) >= 2 && isLetters(tld)
}

// NormalizeDomain maps domain to the lower-cased ASCII (punycode) form of
// its NFC normalisation.
func NormalizeDomain(domain string) (string, error) {
	domain = strings.TrimSuffix(domain, ".")
	mapped, err := idna.Lookup.ToUnicode(domain)
	if err != nil {
		return domain, err
	}
	ascii, err := idna.Lookup.ToASCII(norm.NFC.String(mapped))
	if err != nil {
		return domain, err
	}
	return strings.ToLower(ascii), nil
}
