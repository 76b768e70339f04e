package srs

import (
	"strings"

	"github.com/moriyoshi/badass-srs/address"
)

// Address is the result of classifying a bare address: one of Plain, SRS0 or
// SRS1.
type Address interface {
	String() string
	isAddress()
}

// Plain is an address that carries no SRS tag.
type Plain struct {
	LocalPart string
	Domain    string
}

func (Plain) isAddress() {}

func (a Plain) String() string {
	return a.LocalPart + "@" + a.Domain
}

// SRS0 is a single-hop tag:
//
//	SRS0=HHHH=TT=orig-domain=orig-local-part@host
type SRS0 struct {
	Separator Separator
	Hash      string
	Timestamp string
	Domain    string
	LocalPart string
	Host      string

	// text following the "SRS0" marker as it was parsed
	opaque string
}

func (SRS0) isAddress() {}

// Opaque returns the parsed text that followed the "SRS0" marker, starting
// with its first separator and running through the host.
func (a SRS0) Opaque() string {
	return a.opaque
}

func (a SRS0) appendTo(sb *strings.Builder, marker string) {
	sep := byte(a.Separator)
	sb.WriteString(marker)
	sb.WriteByte(sep)
	sb.WriteString(a.Hash)
	sb.WriteByte(sep)
	sb.WriteString(a.Timestamp)
	sb.WriteByte(sep)
	sb.WriteString(a.Domain)
	sb.WriteByte(sep)
	sb.WriteString(a.LocalPart)
	sb.WriteByte('@')
	sb.WriteString(a.Host)
}

func (a SRS0) String() string {
	var sb strings.Builder
	a.appendTo(&sb, "SRS0")
	return sb.String()
}

// SRS1 is a guarded tag wrapping the fields of an inner SRS0 tag:
//
//	SRS1=HHHH=forward-domain==HHHH=TT=orig-domain=orig-local-part@host
//
// Inner.Host holds the host of the SRS1 address itself.
type SRS1 struct {
	Separator     Separator
	Hash          string
	ForwardDomain string
	Inner         SRS0

	// text following the forward domain field as it was parsed
	guarded string
}

func (SRS1) isAddress() {}

// Guarded returns the parsed text that followed the forward domain field,
// starting with the doubled separator and running through the host.
func (a SRS1) Guarded() string {
	return a.guarded
}

func (a SRS1) String() string {
	var sb strings.Builder
	sep := byte(a.Separator)
	sb.WriteString("SRS1")
	sb.WriteByte(sep)
	sb.WriteString(a.Hash)
	sb.WriteByte(sep)
	sb.WriteString(a.ForwardDomain)
	sb.WriteByte(sep)
	inner := a.Inner
	inner.Separator = a.Separator
	inner.appendTo(&sb, "")
	return sb.String()
}

type tagScanner struct {
	s string
	i int
	// bytes that end a domain field
	stops string
}

func (p *tagScanner) consumeMarker(marker string) (Separator, bool) {
	n := len(marker)
	if len(p.s) < n+1 || !strings.EqualFold(p.s[:n], marker) || !isSeparator(p.s[n]) {
		return 0, false
	}
	sep := Separator(p.s[n])
	p.i = n + 1
	// Domains may contain "-" but never "=" or "+", so "-" only ends a
	// domain field in tags that use it as their leading separator.
	if sep == Minus {
		p.stops = "=+-@"
	} else {
		p.stops = "=+@"
	}
	return sep, true
}

func (p *tagScanner) consumeSeparator() bool {
	if p.i >= len(p.s) || !isSeparator(p.s[p.i]) {
		return false
	}
	p.i++
	return true
}

func (p *tagScanner) consumeFixed(n int, accept func(byte) bool) (string, bool) {
	if p.i+n > len(p.s) {
		return "", false
	}
	for j := p.i; j < p.i+n; j++ {
		if !accept(p.s[j]) {
			return "", false
		}
	}
	v := p.s[p.i : p.i+n]
	p.i += n
	return v, true
}

func (p *tagScanner) consumeHash() (string, bool) {
	return p.consumeFixed(hashLength, isBase64)
}

func (p *tagScanner) consumeTimestamp() (string, bool) {
	return p.consumeFixed(2, isAlnum)
}

func (p *tagScanner) consumeDomain() (string, bool) {
	j := p.i
	for j < len(p.s) && strings.IndexByte(p.stops, p.s[j]) < 0 {
		j++
	}
	if j == p.i {
		return "", false
	}
	v := p.s[p.i:j]
	p.i = j
	return v, true
}

// consumeMailbox consumes the remaining "local-part@host".
func (p *tagScanner) consumeMailbox() (localPart, host string, ok bool) {
	rest := p.s[p.i:]
	at := strings.IndexByte(rest, '@')
	if at <= 0 || at == len(rest)-1 {
		return "", "", false
	}
	p.i = len(p.s)
	return rest[:at], rest[at+1:], true
}

// consumeInner consumes "HHHH=TT=domain=local-part@host".
func (p *tagScanner) consumeInner(sep Separator) (SRS0, bool) {
	var a SRS0
	var ok bool
	a.Separator = sep
	if a.Hash, ok = p.consumeHash(); !ok || !p.consumeSeparator() {
		return a, false
	}
	if a.Timestamp, ok = p.consumeTimestamp(); !ok || !p.consumeSeparator() {
		return a, false
	}
	if a.Domain, ok = p.consumeDomain(); !ok || !p.consumeSeparator() {
		return a, false
	}
	if a.LocalPart, a.Host, ok = p.consumeMailbox(); !ok {
		return a, false
	}
	return a, true
}

func parseSRS0(email string) (SRS0, bool) {
	p := &tagScanner{s: email}
	sep, ok := p.consumeMarker("SRS0")
	if !ok {
		return SRS0{}, false
	}
	a, ok := p.consumeInner(sep)
	if !ok {
		return SRS0{}, false
	}
	a.opaque = email[len("SRS0"):]
	return a, true
}

func parseSRS1(email string) (SRS1, bool) {
	var a SRS1
	var ok bool
	p := &tagScanner{s: email}
	if a.Separator, ok = p.consumeMarker("SRS1"); !ok {
		return a, false
	}
	if a.Hash, ok = p.consumeHash(); !ok || !p.consumeSeparator() {
		return a, false
	}
	return a, p.consumeGuarded(&a)
}

// consumeGuarded consumes "forward-domain==HHHH=TT=domain=local-part@host".
// The forward domain ends at a doubled separator. Domains may contain "-"
// and even "--" (as in "xn--" labels), so each doubled separator is tried in
// turn until the remainder parses as an inner tag.
func (p *tagScanner) consumeGuarded(a *SRS1) bool {
	start := p.i
	for j := start; j+1 < len(p.s); j++ {
		c := p.s[j]
		if j > start && isSeparator(c) && isSeparator(p.s[j+1]) {
			q := &tagScanner{s: p.s, i: j + 2, stops: p.stops}
			if inner, ok := q.consumeInner(a.Separator); ok {
				a.ForwardDomain = p.s[start:j]
				a.Inner = inner
				a.guarded = p.s[j:]
				p.i = q.i
				return true
			}
		}
		if c == '=' || c == '+' || c == '@' {
			return false
		}
	}
	return false
}

// parseTag classifies email as SRS0 or SRS1, reporting false for anything
// else.
func parseTag(email string) (Address, bool) {
	if a, ok := parseSRS0(email); ok {
		return a, true
	}
	if a, ok := parseSRS1(email); ok {
		return a, true
	}
	return nil, false
}

// Parse classifies a bare address. Addresses that are not SRS tags have to
// be of the form "local-part@domain".
func Parse(email string) (Address, error) {
	if a, ok := parseTag(email); ok {
		return a, nil
	}
	a, err := address.Split(email)
	if err != nil {
		return nil, &MalformedAddressError{Address: email, Err: err}
	}
	return Plain{LocalPart: a.LocalPart, Domain: a.Domain}, nil
}

// IsSRS0 reports whether email is a single-hop SRS tag.
func IsSRS0(email string) bool {
	_, ok := parseSRS0(email)
	return ok
}

// IsSRS1 reports whether email is a guarded SRS tag.
func IsSRS1(email string) bool {
	_, ok := parseSRS1(email)
	return ok
}

func isBase64(c byte) bool {
	return isAlnum(c) || c == '+' || c == '/'
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}
