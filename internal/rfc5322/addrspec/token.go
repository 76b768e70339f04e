// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package addrspec

type TokenType int

const (
	Atom TokenType = iota
	QuotedString
	DomainLiteral
)

func (t TokenType) String() string {
	switch t {
	case Atom:
		return "atom"
	case QuotedString:
		return "quoted-string"
	case DomainLiteral:
		return "domain-literal"
	default:
		return "unknown"
	}
}

type Token struct {
	Type TokenType
	Data []byte
}

// unescapeQuotedString unescapes a quoted string.
func unescapeQuotedString(b []byte) []byte {
	var r []byte
	s := 0
	for i := 0; i < len(b); i++ {
		if b[i] == '\\' {
			if r == nil {
				r = make([]byte, 0, len(b))
			}
			r = append(r, b[s:i]...)
			i++
			if i >= len(b) {
				r = append(r, '\\')
				s = len(b)
				break
			}
			r = append(r, b[i])
			s = i + 1
		}
	}
	if r == nil {
		return b
	}
	return append(r, b[s:]...)
}

// ValueBytes returns the token content with quoting and brackets removed.
func (t Token) ValueBytes() []byte {
	switch t.Type {
	case QuotedString:
		return unescapeQuotedString(t.Data[1 : len(t.Data)-1])
	case DomainLiteral:
		return t.Data[1 : len(t.Data)-1]
	default:
		return t.Data
	}
}

// AddrSpec is a bare "local-part@domain" as defined in RFC 5322 3.4.1.
type AddrSpec struct {
	LocalPart Token
	Domain    Token
}

func (a *AddrSpec) String() string {
	b := make([]byte, 0, len(a.LocalPart.Data)+len(a.Domain.Data)+1)
	b = append(b, a.LocalPart.Data...)
	b = append(b, '@')
	b = append(b, a.Domain.Data...)
	return string(b)
}
