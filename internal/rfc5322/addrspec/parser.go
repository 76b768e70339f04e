// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package addrspec tokenizes a bare RFC 5322 addr-spec.

Unlike a full address parser it accepts no display name, no angle brackets
and no CFWS: the whole input has to be exactly "local-part@domain", where
local-part is a dot-atom or a quoted-string and domain is a dot-atom or a
domain-literal.
*/
package addrspec

import (
	"errors"
)

var (
	ErrEmpty             = errors.New("empty addr-spec")
	ErrMissingAt         = errors.New("missing @ in addr-spec")
	ErrNoDomain          = errors.New("no domain in addr-spec")
	ErrEmptyQuotedString = errors.New("empty quoted string in addr-spec")
	ErrTrailingGarbage   = errors.New("unexpected characters after addr-spec")
)

// Parse tokenizes s as a single addr-spec.
func Parse(s string) (*AddrSpec, error) {
	return ParseBytes([]byte(s))
}

// ParseBytes is like Parse but takes a byte slice. The returned tokens
// share storage with b.
func ParseBytes(b []byte) (*AddrSpec, error) {
	p := &addrParser{s: b}
	return p.consumeAddrSpec()
}

type addrParser struct {
	s []byte
	i int
	t []Token
}

func (p *addrParser) last() Token {
	return p.t[len(p.t)-1]
}

func (p *addrParser) consumeAddrSpec() (*AddrSpec, error) {
	if len(p.s) == 0 {
		return nil, ErrEmpty
	}

	// local-part = dot-atom / quoted-string
	ok, err := p.tryConsumingQuotedString()
	if err != nil {
		return nil, err
	}
	if ok {
		if len(p.last().Data) == 2 {
			return nil, ErrEmptyQuotedString
		}
	} else {
		ok, err = p.consumeAtom(true)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New("invalid string")
		}
	}
	localPart := p.last()

	if p.i >= len(p.s) || p.s[p.i] != '@' {
		return nil, ErrMissingAt
	}
	p.i++
	if p.i >= len(p.s) {
		return nil, ErrNoDomain
	}

	// domain = dot-atom / domain-literal
	ok, err = p.tryConsumingDomainLiteral()
	if err != nil {
		return nil, err
	}
	if !ok {
		ok, err = p.consumeAtom(true)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New("invalid string")
		}
	}
	domain := p.last()

	if p.i < len(p.s) {
		return nil, ErrTrailingGarbage
	}
	return &AddrSpec{LocalPart: localPart, Domain: domain}, nil
}

// tryConsumingQuotedString parses the quoted string at the start of p.
func (p *addrParser) tryConsumingQuotedString() (bool, error) {
	if p.i >= len(p.s) || p.s[p.i] != '"' {
		return false, nil
	}

	i := p.i + 1
	for i < len(p.s) {
		c := p.s[i]
		i++
		switch c {
		case '"':
			p.t = append(p.t, Token{Type: QuotedString, Data: p.s[p.i:i]})
			p.i = i
			return true, nil
		case '\\':
			if i >= len(p.s) {
				return false, errors.New("unclosed quoted-string")
			}
			c := p.s[i]
			i++
			if !isVchar(c) && !isWSP(c) {
				return false, errors.New("bad character in quoted-string")
			}
		default:
			if !isQtext(c) && !isWSP(c) {
				return false, errors.New("bad character in quoted-string")
			}
		}
	}
	return false, errors.New("unclosed quoted-string")
}

// consumeAtom parses an RFC 5322 atom at the start of p.
// If dot is true, consumeAtom parses an RFC 5322 dot-atom instead, which
// must not have leading, trailing or doubled dots.
func (p *addrParser) consumeAtom(dot bool) (bool, error) {
	i := p.i
	for ; i < len(p.s); i++ {
		if !isAtext(p.s[i], dot) {
			break
		}
	}
	if i == p.i {
		return false, nil
	}

	atom := p.s[p.i:i]
	p.i = i

	for i, c := range atom {
		if c != '.' {
			continue
		}
		switch {
		case i == 0:
			return true, errors.New("leading dot in atom")
		case i == len(atom)-1:
			return true, errors.New("trailing dot in atom")
		case atom[i+1] == '.':
			return true, errors.New("double dot in atom")
		}
	}

	p.t = append(p.t, Token{Type: Atom, Data: atom})
	return true, nil
}

// tryConsumingDomainLiteral parses an RFC 5322 domain-literal at the start of p.
func (p *addrParser) tryConsumingDomainLiteral() (bool, error) {
	if p.i >= len(p.s) || p.s[p.i] != '[' {
		return false, nil
	}
	i := p.i + 1
	for {
		if i >= len(p.s) {
			return true, errors.New("unclosed domain-literal")
		}
		c := p.s[i]
		i++
		if c == ']' {
			break
		}
		if !isDtext(c) {
			return true, errors.New("bad character in domain-literal")
		}
	}
	p.t = append(p.t, Token{Type: DomainLiteral, Data: p.s[p.i:i]})
	p.i = i
	return true, nil
}
