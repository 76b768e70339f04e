/*
Package srs implements the Sender Rewriting Scheme.

A forwarding relay rewrites the envelope sender of a message it forwards
into an address under its own domain:

	user@example.com -> SRS0=HHHH=TT=example.com=user@relay.example

where HHHH is a keyed hash and TT a coarse day stamp. Addresses that already
carry an SRS0 tag are wrapped into the guarded SRS1 form instead, so that the
bounce target survives more than one hop:

	SRS1=HHHH=relay.example==HHHH=TT=example.com=user@second.example

Reverse undoes either form. Neither direction performs I/O and all functions
are safe for concurrent use.
*/
package srs

import (
	"crypto/sha1"
	"hash"
	"strings"
	"time"

	"github.com/moriyoshi/badass-srs/address"
)

// Codec is an SRS engine bound to a secret. A Codec is immutable once
// created.
type Codec struct {
	secret    []byte
	separator Separator
	hash      func() hash.Hash
	now       func() time.Time
}

type OptionFunc func(*Codec) error

// WithSeparator sets the separator used in produced tags.
func WithSeparator(sep Separator) OptionFunc {
	return func(c *Codec) error {
		if sep == 0 {
			sep = DefaultSeparator
		}
		if !sep.Valid() {
			return ErrInadmissibleSeparator
		}
		c.separator = sep
		return nil
	}
}

// WithHash replaces HMAC-SHA1 with another hash, e.g. sha256.New. Both ends
// of a deployment have to agree on it.
func WithHash(h func() hash.Hash) OptionFunc {
	return func(c *Codec) error {
		if h != nil {
			c.hash = h
		}
		return nil
	}
}

// WithNowFunc overrides the clock used for timestamps.
func WithNowFunc(now func() time.Time) OptionFunc {
	return func(c *Codec) error {
		if now != nil {
			c.now = now
		}
		return nil
	}
}

func NewCodec(secret string, options ...OptionFunc) (*Codec, error) {
	if secret == "" {
		return nil, ErrSecretRequired
	}
	c := &Codec{
		secret:    []byte(secret),
		separator: DefaultSeparator,
		hash:      sha1.New,
		now:       time.Now,
	}
	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Codec) Separator() Separator {
	return c.separator
}

// HHH computes the four-character hash of parts under the codec's secret.
func (c *Codec) HHH(parts ...string) string {
	return createHHH(c.hash, c.secret, parts...)
}

// Forward rewrites address so that bounces go to senderDomain. A display
// name, if any, is carried over.
func (c *Codec) Forward(addr, senderDomain string) (string, error) {
	if senderDomain == "" {
		return "", ErrSenderDomainRequired
	}
	title := address.ExtractTitle(addr, false)
	email := address.ExtractEmail(addr)
	parsed, err := Parse(email)
	if err != nil {
		return "", err
	}
	var rewritten Address
	switch a := parsed.(type) {
	case SRS0:
		rewritten = SRS1{
			Separator:     c.separator,
			Hash:          c.HHH(senderDomain, a.opaque),
			ForwardDomain: a.Host,
			Inner: SRS0{
				Hash:      a.Hash,
				Timestamp: a.Timestamp,
				Domain:    a.Domain,
				LocalPart: a.LocalPart,
				Host:      senderDomain,
			},
		}
	case SRS1:
		inner := a.Inner
		inner.Host = senderDomain
		rewritten = SRS1{
			Separator:     c.separator,
			Hash:          c.HHH(senderDomain, a.guarded),
			ForwardDomain: a.ForwardDomain,
			Inner:         inner,
		}
	case Plain:
		rewritten = SRS0{
			Separator: c.separator,
			Hash:      c.HHH(senderDomain, a.Domain),
			Timestamp: CreateTT(c.now()),
			Domain:    a.Domain,
			LocalPart: a.LocalPart,
			Host:      senderDomain,
		}
	}
	if err := c.checkDomainField(email, rewritten); err != nil {
		return "", err
	}
	return address.CombineEmail(title, rewritten.String()), nil
}

// checkDomainField rejects tags whose original domain contains the
// separator. A "-" tag for "bank-of-america.com" would read back as domain
// "bank".
func (c *Codec) checkDomainField(email string, rewritten Address) error {
	var domain string
	switch a := rewritten.(type) {
	case SRS0:
		domain = a.Domain
	case SRS1:
		domain = a.Inner.Domain
	}
	if strings.IndexByte(domain, byte(c.separator)) >= 0 {
		return &MalformedAddressError{Address: email, Err: ErrAmbiguousDomain}
	}
	return nil
}

// Reverse is the same as the package-level Reverse.
func (c *Codec) Reverse(addr string, baseAddress bool) string {
	return Reverse(addr, baseAddress)
}

// VerifySRS0 checks the hash of a tag this codec produced for senderDomain
// and, if maxAge is positive, that its timestamp is at most maxAge days old.
func (c *Codec) VerifySRS0(tag SRS0, senderDomain string, maxAge int) error {
	if !strings.EqualFold(tag.Hash, c.HHH(senderDomain, tag.Domain)) {
		return ErrHashMismatch
	}
	if maxAge > 0 {
		age, err := TTAge(tag.Timestamp, c.now())
		if err != nil {
			return err
		}
		if age > maxAge {
			return ErrTimestampExpired
		}
	}
	return nil
}

// Forward rewrites address for senderDomain using HMAC-SHA1 over secret. A
// zero separator selects DefaultSeparator.
func Forward(addr, senderDomain, secret string, separator Separator) (string, error) {
	c, err := NewCodec(secret, WithSeparator(separator))
	if err != nil {
		return "", err
	}
	return c.Forward(addr, senderDomain)
}

// Reverse decodes an SRS address. An SRS0 tag yields the original address.
// An SRS1 tag yields the SRS0 tag it wrapped, or the original address if
// baseAddress is true. Anything else is returned unchanged. Hashes and
// timestamps are not checked.
func Reverse(addr string, baseAddress bool) string {
	title := address.ExtractTitle(addr, false)
	email := address.ExtractEmail(addr)
	if parsed, ok := parseTag(email); ok {
		switch a := parsed.(type) {
		case SRS0:
			email = a.LocalPart + "@" + a.Domain
		case SRS1:
			if baseAddress {
				email = a.Inner.LocalPart + "@" + a.Inner.Domain
			} else {
				// The inner tag takes the separator that follows the SRS1
				// marker, not the first of "=", "+", "-" found anywhere in
				// the address: base64 hashes may contain "+".
				inner := a.Inner
				inner.Separator = a.Separator
				inner.Host = a.ForwardDomain
				email = inner.String()
			}
		}
	}
	return address.CombineEmail(title, email)
}
