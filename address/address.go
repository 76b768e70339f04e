// Package address splits display-form mail addresses such as
// `"Barry Gibbs" <bg@example.com>` into a title and a bare address, and puts
// them back together.
package address

import (
	"errors"
	"strings"
)

var (
	ErrNoAtSign       = errors.New("address: no at sign")
	ErrEmptyLocalPart = errors.New("address: empty local-part")
	ErrEmptyDomain    = errors.New("address: empty domain")
)

// EmailAddress is an address broken into its components. Title never
// contains a double quote.
type EmailAddress struct {
	Title     string
	LocalPart string
	Domain    string
}

// Email returns the bare "local-part@domain" form.
func (a EmailAddress) Email() string {
	return a.LocalPart + "@" + a.Domain
}

func (a EmailAddress) String() string {
	return CombineEmail(a.Title, a.Email())
}

// Split splits a bare address at its first at sign.
func Split(email string) (EmailAddress, error) {
	i := strings.IndexByte(email, '@')
	switch {
	case i < 0:
		return EmailAddress{}, ErrNoAtSign
	case i == 0:
		return EmailAddress{}, ErrEmptyLocalPart
	case i == len(email)-1:
		return EmailAddress{}, ErrEmptyDomain
	}
	return EmailAddress{LocalPart: email[:i], Domain: email[i+1:]}, nil
}

// Parse extracts the title and the address from a display-form address and
// splits the latter.
func Parse(address string) (EmailAddress, error) {
	a, err := Split(ExtractEmail(address))
	if err != nil {
		return a, err
	}
	a.Title = stripQuotes(ExtractTitle(address, false))
	return a, nil
}

const space = ' '

// scanQuoted matches `"name" <email>` with optional whitespace between the
// closing quote and the angle bracket.
func scanQuoted(s string) (name, email string, ok bool) {
	if len(s) == 0 || s[0] != '"' {
		return
	}
	j := strings.IndexByte(s[1:], '"')
	if j < 0 {
		return
	}
	name = s[1 : j+1]
	rest := strings.TrimLeft(s[j+2:], " \t\r\n\f\v")
	if len(rest) == 0 || rest[0] != '<' {
		return "", "", false
	}
	k := strings.IndexByte(rest, '>')
	if k < 0 {
		return "", "", false
	}
	return name, rest[1:k], true
}

// scanNamed matches `name <email>` where name is everything before the
// first angle bracket and is not empty.
func scanNamed(s string) (name, email string, ok bool) {
	i := strings.IndexByte(s, '<')
	if i <= 0 {
		return
	}
	k := strings.IndexByte(s[i:], '>')
	if k < 0 {
		return
	}
	return s[:i], s[i+1 : i+k], true
}

// scanAngle matches a bare `<email>`.
func scanAngle(s string) (email string, ok bool) {
	if len(s) == 0 || s[0] != '<' {
		return
	}
	k := strings.IndexByte(s, '>')
	if k < 0 {
		return
	}
	return s[1:k], true
}

// ExtractTitle returns the display name part of address, or an empty string
// if there is none. If keepQuotes is true, a quoted display name is returned
// with its quotes.
func ExtractTitle(address string, keepQuotes bool) string {
	if name, _, ok := scanQuoted(address); ok {
		if keepQuotes {
			return `"` + name + `"`
		}
		return strings.TrimSpace(name)
	}
	if name, _, ok := scanNamed(address); ok {
		return strings.TrimSpace(name)
	}
	if i := strings.LastIndexByte(address, space); i >= 0 {
		return strings.TrimSpace(address[:i])
	}
	return ""
}

// ExtractEmail returns the address part of address, ignoring any display
// name. Input without brackets or spaces is returned as is.
func ExtractEmail(address string) string {
	if _, email, ok := scanQuoted(address); ok {
		return email
	}
	if _, email, ok := scanNamed(address); ok {
		return email
	}
	if email, ok := scanAngle(address); ok {
		return email
	}
	if i := strings.LastIndexByte(address, space); i >= 0 {
		return strings.TrimSpace(address[i+1:])
	}
	return address
}

func stripQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}

// CombineEmail renders `"title" <email>`, or just email if title is empty.
// Double quotes inside title are dropped rather than escaped.
func CombineEmail(title, email string) string {
	title = stripQuotes(title)
	if title == "" {
		return email
	}
	var sb strings.Builder
	sb.Grow(len(title) + len(email) + 5)
	sb.WriteByte('"')
	sb.WriteString(title)
	sb.WriteString(`" <`)
	sb.WriteString(email)
	sb.WriteByte('>')
	return sb.String()
}
