// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package addrspec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	t.Parallel()
	mustErrTestCases := [...]struct {
		text        string
		wantErrText string
	}{
		0:  {"", "empty addr-spec"},
		1:  {"john.doe", "missing @ in addr-spec"},
		2:  {"john.doe@", "no domain in addr-spec"},
		3:  {`""@example.com`, "empty quoted string in addr-spec"},
		4:  {"\"\x00\"@example.net", "bad character in quoted-string"},
		5:  {`"unclosed@example.net`, "unclosed quoted-string"},
		6:  {".john@example.com", "leading dot in atom"},
		7:  {"john.@example.com", "trailing dot in atom"},
		8:  {"john..doe@example.com", "double dot in atom"},
		9:  {"jdoe@[[192.168.0.1]", "bad character in domain-literal"},
		10: {"jdoe@[192.168.0.1", "unclosed domain-literal"},
		11: {"John Doe <jdoe@example.com>", "missing @ in addr-spec"},
		12: {"jdoe@example.com>", "unexpected characters after addr-spec"},
		13: {"@example.com", "invalid string"},
		14: {"jdoe@example..com", "double dot in atom"},
	}
	for i, tc := range mustErrTestCases {
		_, err := Parse(tc.text)
		if err == nil || !strings.Contains(err.Error(), tc.wantErrText) {
			t.Errorf(`Parse(%q) #%d want %q, got %v`, tc.text, i, tc.wantErrText, err)
		}
	}
}

func TestParse(t *testing.T) {
	t.Parallel()
	cases := [...]struct {
		input     string
		localPart Token
		domain    Token
	}{
		0: {
			input:     "jdoe@machine.example",
			localPart: Token{Type: Atom, Data: []byte("jdoe")},
			domain:    Token{Type: Atom, Data: []byte("machine.example")},
		},
		1: {
			input:     "john.q.public@example.com",
			localPart: Token{Type: Atom, Data: []byte("john.q.public")},
			domain:    Token{Type: Atom, Data: []byte("example.com")},
		},
		2: {
			input:     `"john doe"@example.com`,
			localPart: Token{Type: QuotedString, Data: []byte(`"john doe"`)},
			domain:    Token{Type: Atom, Data: []byte("example.com")},
		},
		3: {
			input:     "jdoe@[192.168.0.1]",
			localPart: Token{Type: Atom, Data: []byte("jdoe")},
			domain:    Token{Type: DomainLiteral, Data: []byte("[192.168.0.1]")},
		},
		4: {
			input:     "SRS0=HHHH=TT=example.com=user@relay.example",
			localPart: Token{Type: Atom, Data: []byte("SRS0=HHHH=TT=example.com=user")},
			domain:    Token{Type: Atom, Data: []byte("relay.example")},
		},
	}
	for i, c := range cases {
		a, err := Parse(c.input)
		if !assert.NoError(t, err, "#%d", i) {
			continue
		}
		assert.Equal(t, c.localPart, a.LocalPart, "#%d", i)
		assert.Equal(t, c.domain, a.Domain, "#%d", i)
		assert.Equal(t, c.input, a.String(), "#%d", i)
	}
}

func TestValueBytes(t *testing.T) {
	assert.Equal(t, []byte(`a"b`), Token{Type: QuotedString, Data: []byte(`"a\"b"`)}.ValueBytes())
	assert.Equal(t, []byte(`a\`), Token{Type: QuotedString, Data: []byte(`"a\"`)}.ValueBytes())
	assert.Equal(t, []byte("10.0.0.1"), Token{Type: DomainLiteral, Data: []byte("[10.0.0.1]")}.ValueBytes())
	assert.Equal(t, []byte("example.com"), Token{Type: Atom, Data: []byte("example.com")}.ValueBytes())
}
