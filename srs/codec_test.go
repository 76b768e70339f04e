package srs

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/moriyoshi/badass-srs/address"
)

func newTestCodec(t *testing.T, options ...OptionFunc) *Codec {
	t.Helper()
	options = append([]OptionFunc{WithNowFunc(func() time.Time { return newYear2020 })}, options...)
	c, err := NewCodec("secret123", options...)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	return c
}

func TestForwardPlain(t *testing.T) {
	got, err := Forward("bank@america.com", "relay.com", "secret123", Equals)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	assert.Regexp(t, regexp.MustCompile(`^SRS0=[A-Za-z0-9+/]{4}=[0-9A-V]{2}=america\.com=bank@relay\.com$`), got)
	assert.True(t, IsSRS0(got))
	assert.Equal(t, "bank@america.com", Reverse(got, false))

	c := newTestCodec(t)
	got, err = c.Forward("bank@america.com", "relay.com")
	if assert.NoError(t, err) {
		hhh := CreateHHH("secret123", "relay.com", "america.com")
		assert.Equal(t, "SRS0="+hhh+"=QM=america.com=bank@relay.com", got)
	}
}

func TestForwardGuarded(t *testing.T) {
	c := newTestCodec(t)
	first, err := c.Forward("bank@america.com", "relay.com")
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	h1 := CreateHHH("secret123", "relay.com", "america.com")

	second, err := c.Forward(first, "second.com")
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	h2 := CreateHHH("secret123", "second.com", first[4:])
	assert.Equal(t, "SRS1="+h2+"=relay.com=="+h1+"=QM=america.com=bank@second.com", second)
	assert.True(t, IsSRS1(second))
	assert.False(t, IsSRS0(second))
	assert.Equal(t, first, Reverse(second, false))
	assert.Equal(t, "bank@america.com", Reverse(second, true))

	third, err := c.Forward(second, "third.com")
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	h3 := CreateHHH("secret123", "third.com", "=="+h1+"=QM=america.com=bank@second.com")
	assert.Equal(t, "SRS1="+h3+"=relay.com=="+h1+"=QM=america.com=bank@third.com", third)
	assert.True(t, IsSRS1(third))
	assert.Equal(t, first, Reverse(third, false))
	assert.Equal(t, "bank@america.com", Reverse(third, true))
}

func TestForwardSeparators(t *testing.T) {
	for _, sep := range []Separator{Equals, Plus, Minus} {
		t.Run(sep.String(), func(t *testing.T) {
			c := newTestCodec(t, WithSeparator(sep))
			assert.Equal(t, sep, c.Separator())
			first, err := c.Forward("bank@america.com", "relay.com")
			if !assert.NoError(t, err) {
				t.FailNow()
			}
			hhh := CreateHHH("secret123", "relay.com", "america.com")
			s := sep.String()
			assert.Equal(t, "SRS0"+s+hhh+s+"QM"+s+"america.com"+s+"bank@relay.com", first)
			assert.True(t, IsSRS0(first))
			assert.Equal(t, "bank@america.com", Reverse(first, false))

			second, err := c.Forward(first, "second.com")
			if !assert.NoError(t, err) {
				t.FailNow()
			}
			assert.True(t, IsSRS1(second))
			assert.Equal(t, first, Reverse(second, false))
			assert.Equal(t, "bank@america.com", Reverse(second, true))
		})
	}
}

func TestForwardMixedSeparators(t *testing.T) {
	c := newTestCodec(t, WithSeparator(Plus))
	got, err := c.Forward("SRS0=abcd=2W=america.com=bank@relay.com", "second.com")
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	hhh := CreateHHH("secret123", "second.com", "=abcd=2W=america.com=bank@relay.com")
	assert.Equal(t, "SRS1+"+hhh+"+relay.com++abcd+2W+america.com+bank@second.com", got)
	assert.Equal(t, "SRS0+abcd+2W+america.com+bank@relay.com", Reverse(got, false))
}

func TestForwardKeepsTitle(t *testing.T) {
	c := newTestCodec(t)
	hhh := CreateHHH("secret123", "relay.com", "america.com")
	for _, input := range []string{
		`"Bank of America" <bank@america.com>`,
		"Bank of America <bank@america.com>",
		"Bank of America bank@america.com",
	} {
		got, err := c.Forward(input, "relay.com")
		if !assert.NoError(t, err, input) {
			continue
		}
		assert.Equal(t, `"Bank of America" <SRS0=`+hhh+`=QM=america.com=bank@relay.com>`, got, input)
		assert.Equal(t, `"Bank of America" <bank@america.com>`, Reverse(got, false), input)
	}
}

func TestForwardErrors(t *testing.T) {
	_, err := Forward("a@b.com", "relay.com", "", Equals)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, ErrSecretRequired)

	_, err = Forward("a@b.com", "relay.com", "", Separator('*'))
	assert.ErrorIs(t, err, ErrSecretRequired)

	_, err = Forward("a@b.com", "relay.com", "secret123", Separator('*'))
	assert.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, ErrInadmissibleSeparator)

	_, err = Forward("a@b.com", "", "secret123", Equals)
	assert.ErrorIs(t, err, ErrSenderDomainRequired)

	_, err = Forward("not-an-email", "relay.com", "secret123", Equals)
	var malformed *MalformedAddressError
	assert.ErrorAs(t, err, &malformed)
	assert.ErrorIs(t, err, address.ErrNoAtSign)

	got, err := Forward("a@b.com", "relay.com", "secret123", 0)
	if assert.NoError(t, err) {
		assert.True(t, IsSRS0(got))
		assert.Equal(t, byte('='), got[4])
	}
}

func TestReversePassthrough(t *testing.T) {
	assert.Equal(t, "bank@america.com", Reverse("bank@america.com", false))
	assert.Equal(t, "bank@america.com", Reverse("bank@america.com", true))
	assert.Equal(t, `"Bank" <bank@america.com>`, Reverse("Bank <bank@america.com>", false))
	assert.Equal(t, "not-an-email", Reverse("not-an-email", false))
	assert.Equal(t, "", Reverse("", false))
}

func TestReverse(t *testing.T) {
	cases := [...]struct {
		input       string
		baseAddress bool
		expected    string
	}{
		0: {"SRS0=abcd=2W=america.com=bank@relay.com", false, "bank@america.com"},
		1: {"SRS0=abcd=2W=america.com=bank@relay.com", true, "bank@america.com"},
		2: {"SRS1=abcd=fwd.com==efgh=2W=america.com=bank@relay.com", false, "SRS0=efgh=2W=america.com=bank@fwd.com"},
		3: {"SRS1=abcd=fwd.com==efgh=2W=america.com=bank@relay.com", true, "bank@america.com"},
		4: {"SRS1-abcd-fwd.com--efgh-2W-america.com-bank@relay.com", false, "SRS0-efgh-2W-america.com-bank@fwd.com"},
		5: {`"Bank" <SRS0=abcd=2W=america.com=bank@relay.com>`, false, `"Bank" <bank@america.com>`},
		6: {`"Bank" <SRS1=abcd=fwd.com==efgh=2W=america.com=bank@relay.com>`, false, `"Bank" <SRS0=efgh=2W=america.com=bank@fwd.com>`},
	}
	for i, c := range cases {
		assert.Equal(t, c.expected, Reverse(c.input, c.baseAddress), "#%d", i)
	}
}

func TestVerifySRS0(t *testing.T) {
	c := newTestCodec(t)
	fwd, err := c.Forward("bank@america.com", "relay.com")
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	a, err := Parse(fwd)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	tag := a.(SRS0)
	assert.NoError(t, c.VerifySRS0(tag, "relay.com", 21))
	assert.NoError(t, c.VerifySRS0(tag, "relay.com", 0))
	assert.ErrorIs(t, c.VerifySRS0(tag, "other.com", 21), ErrHashMismatch)

	folded := tag
	folded.Hash = strings.ToLower(tag.Hash)
	assert.NoError(t, c.VerifySRS0(folded, "relay.com", 21))

	forged := tag
	forged.Hash = "zzzz"
	assert.ErrorIs(t, c.VerifySRS0(forged, "relay.com", 21), ErrHashMismatch)

	later := newTestCodec(t, WithNowFunc(func() time.Time { return newYear2020.AddDate(0, 0, 30) }))
	assert.ErrorIs(t, later.VerifySRS0(tag, "relay.com", 21), ErrTimestampExpired)
	assert.NoError(t, later.VerifySRS0(tag, "relay.com", 0))

	badTT := tag
	badTT.Timestamp = "ZZ"
	assert.ErrorIs(t, c.VerifySRS0(badTT, "relay.com", 21), ErrTimestampInvalid)
}

func TestCodecConcurrentUse(t *testing.T) {
	c := newTestCodec(t)
	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fwd, err := c.Forward(fmt.Sprintf("user%d@america.com", i), "relay.com")
			if err != nil {
				return
			}
			results[i] = Reverse(fwd, false)
		}(i)
	}
	wg.Wait()
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("user%d@america.com", i), r)
	}
}

func TestNewCodec(t *testing.T) {
	_, err := NewCodec("")
	assert.ErrorIs(t, err, ErrSecretRequired)
	_, err = NewCodec("secret", WithSeparator('/'))
	assert.ErrorIs(t, err, ErrInadmissibleSeparator)
	c, err := NewCodec("secret", WithSeparator(0), WithHash(nil), WithNowFunc(nil))
	if assert.NoError(t, err) {
		assert.Equal(t, DefaultSeparator, c.Separator())
	}
}

func TestParseSeparator(t *testing.T) {
	for s, expected := range map[string]Separator{"": Equals, "=": Equals, "+": Plus, "-": Minus} {
		sep, err := ParseSeparator(s)
		if assert.NoError(t, err, s) {
			assert.Equal(t, expected, sep, s)
		}
	}
	for _, s := range []string{"*", "==", "/"} {
		_, err := ParseSeparator(s)
		assert.ErrorIs(t, err, ErrInadmissibleSeparator, s)
	}
}

func TestForwardMinusHyphenatedHops(t *testing.T) {
	c := newTestCodec(t, WithSeparator(Minus))
	first, err := c.Forward("bank@america.com", "my-relay.com")
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	h1 := CreateHHH("secret123", "my-relay.com", "america.com")
	assert.Equal(t, "SRS0-"+h1+"-QM-america.com-bank@my-relay.com", first)

	second, err := c.Forward(first, "second.com")
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	h2 := CreateHHH("secret123", "second.com", first[4:])
	assert.Equal(t, "SRS1-"+h2+"-my-relay.com--"+h1+"-QM-america.com-bank@second.com", second)
	assert.True(t, IsSRS1(second))
	assert.False(t, IsSRS0(second))
	assert.Equal(t, first, Reverse(second, false))
	assert.Equal(t, "bank@america.com", Reverse(second, true))

	third, err := c.Forward(second, "third-hop.com")
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	assert.True(t, IsSRS1(third))
	assert.Equal(t, first, Reverse(third, false))
	assert.Equal(t, "bank@america.com", Reverse(third, true))
}

func TestForwardPunycodeHop(t *testing.T) {
	for _, sep := range []Separator{Equals, Minus} {
		t.Run(sep.String(), func(t *testing.T) {
			c := newTestCodec(t, WithSeparator(sep))
			first, err := c.Forward("bank@america.com", "xn--bcher-kva.example")
			if !assert.NoError(t, err) {
				t.FailNow()
			}
			second, err := c.Forward(first, "second.com")
			if !assert.NoError(t, err) {
				t.FailNow()
			}
			a, err := Parse(second)
			if !assert.NoError(t, err) {
				t.FailNow()
			}
			if assert.IsType(t, SRS1{}, a) {
				assert.Equal(t, "xn--bcher-kva.example", a.(SRS1).ForwardDomain)
			}
			assert.Equal(t, first, Reverse(second, false))
		})
	}
}

func TestForwardMinusHyphenatedDomain(t *testing.T) {
	c := newTestCodec(t, WithSeparator(Minus))
	for _, input := range []string{
		"bank@bank-of-america.com",
		"SRS0=abcd=2W=bank-of-america.com=bank@relay.com",
		"SRS1=abcd=relay.com==efgh=2W=bank-of-america.com=bank@second.com",
	} {
		_, err := c.Forward(input, "relay.example")
		var malformed *MalformedAddressError
		if assert.ErrorAs(t, err, &malformed, input) {
			assert.Equal(t, input, malformed.Address)
		}
		assert.ErrorIs(t, err, ErrAmbiguousDomain, input)
	}

	eq := newTestCodec(t)
	got, err := eq.Forward("bank@bank-of-america.com", "relay.example")
	if assert.NoError(t, err) {
		assert.Equal(t, "bank@bank-of-america.com", Reverse(got, false))
	}
}

func TestReverseSRS1KeepsMarkerSeparator(t *testing.T) {
	// "+" inside the outer hash does not select the separator
	assert.Equal(t,
		"SRS0-efgh-2W-america.com-bank@fwd.com",
		Reverse("SRS1-ab+d-fwd.com--efgh-2W-america.com-bank@relay.com", false),
	)
}
