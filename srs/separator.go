package srs

// Separator delimits the fields of an SRS tag.
type Separator byte

const (
	Equals Separator = '='
	Plus   Separator = '+'
	Minus  Separator = '-'

	DefaultSeparator = Equals
)

func (s Separator) Valid() bool {
	return s == Equals || s == Plus || s == Minus
}

func (s Separator) String() string {
	return string(rune(s))
}

// ParseSeparator converts a one-character string to a Separator. The empty
// string yields DefaultSeparator.
func ParseSeparator(s string) (Separator, error) {
	if s == "" {
		return DefaultSeparator, nil
	}
	if len(s) != 1 || !Separator(s[0]).Valid() {
		return 0, ErrInadmissibleSeparator
	}
	return Separator(s[0]), nil
}

func isSeparator(c byte) bool {
	return Separator(c).Valid()
}
