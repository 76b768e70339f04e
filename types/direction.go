package types

import "fmt"

type Direction string

const (
	Forward Direction = "forward"
	Reverse Direction = "reverse"
)

func (d Direction) Valid() bool {
	return d == Forward || d == Reverse
}

func (d *Direction) UnmarshalText(b []byte) error {
	v := Direction(b)
	if !v.Valid() {
		return fmt.Errorf("unknown direction %q", b)
	}
	*d = v
	return nil
}

// Apply runs addr through rw in direction d.
func (d Direction) Apply(rw Rewriter, addr string) (string, error) {
	switch d {
	case Forward:
		return rw.Forward(addr)
	case Reverse:
		return rw.Reverse(addr)
	default:
		return "", fmt.Errorf("unknown direction %q", string(d))
	}
}
