package srs

import (
	"errors"
	"fmt"
)

// ConfigurationError is returned when the codec is set up with a missing
// secret, sender domain or an unusable separator.
type ConfigurationError struct {
	msg string
}

func (e *ConfigurationError) Error() string {
	return "srs: " + e.msg
}

var (
	ErrSecretRequired        = &ConfigurationError{"secret required"}
	ErrSenderDomainRequired  = &ConfigurationError{"sender domain required"}
	ErrInadmissibleSeparator = &ConfigurationError{`inadmissible separator, must be "=", "+" or "-"`}
)

// MalformedAddressError is returned by Forward when the address is neither an
// SRS tag nor a "local-part@domain" pair, or when its domain cannot be
// carried by a tag using the codec's separator.
type MalformedAddressError struct {
	Address string
	Err     error
}

func (e *MalformedAddressError) Error() string {
	return fmt.Sprintf("srs: malformed address %q: %v", e.Address, e.Err)
}

func (e *MalformedAddressError) Unwrap() error {
	return e.Err
}

var (
	ErrHashMismatch     = errors.New("srs: hash mismatch")
	ErrTimestampInvalid = errors.New("srs: bad base32 character in timestamp")
	ErrTimestampExpired = errors.New("srs: timestamp out of date")
	ErrAmbiguousDomain  = errors.New("srs: domain contains the separator")
)
