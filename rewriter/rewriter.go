package rewriter

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/moriyoshi/badass-srs/address"
	"github.com/moriyoshi/badass-srs/internal/logging"
	"github.com/moriyoshi/badass-srs/srs"
	"github.com/moriyoshi/badass-srs/types"
)

var (
	ErrNotSRS          = errors.New("not an SRS address")
	ErrDomainRequired  = errors.New("domain is required")
	ErrSecretsRequired = errors.New("at least one secret is required")
)

// Rewriter applies SRS on behalf of a single forwarding domain. The first
// codec forwards; every codec is tried when verifying, so that retired
// secrets keep working for bounces already in flight.
type Rewriter struct {
	domain  string
	codecs  []*srs.Codec
	maxAge  int
	verify  bool
	exclude ExcludeRules
	logger  *slog.Logger
	now     func() time.Time
}

var _ types.Rewriter = (*Rewriter)(nil)

type RewriterOptionFunc func(*Rewriter) (*Rewriter, error)

func WithLogger(logger *slog.Logger) RewriterOptionFunc {
	return func(r *Rewriter) (*Rewriter, error) {
		r.logger = logging.OrDiscard(logger)
		return r, nil
	}
}

func WithNowFunc(now func() time.Time) RewriterOptionFunc {
	return func(r *Rewriter) (*Rewriter, error) {
		if now == nil {
			now = time.Now
		}
		r.now = now
		return r, nil
	}
}

func NewRewriterFromYAML(b []byte, options ...RewriterOptionFunc) (*Rewriter, error) {
	c, err := LoadConfig(b)
	if err != nil {
		return nil, err
	}
	return NewRewriter(c, options...)
}

func NewRewriterFromYAMLFile(path string, options ...RewriterOptionFunc) (*Rewriter, error) {
	c, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	return NewRewriter(c, options...)
}

func NewRewriter(c Config, options ...RewriterOptionFunc) (*Rewriter, error) {
	r := &Rewriter{
		maxAge:  c.MaxAge,
		verify:  c.Verify,
		exclude: c.Exclude,
		logger:  logging.Discard(),
		now:     time.Now,
	}
	for _, option := range options {
		var err error
		r, err = option(r)
		if err != nil {
			return nil, err
		}
	}

	if c.Domain == "" {
		return nil, ErrDomainRequired
	}
	domain, err := address.NormalizeDomain(c.Domain)
	if err != nil {
		return nil, fmt.Errorf("invalid domain %q: %w", c.Domain, err)
	}
	r.domain = domain

	if len(c.Secrets) == 0 {
		return nil, ErrSecretsRequired
	}
	sep, err := srs.ParseSeparator(c.Separator)
	if err != nil {
		return nil, err
	}
	h, err := hashFunc(c.Hash)
	if err != nil {
		return nil, err
	}
	r.codecs = make([]*srs.Codec, 0, len(c.Secrets))
	for i, secret := range c.Secrets {
		codec, err := srs.NewCodec(
			secret,
			srs.WithSeparator(sep),
			srs.WithHash(h),
			srs.WithNowFunc(r.now),
		)
		if err != nil {
			return nil, fmt.Errorf("secret #%d: %w", i, err)
		}
		r.codecs = append(r.codecs, codec)
	}

	r.logger.Info(
		"rewriter created",
		slog.String("domain", r.domain),
		slog.String("separator", sep.String()),
		slog.Int("secrets", len(r.codecs)),
		slog.Int("max_age", r.maxAge),
		slog.Bool("verify", r.verify),
	)
	for i, rule := range r.exclude {
		r.logger.Info("exclude", slog.Int("precedence", i), slog.String("match", rule.String()))
	}
	return r, nil
}

func (r *Rewriter) Domain() string {
	return r.domain
}

// Forward rewrites addr so that it can be used as the envelope sender of a
// message relayed by the rewriter's domain. The null sender, local
// addresses and excluded addresses come back unchanged.
func (r *Rewriter) Forward(addr string) (string, error) {
	logger := r.logger.With(slog.String("address", addr))
	email := address.ExtractEmail(addr)
	if email == "" {
		logger.Debug("null sender")
		return addr, nil
	}
	if a, err := address.Split(email); err == nil {
		if domain, err := address.NormalizeDomain(a.Domain); err == nil && domain == r.domain {
			logger.Debug("local domain")
			return addr, nil
		}
	}
	if i := r.exclude.Match(email); i >= 0 {
		logger.Debug("excluded", slog.Int("precedence", i))
		return addr, nil
	}
	rewritten, err := r.codecs[0].Forward(addr, r.domain)
	if err != nil {
		logger.Warn("failed to rewrite", slog.Any("error", err))
		return "", fmt.Errorf("failed to rewrite %q: %w", addr, err)
	}
	logger.Info("forward", slog.String("rewritten", rewritten))
	return rewritten, nil
}

// Reverse recovers the address that a bounce to addr must be delivered to.
// An SRS1 address yields the SRS0 address of the previous hop.
func (r *Rewriter) Reverse(addr string) (string, error) {
	return r.reverse(addr, false)
}

// ReverseBase is like Reverse but yields the original sender for SRS1
// addresses too, skipping the previous hop.
func (r *Rewriter) ReverseBase(addr string) (string, error) {
	return r.reverse(addr, true)
}

func (r *Rewriter) reverse(addr string, baseAddress bool) (string, error) {
	logger := r.logger.With(slog.String("address", addr))
	email := address.ExtractEmail(addr)
	a, err := srs.Parse(email)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotSRS, err)
	}
	switch tag := a.(type) {
	case srs.SRS0:
		if r.verify {
			err := r.verifySRS0(logger, tag)
			if err != nil {
				logger.Warn("rejected", slog.Any("error", err))
				return "", fmt.Errorf("rejected %q: %w", email, err)
			}
		}
	case srs.SRS1:
		// the outer hash was taken over the original SRS0 text, whose
		// separator does not survive in the SRS1 form
	default:
		return "", ErrNotSRS
	}
	reversed := srs.Reverse(addr, baseAddress)
	logger.Info("reverse", slog.String("reversed", reversed))
	return reversed, nil
}

func (r *Rewriter) verifySRS0(logger *slog.Logger, tag srs.SRS0) error {
	err := srs.ErrHashMismatch
	for i, codec := range r.codecs {
		verr := codec.VerifySRS0(tag, r.domain, r.maxAge)
		if verr == nil {
			if i > 0 {
				logger.Info("verified with a retired secret", slog.Int("secret", i))
			}
			return nil
		}
		if !errors.Is(verr, srs.ErrHashMismatch) {
			err = verr
		}
	}
	return err
}
