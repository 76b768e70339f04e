package rewriter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/moriyoshi/badass-srs/address"
	"github.com/moriyoshi/badass-srs/internal/bufio"
	"github.com/moriyoshi/badass-srs/internal/rfc5322"
	"github.com/moriyoshi/badass-srs/types"
)

const DefaultFilterHeader = "Return-Path"

const filterBufferSize = 64 * 1024

// FilterHeaders copies the message in r to w, rewriting the address in
// every header named in headers (Return-Path if none are given).
func FilterHeaders(w io.Writer, r io.Reader, rw types.Rewriter, dir types.Direction, headers ...string) error {
	if !dir.Valid() {
		return fmt.Errorf("unknown direction %q", string(dir))
	}
	if len(headers) == 0 {
		headers = []string{DefaultFilterHeader}
	}
	bl := &rfc5322.Builder{Writer: w}
	return rfc5322.Scan(
		bufio.NewReader(r, filterBufferSize),
		rfc5322.ScannerHandlerFromFunctions(
			bl.HandleStraggler,
			func(chunks [][]byte) error {
				name, value, ok := rfc5322.SplitHeaderLine(chunks)
				if !ok || !matchHeaderName(name, headers) {
					return bl.HandleHeaderLine(chunks)
				}
				v, changed, err := rewriteHeaderValue(rw, dir, string(bytes.Join(value, nil)))
				if err != nil {
					return fmt.Errorf("failed to rewrite %s: %w", name, err)
				}
				if !changed {
					return bl.HandleHeaderLine(chunks)
				}
				return bl.WriteField(name, []byte(v))
			},
			bl.HandleBody,
		),
	)
}

func matchHeaderName(name []byte, headers []string) bool {
	name = bytes.TrimSpace(name)
	for _, h := range headers {
		if bytes.EqualFold(name, []byte(h)) {
			return true
		}
	}
	return false
}

// rewriteHeaderValue rewrites the address in an unfolded header value and
// renders it as an angle-addr, keeping a display name if there is one.
func rewriteHeaderValue(rw types.Rewriter, dir types.Direction, value string) (string, bool, error) {
	value = strings.TrimSpace(value)
	email := address.ExtractEmail(value)
	if email == "" {
		return "", false, nil
	}
	rewritten, err := dir.Apply(rw, email)
	if err != nil {
		if dir == types.Reverse && errors.Is(err, ErrNotSRS) {
			return "", false, nil
		}
		return "", false, err
	}
	if rewritten == email {
		return "", false, nil
	}
	if !strings.HasPrefix(value, "<") {
		if title := address.ExtractTitle(value, false); title != "" {
			return address.CombineEmail(title, rewritten), true, nil
		}
	}
	return "<" + rewritten + ">", true, nil
}
