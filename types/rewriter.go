package types

// Rewriter rewrites envelope addresses on behalf of a forwarding relay.
// Forward rewrites the sender of an outgoing message; Reverse restores the
// address a bounce has to be delivered to.
type Rewriter interface {
	Forward(string) (string, error)
	Reverse(string) (string, error)
}
