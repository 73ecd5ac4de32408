// Package tokenstore provides bearer token stores for the request-bridge
// client. A store is a read-only accessor: the client reads a token from it
// at most once per send and never writes back, so every implementation here
// is safe for concurrent reads.
package tokenstore

import "context"

// Static is a fixed bearer token.
type Static string

func (s Static) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

// Func adapts a closure to the token store interface.
type Func func(ctx context.Context) (string, error)

func (f Func) Token(ctx context.Context) (string, error) {
	return f(ctx)
}
