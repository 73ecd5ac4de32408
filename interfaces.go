package requestbridge

import "context"

// Transport defines the interface all transport adapters must implement.
// A Transport performs exactly one HTTP exchange: it takes a normalized
// request and returns the raw status, headers, and body, or fails when no
// response could be obtained. It must honor ctx cancellation and must not
// retry on its own.
type Transport interface {
	RoundTrip(ctx context.Context, req *WireRequest) (*WireResponse, error)
}

// TransportFunc adapts a plain function to the Transport interface.
type TransportFunc func(ctx context.Context, req *WireRequest) (*WireResponse, error)

func (f TransportFunc) RoundTrip(ctx context.Context, req *WireRequest) (*WireResponse, error) {
	return f(ctx, req)
}

// TokenStore is a read accessor for a bearer token owned by the caller.
// The Client only ever reads from it, at most once per Send, so
// implementations must tolerate concurrent reads.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
}
