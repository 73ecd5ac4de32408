// hooks.go
// --------
// Hooks are caller-registered functions invoked at fixed points in the
// request lifecycle. Pre-request hooks run after the effective header
// mapping is built and may mutate the config (inject headers, resolve a
// token). Post-response hooks see the raw outcome, success or failure, and
// may substitute their own error for it.
//
// Hooks registered on a Client form an ordered chain applied in
// registration order; the first failure short-circuits the chain and the
// Send call.
package requestbridge

import (
	"context"

	"github.com/google/uuid"
)

// PreRequestHook runs before the transport is invoked. It may mutate the
// config; returning an error aborts the send with that failure.
type PreRequestHook func(ctx context.Context, cfg *RequestConfig) error

// Exchange is handed to post-response hooks. Exactly one of Response or Err
// is set: Response when the transport produced a response (of any status),
// Err when it failed without one.
type Exchange struct {
	Request  *WireRequest
	Response *WireResponse
	Err      error
}

// PostResponseHook observes the raw outcome of an exchange. Returning an
// error replaces the original outcome with that error.
type PostResponseHook func(ctx context.Context, ex *Exchange) error

// RequestIDHook returns a pre-request hook that stamps every outgoing
// request with a fresh UUID under the given header name (typically
// "X-Request-ID"). Caller-supplied values are kept.
func RequestIDHook(header string) PreRequestHook {
	return func(ctx context.Context, cfg *RequestConfig) error {
		if cfg.Headers[header] == "" {
			cfg.Headers[header] = uuid.NewString()
		}
		return nil
	}
}

// TokenStoreHook returns a pre-request hook that reads a bearer token from
// the externally-owned store and sets it on the config, unless the config
// already carries one. The store is only ever read, never written.
func TokenStoreHook(store TokenStore) PreRequestHook {
	return func(ctx context.Context, cfg *RequestConfig) error {
		if cfg.Token != "" {
			return nil
		}
		token, err := store.Token(ctx)
		if err != nil {
			return err
		}
		cfg.Token = token
		return nil
	}
}

// InterceptStatus returns a post-response hook that substitutes the given
// error whenever a response arrives with the given status code. Typical use
// is mapping 401 to a domain-specific unauthorized error.
func InterceptStatus(code int, substitute error) PostResponseHook {
	return func(ctx context.Context, ex *Exchange) error {
		if ex.Response != nil && ex.Response.StatusCode == code {
			return substitute
		}
		return nil
	}
}
