// Package adapters provides ready-made Transport implementations for the
// request-bridge client: one on net/http and one on go-resty. Both perform
// exactly one exchange per call and leave retries to the caller.
package adapters

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"

	requestbridge "github.com/opengovern/request-bridge"
)

const defaultUserAgent = "request-bridge/http"

// HTTPTransport performs exchanges with a net/http client. The zero value is
// usable; it falls back to a plain http.Client with no timeout, leaving
// deadlines to the caller's context.
type HTTPTransport struct {
	// Client is the underlying HTTP client. Nil means a default client.
	Client *http.Client

	// UserAgent is sent when the request carries no User-Agent header.
	UserAgent string
}

// NewHTTPTransport returns an HTTPTransport backed by the given client. A
// nil client is allowed.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	return &HTTPTransport{Client: client}
}

func (t *HTTPTransport) RoundTrip(ctx context.Context, req *requestbridge.WireRequest) (*requestbridge.WireResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, errors.Wrap(err, "building http request")
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if httpReq.Header.Get("User-Agent") == "" {
		ua := t.UserAgent
		if ua == "" {
			ua = defaultUserAgent
		}
		httpReq.Header.Set("User-Agent", ua)
	}

	resp, err := t.client().Do(httpReq)
	if err != nil {
		// Keep the cause in the chain so the client can recognize
		// context cancellation.
		return nil, errors.WithMessage(err, "executing http request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}

	return &requestbridge.WireResponse{
		StatusCode: resp.StatusCode,
		Headers:    requestbridge.NormalizeHeaders(resp.Header),
		Body:       data,
	}, nil
}

func (t *HTTPTransport) client() *http.Client {
	if t.Client != nil {
		return t.Client
	}
	return http.DefaultClient
}
