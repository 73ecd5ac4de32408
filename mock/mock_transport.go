// Package mock provides a scripted Transport for tests: it records every
// wire request it observes and replays canned responses or failures.
package mock

import (
	"context"
	"sync"

	requestbridge "github.com/opengovern/request-bridge"
)

// Transport is a scripted requestbridge.Transport. Responses are consumed in
// order; the last one repeats once the script runs out. Err, when set, makes
// every round trip fail. Handler, when set, takes precedence over both.
type Transport struct {
	Responses []*requestbridge.WireResponse
	Err       error
	Handler   func(ctx context.Context, req *requestbridge.WireRequest) (*requestbridge.WireResponse, error)

	mu       sync.Mutex
	requests []*requestbridge.WireRequest
	served   int
}

func (m *Transport) RoundTrip(ctx context.Context, req *requestbridge.WireRequest) (*requestbridge.WireResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	idx := m.served
	m.served++
	m.mu.Unlock()

	if m.Handler != nil {
		return m.Handler(ctx, req)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return JSONResponse(200, `{}`), nil
	}
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx], nil
}

// Requests returns a copy of every wire request observed so far.
func (m *Transport) Requests() []*requestbridge.WireRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*requestbridge.WireRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent wire request, or nil if none were made.
func (m *Transport) LastRequest() *requestbridge.WireRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// JSONResponse builds a canned JSON response with the given status.
func JSONResponse(status int, body string) *requestbridge.WireResponse {
	return &requestbridge.WireResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       []byte(body),
	}
}

// TextResponse builds a canned text/plain response with the given status.
func TextResponse(status int, body string) *requestbridge.WireResponse {
	return &requestbridge.WireResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "text/plain"},
		Body:       []byte(body),
	}
}
