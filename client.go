// client.go
// ---------
// The client.go file contains the core Client struct and its methods.
// This is the main entry point of the library for users.
//
// Key functionalities include:
// - Initializing a client with New()
// - Registering hooks with UsePreRequestHook() / UsePostResponseHook()
// - Making requests via client.Send() and the verb shortcuts
//
// The Client merges default and per-call configuration, attaches bearer
// tokens, runs the hook chains, and normalizes success/error reporting. It
// holds no per-request state, so any number of Send calls may be in flight
// concurrently. It never retries, caches, or queues: one Send is one
// exchange, and retry policy belongs to the caller.
package requestbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opengovern/request-bridge/internal/urlutil"
)

type Client struct {
	conf   Config
	logger logrus.FieldLogger

	mu        sync.Mutex
	preHooks  []PreRequestHook
	postHooks []PostResponseHook
}

// New returns a Client that sends requests through conf.Transport. If a
// TokenStore is configured it is installed as the first pre-request hook.
func New(conf Config) *Client {
	c := &Client{
		conf:   conf,
		logger: conf.Logger,
	}
	if c.logger == nil {
		c.logger = logrus.StandardLogger()
	}
	if conf.TokenStore != nil {
		c.preHooks = append(c.preHooks, TokenStoreHook(conf.TokenStore))
	}
	return c
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config {
	return c.conf
}

// SetDebug enables or disables debug logging for the client.
func (c *Client) SetDebug(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conf.Debug = enabled
}

// UsePreRequestHook appends a hook to the pre-request chain. Hooks run in
// registration order.
func (c *Client) UsePreRequestHook(h PreRequestHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preHooks = append(c.preHooks, h)
}

// UsePostResponseHook appends a hook to the post-response chain. Hooks run
// in registration order.
func (c *Client) UsePostResponseHook(h PostResponseHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.postHooks = append(c.postHooks, h)
}

// Send performs one HTTP exchange described by cfg and returns the decoded
// result, or exactly one error: a precondition violation (plain error) or a
// *RequestError for anything that went wrong past validation.
//
// The pipeline is a single linear pass: merge headers, run pre-request
// hooks, resolve the URL and serialize the body, invoke the transport, run
// post-response hooks, check the status, decode the body.
func (c *Client) Send(ctx context.Context, cfg *RequestConfig) (*ResponseResult, error) {
	if err := c.validate(cfg); err != nil {
		return nil, err
	}

	// Hooks may mutate the config; work on a copy so the caller's maps
	// stay untouched.
	cfg = cfg.clone()
	cfg.Headers = mergeHeaders(c.conf.DefaultHeaders, cfg)

	for _, hook := range c.snapshotPreHooks() {
		if err := hook(ctx, cfg); err != nil {
			c.debugf("pre-request hook failed for %s %s: %v", cfg.Method, cfg.Path, err)
			return nil, newHookError(err)
		}
	}

	// A token resolved by a hook still wins over any Authorization header,
	// and a multipart payload still owns its content type.
	if cfg.Token != "" {
		cfg.Headers[headerAuthorization] = "Bearer " + cfg.Token
	}
	if cfg.Form != nil {
		delete(cfg.Headers, headerContentType)
	}

	wireReq, err := c.buildWireRequest(cfg)
	if err != nil {
		return nil, err
	}

	c.debugf("sending %s %s", wireReq.Method, wireReq.URL)
	resp, terr := c.conf.Transport.RoundTrip(ctx, wireReq)
	if terr != nil {
		canceled := errors.Is(terr, context.Canceled) || errors.Is(terr, context.DeadlineExceeded)
		netErr := newNetworkError(terr, canceled)
		c.debugf("%s %s: transport failure: %v", wireReq.Method, wireReq.URL, terr)
		if err := c.runPostHooks(ctx, &Exchange{Request: wireReq, Err: netErr}); err != nil {
			return nil, newHookError(err)
		}
		return nil, netErr
	}

	c.debugf("%s %s: status %d (%d bytes)", wireReq.Method, wireReq.URL, resp.StatusCode, len(resp.Body))
	if err := c.runPostHooks(ctx, &Exchange{Request: wireReq, Response: resp}); err != nil {
		return nil, newHookError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp)
	}

	data, derr := decodeBody(resp.Header(headerContentType), resp.Body)
	if derr != nil {
		return nil, newParseError(resp.StatusCode, derr)
	}

	return &ResponseResult{
		StatusCode: resp.StatusCode,
		OK:         true,
		Data:       data,
		Raw:        resp.Body,
		Headers:    resp.Headers,
	}, nil
}

// Get issues a GET request for path.
func (c *Client) Get(ctx context.Context, path string) (*ResponseResult, error) {
	return c.Send(ctx, &RequestConfig{Method: MethodGet, Path: path})
}

// Post issues a POST request with a JSON-serialized body.
func (c *Client) Post(ctx context.Context, path string, body any) (*ResponseResult, error) {
	return c.Send(ctx, &RequestConfig{Method: MethodPost, Path: path, Body: body})
}

// Put issues a PUT request with a JSON-serialized body.
func (c *Client) Put(ctx context.Context, path string, body any) (*ResponseResult, error) {
	return c.Send(ctx, &RequestConfig{Method: MethodPut, Path: path, Body: body})
}

// Patch issues a PATCH request with a JSON-serialized body.
func (c *Client) Patch(ctx context.Context, path string, body any) (*ResponseResult, error) {
	return c.Send(ctx, &RequestConfig{Method: MethodPatch, Path: path, Body: body})
}

// Delete issues a DELETE request for path.
func (c *Client) Delete(ctx context.Context, path string) (*ResponseResult, error) {
	return c.Send(ctx, &RequestConfig{Method: MethodDelete, Path: path})
}

func (c *Client) validate(cfg *RequestConfig) error {
	if c.conf.Transport == nil {
		return fmt.Errorf("client has no transport configured")
	}
	if cfg == nil {
		return fmt.Errorf("nil request config")
	}
	switch cfg.Method {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
	default:
		return fmt.Errorf("unsupported method %q", cfg.Method)
	}
	if cfg.Path == "" {
		return fmt.Errorf("request path must not be empty")
	}
	if cfg.Body != nil && cfg.Form != nil {
		return fmt.Errorf("request config sets both Body and Form")
	}
	return nil
}

func (c *Client) buildWireRequest(cfg *RequestConfig) (*WireRequest, error) {
	u := urlutil.JoinPath(c.conf.BaseURL, cfg.Path)

	var err error
	if len(cfg.Query) > 0 {
		if u, err = urlutil.AppendQuery(u, cfg.Query); err != nil {
			return nil, fmt.Errorf("encoding query parameters: %w", err)
		}
	}
	if cfg.QueryStruct != nil {
		if u, err = urlutil.AppendStructQuery(u, cfg.QueryStruct); err != nil {
			return nil, fmt.Errorf("encoding query struct: %w", err)
		}
	}

	var body []byte
	switch {
	case cfg.Form != nil:
		encoded, contentType, err := cfg.Form.Encode()
		if err != nil {
			return nil, fmt.Errorf("encoding multipart form: %w", err)
		}
		body = encoded
		cfg.Headers[headerContentType] = contentType
	case cfg.Body != nil:
		switch b := cfg.Body.(type) {
		case json.RawMessage:
			body = b
		case []byte:
			body = b
		case string:
			body = []byte(b)
		default:
			if body, err = json.Marshal(b); err != nil {
				return nil, fmt.Errorf("serializing request body: %w", err)
			}
		}
	}

	return &WireRequest{
		Method:  cfg.Method,
		URL:     u,
		Headers: cfg.Headers,
		Body:    body,
	}, nil
}

func (c *Client) snapshotPreHooks() []PreRequestHook {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]PreRequestHook, len(c.preHooks))
	copy(out, c.preHooks)
	return out
}

func (c *Client) runPostHooks(ctx context.Context, ex *Exchange) error {
	c.mu.Lock()
	hooks := make([]PostResponseHook, len(c.postHooks))
	copy(hooks, c.postHooks)
	c.mu.Unlock()

	for _, hook := range hooks {
		if err := hook(ctx, ex); err != nil {
			return err
		}
	}
	return nil
}

// debugf prints debug messages if Debug mode is enabled.
func (c *Client) debugf(format string, args ...any) {
	if c.conf.Debug {
		c.logger.Debugf(format, args...)
	}
}
