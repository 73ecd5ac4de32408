package requestbridge

// Supported request methods. Send rejects anything else.
const (
	MethodGet    = "GET"
	MethodPost   = "POST"
	MethodPut    = "PUT"
	MethodPatch  = "PATCH"
	MethodDelete = "DELETE"
)

// RequestConfig describes a single request to be sent by a Client.
//
// Body and Form are mutually exclusive: Body holds a structured value that is
// serialized to JSON (or a pre-encoded []byte / string passed through as-is),
// while Form holds a multipart payload that owns its own content type.
type RequestConfig struct {
	Method string
	Path   string

	// Query is appended to the resolved URL, URL-encoded. QueryStruct may
	// hold a struct with `url` tags as an alternative; both may be set.
	Query       map[string]string
	QueryStruct any

	Headers map[string]string

	Body any
	Form *Form

	// Token, when non-empty, is sent as "Authorization: Bearer <token>" and
	// overrides any caller-supplied Authorization header.
	Token string
}

func (c *RequestConfig) clone() *RequestConfig {
	out := *c
	if c.Headers != nil {
		out.Headers = make(map[string]string, len(c.Headers))
		for k, v := range c.Headers {
			out.Headers[k] = v
		}
	}
	if c.Query != nil {
		out.Query = make(map[string]string, len(c.Query))
		for k, v := range c.Query {
			out.Query[k] = v
		}
	}
	return &out
}

// WireRequest is the normalized request handed to a Transport: final method,
// resolved URL, effective headers, and the serialized body.
type WireRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// WireResponse is the normalized response a Transport hands back. Header keys
// are lower-cased.
type WireResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// Header returns the value for the given header name, matching
// case-insensitively.
func (r *WireResponse) Header(name string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers[lowerHeaderKey(name)]
}

// ResponseResult is the outcome of a successful Send. It is created once per
// completed request and never mutated afterwards.
type ResponseResult struct {
	StatusCode int
	OK         bool

	// Data is the decoded body: a JSON value (map[string]any, []any, ...)
	// for JSON responses, a string for text responses, and the raw []byte
	// otherwise.
	Data any

	// Raw is the body exactly as received.
	Raw []byte

	// Headers holds the response headers with lower-cased keys.
	Headers map[string]string
}

// Header returns the value for the given response header name, matching
// case-insensitively.
func (r *ResponseResult) Header(name string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers[lowerHeaderKey(name)]
}
