package requestbridge

import (
	"net/http"
	"strings"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"

	contentTypeJSON = "application/json"
)

// mergeHeaders builds the effective header mapping for a request. Precedence,
// lowest to highest: the default JSON content type (omitted for multipart
// payloads), client-level default headers, per-request headers, and finally
// the bearer token.
func mergeHeaders(defaults map[string]string, cfg *RequestConfig) map[string]string {
	h := make(map[string]string)

	if cfg.Form == nil {
		h[headerContentType] = contentTypeJSON
	}
	for k, v := range defaults {
		h[http.CanonicalHeaderKey(k)] = v
	}
	for k, v := range cfg.Headers {
		h[http.CanonicalHeaderKey(k)] = v
	}

	if cfg.Token != "" {
		h[headerAuthorization] = "Bearer " + cfg.Token
	}

	// The multipart writer owns the content type, boundary included. Any
	// caller- or default-supplied value must not survive.
	if cfg.Form != nil {
		delete(h, headerContentType)
	}

	return h
}

func lowerHeaderKey(name string) string {
	return strings.ToLower(name)
}

// NormalizeHeaders flattens an http.Header into the lower-cased mapping used
// on WireResponse, keeping the first value of each header. Transport adapters
// use it so that every Transport reports headers the same way.
func NormalizeHeaders(src http.Header) map[string]string {
	out := make(map[string]string, len(src))
	for k, vals := range src {
		if len(vals) > 0 {
			out[lowerHeaderKey(k)] = vals[0]
		}
	}
	return out
}
