package requestbridge

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a RequestError.
type ErrorKind string

const (
	// ErrKindNetwork means the transport could not complete the exchange:
	// no response was received. Cancellation surfaces as this kind with
	// Canceled set.
	ErrKindNetwork ErrorKind = "network"

	// ErrKindHTTPStatus means a response arrived with a status outside
	// [200,299] and no hook intercepted it.
	ErrKindHTTPStatus ErrorKind = "http_status"

	// ErrKindParseFailure means the response body could not be decoded per
	// its declared or sniffed content type.
	ErrKindParseFailure ErrorKind = "parse_failure"

	// ErrKindHookFailure means a pre-request or post-response hook failed
	// and its error replaced the original outcome.
	ErrKindHookFailure ErrorKind = "hook_failure"
)

// RequestError is the single error type produced by Send. Every failing Send
// returns exactly one of these; hooks may substitute their own error, which
// is then wrapped with ErrKindHookFailure.
type RequestError struct {
	Kind       ErrorKind
	StatusCode int // 0 when no response was received
	Message    string
	Canceled   bool // context canceled or deadline exceeded
	cause      error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.cause
}

// AsRequestError unwraps err to a *RequestError if one is in the chain.
func AsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	ok := errors.As(err, &re)
	return re, ok
}

// IsStatus reports whether err is a RequestError carrying the given HTTP
// status code.
func IsStatus(err error, code int) bool {
	re, ok := AsRequestError(err)
	return ok && re.StatusCode == code
}

func newNetworkError(cause error, canceled bool) *RequestError {
	return &RequestError{
		Kind:     ErrKindNetwork,
		Message:  cause.Error(),
		Canceled: canceled,
		cause:    cause,
	}
}

func newStatusError(resp *WireResponse) *RequestError {
	msg := fmt.Sprintf("unexpected status %d", resp.StatusCode)
	if len(resp.Body) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, truncateForMessage(resp.Body))
	}
	return &RequestError{
		Kind:       ErrKindHTTPStatus,
		StatusCode: resp.StatusCode,
		Message:    msg,
	}
}

func newParseError(statusCode int, cause error) *RequestError {
	return &RequestError{
		Kind:       ErrKindParseFailure,
		StatusCode: statusCode,
		Message:    fmt.Sprintf("decoding response body: %v", cause),
		cause:      cause,
	}
}

func newHookError(cause error) *RequestError {
	// A hook substituting a RequestError of its own keeps its identity.
	if re, ok := AsRequestError(cause); ok {
		return re
	}
	return &RequestError{
		Kind:    ErrKindHookFailure,
		Message: cause.Error(),
		cause:   cause,
	}
}

const maxMessageBodyBytes = 256

func truncateForMessage(body []byte) string {
	if len(body) > maxMessageBodyBytes {
		return string(body[:maxMessageBodyBytes]) + "..."
	}
	return string(body)
}
