// config.go
// ----------
// This file defines the Config structure, which customizes a Client: the
// base URL requests are resolved against, the transport that performs the
// actual exchanges, an optional token store, default headers, and logging.
//
// Only Transport is required; everything else has a sensible zero value.
package requestbridge

import "github.com/sirupsen/logrus"

// Config customizes a Client.
type Config struct {
	// BaseURL is prefixed to every request path. May be empty when request
	// paths are absolute URLs.
	BaseURL string

	// Transport performs the HTTP exchanges. Required.
	Transport Transport

	// TokenStore, when set, is consulted once per send for a bearer token.
	// It is installed as the first pre-request hook of the client.
	TokenStore TokenStore

	// DefaultHeaders are merged into every request, below per-request
	// headers in precedence.
	DefaultHeaders map[string]string

	// Logger receives debug traces. Defaults to the logrus standard logger.
	Logger logrus.FieldLogger

	// Debug enables request/response trace logging.
	Debug bool
}
