package adapters

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	requestbridge "github.com/opengovern/request-bridge"
)

// RestyTransport performs exchanges through a go-resty client. It is useful
// when the surrounding application already configures resty (proxies, TLS,
// tracing) and wants the request-bridge pipeline on top.
type RestyTransport struct {
	rc *resty.Client
}

// NewRestyTransport returns a RestyTransport with a default resty client: a
// 30 second timeout and no automatic retries, so a single RoundTrip stays a
// single exchange.
func NewRestyTransport() *RestyTransport {
	rc := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(0)
	return &RestyTransport{rc: rc}
}

// NewRestyTransportWithClient wraps an existing resty client. The caller is
// responsible for keeping its retry count at zero.
func NewRestyTransportWithClient(rc *resty.Client) *RestyTransport {
	return &RestyTransport{rc: rc}
}

func (t *RestyTransport) RoundTrip(ctx context.Context, req *requestbridge.WireRequest) (*requestbridge.WireResponse, error) {
	r := t.rc.R().
		SetContext(ctx).
		SetHeaders(req.Headers)
	if len(req.Body) > 0 {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, errors.WithMessage(err, "executing resty request")
	}

	headers := make(map[string]string, len(resp.Header()))
	for k, vals := range resp.Header() {
		if len(vals) > 0 {
			headers[strings.ToLower(k)] = vals[0]
		}
	}

	return &requestbridge.WireResponse{
		StatusCode: resp.StatusCode(),
		Headers:    headers,
		Body:       resp.Body(),
	}, nil
}
