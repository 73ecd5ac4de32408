// internal/urlutil/urlutil.go
// ---------------------------
// This internal package provides helper functions for resolving request URLs
// and encoding query parameters. The client uses them to combine its base
// URL with per-request paths and to append URL-encoded query strings, either
// from a plain map or from a struct carrying `url` tags.
package urlutil

import (
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
)

// JoinPath combines a base URL and a request path with exactly one slash
// between them. An empty base returns the path unchanged, and a path that is
// already an absolute URL is returned as-is.
func JoinPath(base, path string) string {
	if base == "" {
		return path
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// AppendQuery URL-encodes params and appends them to the query string of u,
// keeping any parameters u already carries.
func AppendQuery(u string, params map[string]string) (string, error) {
	parsed, err := url.Parse(u)
	if err != nil {
		return u, err
	}
	q := parsed.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

// AppendStructQuery encodes opt, a struct whose fields may carry "url" tags,
// and appends the result to the query string of u.
func AppendStructQuery(u string, opt any) (string, error) {
	parsed, err := url.Parse(u)
	if err != nil {
		return u, err
	}
	qs, err := query.Values(opt)
	if err != nil {
		return u, err
	}
	existing := parsed.Query()
	for k, vals := range qs {
		for _, v := range vals {
			existing.Add(k, v)
		}
	}
	parsed.RawQuery = existing.Encode()
	return parsed.String(), nil
}
