package tokenstore

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// OAuth2 exposes an oauth2.TokenSource as a bearer token store. Refreshing
// is the source's business; this store just reads the current access token.
type OAuth2 struct {
	mu     sync.Mutex
	source oauth2.TokenSource
}

func NewOAuth2(source oauth2.TokenSource) *OAuth2 {
	return &OAuth2{source: source}
}

func (s *OAuth2) Token(ctx context.Context) (string, error) {
	// oauth2.TokenSource implementations are not all safe for concurrent
	// use, so serialize access here.
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.source.Token()
	if err != nil {
		return "", errors.Wrap(err, "reading oauth2 token source")
	}
	return tok.AccessToken, nil
}
