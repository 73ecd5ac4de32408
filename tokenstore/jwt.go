package tokenstore

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

// JWT hands out an externally issued JWT bearer token, refusing it once its
// exp claim has passed. The signature is not verified here: the token was
// issued to us, and only the issuing server can vouch for it. The point is
// to fail fast locally instead of collecting 401s with a credential we can
// already tell is stale.
type JWT struct {
	// Raw is the compact serialized token.
	Raw string

	// Leeway widens the expiry check to absorb clock skew between us and
	// the issuer.
	Leeway time.Duration
}

func (s *JWT) Token(ctx context.Context) (string, error) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(s.Raw, &claims); err != nil {
		return "", errors.Wrap(err, "parsing bearer JWT")
	}

	if claims.ExpiresAt != nil {
		deadline := claims.ExpiresAt.Time.Add(s.Leeway)
		if time.Now().After(deadline) {
			return "", errors.Errorf("bearer JWT expired at %s", claims.ExpiresAt.Time.Format(time.RFC3339))
		}
	}
	return s.Raw, nil
}
