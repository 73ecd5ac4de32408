package tokenstore

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"golang.org/x/crypto/pkcs12"
	"golang.org/x/oauth2"
)

// ClientCredentialsConfig holds what is needed to run an OAuth2
// client-credentials flow against a token endpoint. Authentication is either
// secret-based (ClientSecret) or certificate-based (CertPFX + CertPassword),
// in which case a signed JWT client assertion is presented instead.
type ClientCredentialsConfig struct {
	TokenEndpoint string
	ClientID      string
	Scope         string

	ClientSecret string // If using secret-based authentication.

	CertPFX      []byte // PKCS#12 bundle, if using certificate authentication.
	CertPassword string
	UseCertAuth  bool // If true, use the certificate flow instead of the secret.

	// HTTPClient performs the token requests. Nil means a default client
	// with a 10 second timeout.
	HTTPClient *http.Client
}

// ClientCredentials acquires bearer tokens via the client-credentials grant
// and caches them until expiry. It satisfies the token store contract: reads
// are cheap and concurrent, and a fresh token is only fetched when the
// cached one has lapsed.
type ClientCredentials struct {
	config *ClientCredentialsConfig
	client *http.Client

	mu    sync.Mutex
	token *oauth2.Token

	privateKey *rsa.PrivateKey
	cert       *x509.Certificate
}

type tokenEndpointResponse struct {
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	AccessToken string `json:"access_token"`
}

// NewClientCredentials validates cfg and prepares the store. The PKCS#12
// bundle, when certificate auth is requested, is decoded once up front.
func NewClientCredentials(cfg *ClientCredentialsConfig) (*ClientCredentials, error) {
	if cfg.TokenEndpoint == "" {
		return nil, errors.New("token endpoint is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}

	s := &ClientCredentials{
		config: cfg,
		client: cfg.HTTPClient,
	}
	if s.client == nil {
		s.client = &http.Client{Timeout: 10 * time.Second}
	}

	if cfg.UseCertAuth {
		privateKey, cert, err := parsePfxCertificate(cfg.CertPFX, cfg.CertPassword)
		if err != nil {
			return nil, errors.Wrap(err, "parsing PFX certificate")
		}
		s.privateKey = privateKey
		s.cert = cert
	} else if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required for secret-based auth")
	}

	return s, nil
}

// Token returns the cached access token while it is still valid, acquiring
// a new one from the endpoint otherwise.
func (s *ClientCredentials) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil && s.token.Valid() {
		return s.token.AccessToken, nil
	}

	tok, err := s.acquireToken(ctx)
	if err != nil {
		return "", err
	}
	s.token = tok
	return tok.AccessToken, nil
}

func (s *ClientCredentials) acquireToken(ctx context.Context) (*oauth2.Token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", s.config.ClientID)
	if s.config.Scope != "" {
		form.Set("scope", s.config.Scope)
	}

	if s.config.UseCertAuth {
		assertion, err := s.createClientAssertion()
		if err != nil {
			return nil, errors.Wrap(err, "creating client assertion")
		}
		form.Set("client_assertion_type", "urn:ietf:params:oauth:client-assertion-type:jwt-bearer")
		form.Set("client_assertion", assertion)
	} else {
		form.Set("client_secret", s.config.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "building token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "executing token request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenEndpointResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, errors.Wrap(err, "decoding token response")
	}
	if tr.AccessToken == "" {
		return nil, errors.New("token endpoint returned no access token")
	}

	tok := &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
	}
	if tr.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return tok, nil
}

// createClientAssertion signs a short-lived JWT with the certificate's
// private key, carrying the certificate itself in the x5c header.
func (s *ClientCredentials) createClientAssertion() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"aud": s.config.TokenEndpoint,
		"iss": s.config.ClientID,
		"sub": s.config.ClientID,
		"jti": fmt.Sprintf("%d", now.UnixNano()),
		"exp": now.Add(5 * time.Minute).Unix(),
		"nbf": now.Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	x5c := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: s.cert.Raw})
	token.Header["x5c"] = []string{string(x5c)}

	signed, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", errors.Wrap(err, "signing client assertion")
	}
	return signed, nil
}

// parsePfxCertificate parses a PFX/PKCS12 bundle and returns the RSA private
// key and x509 certificate.
func parsePfxCertificate(pfxData []byte, password string) (*rsa.PrivateKey, *x509.Certificate, error) {
	privateKey, cert, err := pkcs12.Decode(pfxData, password)
	if err != nil {
		return nil, nil, errors.Wrap(err, "decoding pkcs12")
	}

	rsaKey, ok := privateKey.(*rsa.PrivateKey)
	if !ok {
		return nil, nil, errors.New("private key is not RSA")
	}
	return rsaKey, cert, nil
}
