package credentials

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

const (
	defaultIssuer   = "cdp"
	defaultTokenTTL = 2 * time.Minute
)

// JWT signs each request with an ES256 bearer token. The token's uri claim
// binds it to "METHOD host/path".
type JWT struct {
	keyName string
	key     *ecdsa.PrivateKey
	// Issuer defaults to "cdp".
	Issuer string
	// TTL is the token lifetime. Defaults to two minutes.
	TTL time.Duration
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// Claims are the claims carried by request tokens.
type Claims struct {
	gojwt.RegisteredClaims
	URI string `json:"uri,omitempty"`
}

// NewJWT parses a PEM-encoded EC private key.
func NewJWT(keyName string, privateKeyPEM []byte) (*JWT, error) {
	if keyName == "" {
		return nil, errors.New("credentials: jwt key name is required")
	}
	key, err := gojwt.ParseECPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("credentials: parse private key: %w", err)
	}
	return NewJWTFromKey(keyName, key), nil
}

// NewJWTFromKey creates a signer from a parsed key.
func NewJWTFromKey(keyName string, key *ecdsa.PrivateKey) *JWT {
	return &JWT{keyName: keyName, key: key}
}

// GenerateAuthHeaders implements httpclient.Credentials.
func (j *JWT) GenerateAuthHeaders(method, fullURL, _ string) (map[string]string, error) {
	u, err := url.Parse(fullURL)
	if err != nil {
		return nil, fmt.Errorf("credentials: parse url: %w", err)
	}
	token, err := j.Token(method + " " + u.Host + u.EscapedPath())
	if err != nil {
		return nil, err
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

// Token mints a signed token. An empty uri produces a token without the
// uri claim, as used for websocket authentication.
func (j *JWT) Token(uri string) (string, error) {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	issuer := j.Issuer
	if issuer == "" {
		issuer = defaultIssuer
	}
	ttl := j.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	issued := now()
	claims := Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   j.keyName,
			Issuer:    issuer,
			NotBefore: gojwt.NewNumericDate(issued),
			ExpiresAt: gojwt.NewNumericDate(issued.Add(ttl)),
		},
		URI: uri,
	}

	nonce, err := newNonce()
	if err != nil {
		return "", err
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodES256, claims)
	token.Header["kid"] = j.keyName
	token.Header["nonce"] = nonce

	signed, err := token.SignedString(j.key)
	if err != nil {
		return "", fmt.Errorf("credentials: sign token: %w", err)
	}
	return signed, nil
}

func newNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("credentials: nonce: %w", err)
	}
	return hex.EncodeToString(b), nil
}
