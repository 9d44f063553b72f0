package credentials

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Header names sent by HMAC.
const (
	HeaderAccessKey        = "CB-ACCESS-KEY"
	HeaderAccessSign       = "CB-ACCESS-SIGN"
	HeaderAccessTimestamp  = "CB-ACCESS-TIMESTAMP"
	HeaderAccessPassphrase = "CB-ACCESS-PASSPHRASE"
)

// HMAC signs requests with an API key, secret and optional passphrase.
type HMAC struct {
	Key        string
	Secret     string
	Passphrase string
	// Base64Secret decodes Secret from base64 before signing.
	Base64Secret bool
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// NewHMAC validates the key material and returns a signer.
func NewHMAC(key, secret, passphrase string) (*HMAC, error) {
	if key == "" || secret == "" {
		return nil, errors.New("credentials: hmac key and secret are required")
	}
	return &HMAC{Key: key, Secret: secret, Passphrase: passphrase}, nil
}

// GenerateAuthHeaders implements httpclient.Credentials.
func (h *HMAC) GenerateAuthHeaders(method, fullURL, body string) (map[string]string, error) {
	u, err := url.Parse(fullURL)
	if err != nil {
		return nil, fmt.Errorf("credentials: parse url: %w", err)
	}
	requestPath := u.EscapedPath()
	if u.RawQuery != "" {
		requestPath += "?" + u.RawQuery
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	timestamp := strconv.FormatInt(now().Unix(), 10)

	sig, err := h.sign(timestamp + method + requestPath + body)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		HeaderAccessKey:       h.Key,
		HeaderAccessSign:      sig,
		HeaderAccessTimestamp: timestamp,
	}
	if h.Passphrase != "" {
		headers[HeaderAccessPassphrase] = h.Passphrase
	}
	return headers, nil
}

func (h *HMAC) sign(message string) (string, error) {
	secret := []byte(h.Secret)
	if h.Base64Secret {
		decoded, err := base64.StdEncoding.DecodeString(h.Secret)
		if err != nil {
			return "", fmt.Errorf("credentials: decode secret: %w", err)
		}
		secret = decoded
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
