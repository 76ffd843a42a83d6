// Package pseudotoken implements the unsigned demo token format: three
// dot-separated base64 segments shaped like a JWT whose signature segment is
// a fixed string. It carries no integrity guarantee and decode never checks
// expiry. Use jwttoken for anything beyond local development.
package pseudotoken

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
	"github.com/smartbin/portal/internal/ports"
)

const (
	headerJSON      = `{"alg":"HS256","typ":"JWT"}`
	signaturePrefix = "mock-signature-"
)

var _ ports.TokenCodec = (*Codec)(nil)

// Codec issues and decodes pseudo tokens.
type Codec struct {
	now func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock overrides the clock used for exp.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns a Codec using the wall clock.
func New(opts ...Option) *Codec {
	c := &Codec{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue encodes subject with exp = now + ttl (whole seconds).
func (c *Codec) Issue(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("issue token: %w", domainauth.ErrMalformedToken)
	}
	payload, err := json.Marshal(domainauth.TokenClaims{
		UserID: subject,
		Exp:    c.now().Add(ttl).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("encode token payload: %w", err)
	}

	enc := base64.StdEncoding
	return strings.Join([]string{
		enc.EncodeToString([]byte(headerJSON)),
		enc.EncodeToString(payload),
		enc.EncodeToString([]byte(signaturePrefix + subject)),
	}, "."), nil
}

// Decode reads the payload segment. It fails with ErrMalformedToken when the
// token is not three segments, the payload is not base64 JSON, or userId is
// missing.
func (c *Codec) Decode(token string) (domainauth.TokenClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return domainauth.TokenClaims{}, fmt.Errorf("%w: expected 3 segments, got %d", domainauth.ErrMalformedToken, len(parts))
	}

	raw, err := decodeSegment(parts[1])
	if err != nil {
		return domainauth.TokenClaims{}, fmt.Errorf("%w: payload is not base64: %w", domainauth.ErrMalformedToken, err)
	}

	var claims domainauth.TokenClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return domainauth.TokenClaims{}, fmt.Errorf("%w: payload is not JSON: %w", domainauth.ErrMalformedToken, err)
	}
	if claims.UserID == "" {
		return domainauth.TokenClaims{}, fmt.Errorf("%w: missing userId", domainauth.ErrMalformedToken)
	}
	return claims, nil
}

// decodeSegment accepts padded and unpadded standard base64.
func decodeSegment(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
