// Package jwttoken issues HMAC-signed JWTs and verifies signature and expiry on decode.
package jwttoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
	"github.com/smartbin/portal/internal/ports"
)

var _ ports.TokenCodec = (*Codec)(nil)

// Claims is the signed payload. UserID mirrors the pseudo token field so
// clients can read either format the same way.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// Config configures a Codec.
type Config struct {
	Secret []byte
	Issuer string
	Now    func() time.Time
}

// Codec signs with HS256 using a server-held secret.
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// New validates the config and returns a Codec.
func New(cfg Config) (*Codec, error) {
	if len(cfg.Secret) < 16 {
		return nil, errors.New("jwt secret must be at least 16 bytes")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Codec{secret: cfg.Secret, issuer: cfg.Issuer, now: now}, nil
}

// Issue signs a token for subject valid for ttl.
func (c *Codec) Issue(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("issue token: %w", domainauth.ErrMalformedToken)
	}
	now := c.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: subject,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry. Expired tokens fail with
// ErrTokenExpired; anything else invalid fails with ErrMalformedToken.
func (c *Codec) Decode(token string) (domainauth.TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domainauth.TokenClaims{}, fmt.Errorf("%w: %w", domainauth.ErrTokenExpired, err)
		}
		return domainauth.TokenClaims{}, fmt.Errorf("%w: %w", domainauth.ErrMalformedToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return domainauth.TokenClaims{}, fmt.Errorf("%w: missing userId", domainauth.ErrMalformedToken)
	}

	out := domainauth.TokenClaims{UserID: claims.UserID}
	if claims.ExpiresAt != nil {
		out.Exp = claims.ExpiresAt.Unix()
	}
	return out, nil
}
