// Package token issues and verifies the signed, time-bound credentials used
// both for admin API access and for JWT-gated mock endpoints.
package token

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Verify for any token that fails signature,
// format, or expiry checks. Callers get no further detail; verification
// fails closed.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the decoded payload of a verified credential.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Issuer signs and verifies HS256 credentials with a process-wide key loaded
// once at startup. The key is never rotated at runtime.
type Issuer struct {
	key []byte
	log *slog.Logger
}

// NewIssuer creates an Issuer for the given signing key. The logger observes
// issued tokens (fire and forget); pass nil to disable.
func NewIssuer(key []byte, log *slog.Logger) (*Issuer, error) {
	if len(key) < 32 {
		return nil, fmt.Errorf("signing key must be at least 32 bytes, got %d", len(key))
	}
	return &Issuer{key: key, log: log}, nil
}

// Issue produces a signed token binding subject and an absolute expiration
// instant.
func (i *Issuer) Issue(subject string, expiresAt time.Time) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	signed, err := tok.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if i.log != nil {
		i.log.Debug("issued token", "subject", subject, "expires_at", expiresAt)
	}
	return signed, nil
}

// Verify validates the signature and decodes the claims. A token signed with
// a different key, with a tampered payload, or whose expiry has passed is
// ErrInvalidToken; no parse detail escapes.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims, err := i.parse(tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		return nil, ErrInvalidToken
	}
	return &Claims{Subject: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// IsExpired reports whether a token's expiration instant is at or before
// now. Signature validity is still required; an unparseable token reports
// expired.
func (i *Issuer) IsExpired(tokenString string) bool {
	claims, err := i.parse(tokenString)
	if err != nil {
		return true
	}
	return claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(time.Now())
}

// parse validates the signature only. Expiry validation is done by the
// callers so IsExpired can distinguish "expired" from "garbage".
func (i *Issuer) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.key, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
