// Package token implements the stateless session-token codec. Tokens are
// self-contained HS256 JWTs: once issued they stay valid until expiry, no
// server-side session state is consulted. A role change therefore only
// takes effect on the next token issuance.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrorKind classifies why a token failed to decode, so callers can map
// failures deterministically without string matching.
type ErrorKind int

const (
	KindMalformed ErrorKind = iota
	KindSignatureInvalid
	KindExpired
)

// Error is the only error type Decode returns.
type Error struct {
	Kind  ErrorKind
	cause error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindSignatureInvalid:
		return "token signature invalid"
	case KindExpired:
		return "token expired"
	default:
		return "token malformed"
	}
}

func (e *Error) Unwrap() error { return e.cause }

// Claims is the payload carried inside a session token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the token subject.
func (c *Claims) UserID() string { return c.Subject }

// Codec signs and verifies session tokens with a shared HMAC secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec returns a Codec issuing tokens valid for ttl. A non-positive
// ttl defaults to 24h.
func NewCodec(secret string, ttl time.Duration) Codec {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return Codec{secret: []byte(secret), ttl: ttl}
}

// TTL returns the expiry window applied to issued tokens.
func (c Codec) TTL() time.Duration { return c.ttl }

// Issue signs a token for the given user id and role, expiring ttl from now.
func (c Codec) Issue(userID, role string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies signature and expiry (against the local clock) and
// returns the claims. Failures are always a *Error with a distinguishing
// Kind: Malformed, SignatureInvalid, or Expired.
func (c Codec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, &Error{Kind: classify(err), cause: err}
	}
	if !parsed.Valid {
		return nil, &Error{Kind: KindMalformed, cause: jwt.ErrTokenInvalidClaims}
	}
	return claims, nil
}

// classify maps jwt/v5 sentinel errors onto our kinds. Expiry wins over
// signature problems so an expired token always reports as expired.
func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return KindExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return KindSignatureInvalid
	default:
		return KindMalformed
	}
}
