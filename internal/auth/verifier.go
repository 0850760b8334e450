// Package auth validates sessions issued by the hosted auth provider.
// Access tokens are HS256 JWTs signed with a shared secret; the subject
// claim carries the stable user uuid referenced by the user table.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// ErrInvalidToken is returned for missing, malformed or expired tokens.
var ErrInvalidToken = errors.New("invalid access token")

// Identity is the verified subject of an access token.
type Identity struct {
	Subject string
	Email   string
}

// Verifier checks access tokens against the provider's signing secret.
type Verifier struct {
	secret []byte
}

// NewVerifier builds a verifier from the shared HS256 secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verify parses and validates the token, returning the caller's identity.
func (v *Verifier) Verify(token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, errors.WithMessage(ErrInvalidToken, "verify")
	}
	if claims.Subject == "" {
		return nil, errors.WithMessage(ErrInvalidToken, "missing subject")
	}
	return &Identity{Subject: claims.Subject, Email: claims.Email}, nil
}
