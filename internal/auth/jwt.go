// Package auth provides JWT token issuance/validation and the Yandex
// OAuth provider used to log users in.
//
// The flow:
//  1. User visits /auth/yandex/login → redirected to Yandex
//  2. Yandex calls back /auth/yandex/callback with a code
//  3. Server exchanges the code for the Yandex profile, finds or creates
//     the user in the DB
//  4. Server issues a JWT access token; the client presents it as a
//     bearer header on every later request
//  5. Middleware validates the token and resolves the user for handlers
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "audio-repo"

// DefaultTokenTTL is the access-token lifetime used when the
// configuration does not override it.
const DefaultTokenTTL = 15 * time.Minute

// TokenService signs and validates JWT access tokens.
//
// It holds the process-wide HMAC secret; the same secret is used for
// signing and verifying, and it is read-only after construction.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. A ttl of 0 selects DefaultTokenTTL. The secret should be at
// least 32 bytes of random data in production, e.g.
// JWT_SECRET=$(openssl rand -hex 32).
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims embeds jwt.RegisteredClaims. The "sub" claim carries the
// internal user ID as a string.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new access token for the given subject,
// expiring after the service's configured TTL.
//
// Signing algorithm: HS256 (HMAC-SHA256), the single configured
// algorithm for the whole process.
func (s *TokenService) Generate(subject string) (string, error) {
	return s.GenerateWithTTL(subject, s.ttl)
}

// GenerateWithTTL creates a token with an explicit expiry duration.
// Used by tests to mint already-expired tokens.
func (s *TokenService) GenerateWithTTL(subject string, ttl time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns its subject.
//
// The checks: signature verifies under our secret, the signing method is
// HS256 (jwt.WithValidMethods rejects algorithm-confusion tokens), the
// issuer matches, expiry is present and in the future, and the subject
// claim is non-empty. Every failure collapses into a single error class;
// callers do not need to distinguish the sub-cases.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
