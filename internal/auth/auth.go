// Package auth provides credential checks and signed session tokens for
// the collaboration endpoint. When no accounts are configured the whole
// layer is disabled and every connection is trusted.
package auth

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Auth validates username/password pairs against the configured account
// table and issues HMAC-signed session tokens so returning clients can
// skip the password prompt.
type Auth struct {
	secret []byte
	users  map[string]string
	ttl    time.Duration
}

const defaultTTL = 30 * 24 * time.Hour

func New(secret string, users map[string]string) *Auth {
	return &Auth{
		secret: []byte(secret),
		users:  users,
		ttl:    defaultTTL,
	}
}

// Enabled reports whether any accounts are configured. A disabled Auth
// accepts nothing; callers should skip the auth gate entirely.
func (a *Auth) Enabled() bool {
	return len(a.users) > 0
}

// Check validates a username/password pair.
func (a *Auth) Check(username, password string) bool {
	stored, ok := a.users[username]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// Token issues a signed session token for username.
func (a *Auth) Token(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks that token is validly signed, unexpired, and was issued
// to username, and that the account still exists.
func (a *Auth) Verify(username, token string) bool {
	if _, ok := a.users[username]; !ok {
		return false
	}
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			return a.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return false
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	return ok && claims.Subject == username
}
