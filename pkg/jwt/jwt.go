package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any cookie value that fails verification.
var ErrInvalidToken = errors.New("invalid session token")

const sessionTokenType = "session"

// Claims wraps the opaque server-side session id in a signed envelope.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session cookie values with HS256
type Manager struct {
	secret []byte
	issuer string
}

// NewManager creates new JWT manager
func NewManager(secret, issuer string) *Manager {
	return &Manager{secret: []byte(secret), issuer: issuer}
}

// SignSession returns the cookie value carrying sessionID.
// maxAge bounds how long the cookie itself is accepted, independent of the
// server-side record TTL.
func (m *Manager) SignSession(sessionID string, maxAge time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Type: sessionTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(maxAge)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// VerifySession validates a cookie value and returns the session id inside it.
func (m *Manager) VerifySession(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Type != sessionTokenType || claims.ID == "" {
		return "", ErrInvalidToken
	}

	return claims.ID, nil
}
