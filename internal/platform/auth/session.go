// Package auth issues and validates doctor session tokens for the HTTP
// layer. The token only transports which doctor authenticated; the actual
// password check is a plain exact-match gate owned by the application state,
// not a security boundary.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims is the JWT payload of a doctor session token.
type SessionClaims struct {
	DoctorID string `json:"doctor_id"`
	jwt.RegisteredClaims
}

// SessionManager signs and verifies HS256 session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed session token for the given doctor.
func (m *SessionManager) Issue(doctorID uuid.UUID) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		DoctorID: doctorID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   doctorID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses a session token and returns the doctor it was issued for.
func (m *SessionManager) Verify(tokenStr string) (uuid.UUID, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse session token: %w", err)
	}
	if !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid session token")
	}
	id, err := uuid.Parse(claims.DoctorID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid doctor id in token: %w", err)
	}
	return id, nil
}
