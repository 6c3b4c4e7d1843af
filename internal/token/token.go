// Package token issues and verifies the signed bearer credentials that
// stand in for server-side sessions. A credential binds a user id to an
// expiry; verification is a pure function of the credential and the clock
// and never touches storage.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMalformed means the credential could not be parsed into a claim set.
	ErrMalformed = errors.New("token malformed")
	// ErrInvalidSignature means the signature does not match the claim bytes.
	ErrInvalidSignature = errors.New("token signature invalid")
	// ErrExpired means the credential is past its expiry.
	ErrExpired = errors.New("token expired")
)

// Service signs and verifies HS256 JWTs with a process-wide secret.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a token service. TTL is fixed for the process
// lifetime; callers never request a custom one.
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue produces a fresh credential for the given user id with
// issued-at now and expiry now+TTL.
func (s *Service) Issue(userID uuid.UUID) (string, error) {
	now := s.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})

	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the subject user id.
// It does not check that the user still exists; that is the caller's
// policy decision.
func (s *Service) Verify(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return uuid.Nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return uuid.Nil, ErrInvalidSignature
		default:
			return uuid.Nil, ErrMalformed
		}
	}
	if !tok.Valid {
		return uuid.Nil, ErrMalformed
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrMalformed
	}
	return userID, nil
}
