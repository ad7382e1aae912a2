// Package token issues and verifies the signed, time-limited tokens embedded
// in emailed access links. Tokens are stateless: validity is determined by
// the HMAC signature and the issuance time alone, nothing is stored.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrExpired means the token was genuine but older than the max age.
	ErrExpired = errors.New("token expired")
	// ErrInvalidSignature covers every other failure: tampered payload,
	// wrong key, malformed token.
	ErrInvalidSignature = errors.New("invalid token signature")
)

// Service signs and verifies access tokens. One canonical max age applies to
// every call site; per-call lifetimes are deliberately not supported.
type Service struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewService creates a token service. maxAgeDays is the canonical token
// lifetime (30 days in production).
func NewService(secret string, maxAgeDays int) *Service {
	return &Service{
		secret: []byte(secret),
		maxAge: time.Duration(maxAgeDays) * 24 * time.Hour,
		now:    time.Now,
	}
}

// claims binds the advisor identity to the email the link was sent to. The
// JWT encoding keeps fields in separate base64url segments, so an email can
// never smuggle a delimiter into the payload.
type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issue returns a signed token for (subjectID, email). No side effects.
func (s *Service) Issue(subjectID uuid.UUID, email string) (string, error) {
	now := s.now()
	c := claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString(s.secret)
}

// Verify checks signature and age and returns the embedded (subjectID, email).
// Age failures report ErrExpired; everything else reports ErrInvalidSignature.
func (s *Service) Verify(tok string) (uuid.UUID, string, error) {
	parsed, err := jwt.ParseWithClaims(tok, &claims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidSignature
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, "", ErrExpired
		}
		return uuid.Nil, "", ErrInvalidSignature
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return uuid.Nil, "", ErrInvalidSignature
	}
	subjectID, err := uuid.Parse(c.Subject)
	if err != nil || c.Email == "" {
		return uuid.Nil, "", ErrInvalidSignature
	}
	return subjectID, c.Email, nil
}
