package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims are the claims carried by an access token
type AccessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 access tokens
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of issued tokens
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs an access token for the account
func (s *TokenService) Issue(accountID uint, email string) (string, error) {
	now := s.now()
	claims := AccessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(accountID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses an access token and returns the account id it was issued for
func (s *TokenService) Verify(tokenString string) (uint, error) {
	claims := &AccessClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return 0, unauthorized("Invalid or expired token")
	}
	if !token.Valid {
		return 0, unauthorized("Invalid or expired token")
	}

	accountID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || accountID == 0 {
		return 0, unauthorized("Invalid token subject")
	}
	return uint(accountID), nil
}

// IsUnauthorized reports whether err is an authentication failure
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
