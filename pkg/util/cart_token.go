package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const cartTokenIssuer = "verdantia-storefront"

// CartClaims identifies an anonymous cart session
type CartClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// CartToken is returned when a new cart session is opened
type CartToken struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewCartSession mints a fresh session id and its signed token
func NewCartSession(secret string, ttl time.Duration) (*CartToken, error) {
	return GenerateCartToken(uuid.NewString(), secret, ttl)
}

// GenerateCartToken signs a token for an existing session id
func GenerateCartToken(sessionID, secret string, ttl time.Duration) (*CartToken, error) {
	if sessionID == "" {
		return nil, ErrInvalidToken
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := CartClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    cartTokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign cart token: %w", err)
	}

	return &CartToken{Token: signed, SessionID: sessionID, ExpiresAt: expiresAt}, nil
}

// ValidateCartToken returns the claims of a well-signed, unexpired token
func ValidateCartToken(tokenString, secret string) (*CartClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CartClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(cartTokenIssuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*CartClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
