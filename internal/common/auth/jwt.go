package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/AutoMercado/AutoMercado/internal/common/config"
	"github.com/AutoMercado/AutoMercado/internal/common/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the token claims shared by the services. Role is a single
// value (client / vendor / admin); ownership checks happen per resource.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Actor is the authenticated caller as seen by handlers.
type Actor struct {
	ID    string
	Email string
	Role  string
}

// GenerateAccessToken signs an HS256 JWT access token.
func GenerateAccessToken(cfg config.AuthConfig, subject, email, role string, ttl time.Duration) (token string, expiresAt time.Time, err error) {
	if subject == "" {
		return "", time.Time{}, fmt.Errorf("subject is empty")
	}
	if cfg.JWTSecret == "" {
		return "", time.Time{}, fmt.Errorf("jwt_secret is empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	now := time.Now()
	expiresAt = now.Add(ttl)

	c := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.Issuer,
			Audience:  audience(cfg.Audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := t.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseAccessToken validates a signed token and returns the actor it
// carries. Expired and malformed tokens map to the shared auth errors.
func ParseAccessToken(cfg config.AuthConfig, tokenString string) (*Actor, error) {
	if tokenString == "" {
		return nil, domain.ErrMissingToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}

	return &Actor{
		ID:    claims.Subject,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}

func audience(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}
