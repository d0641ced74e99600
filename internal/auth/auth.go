package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenGenerator creates and validates access tokens.
type TokenGenerator interface {
	GenerateAccessToken(username string) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents JWT token claims. The subject is the username.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret []byte
	AccessTokenTTL    time.Duration
	now               func() time.Time
}

type LoginResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	ExpiresAt time.Time `json:"expires_at"`
}

type VerifyResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}
