package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/meal-scan/internal"
	userDatamodel "github.com/frahmantamala/meal-scan/internal/core/datamodel/user"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*LoginResponse, error)
	Verify(ctx context.Context, token string) (*VerifyResponse, error)
	ResolveUser(ctx context.Context, token string) (*User, error)
}

type RepositoryAPI interface {
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	CreateIfAbsent(ctx context.Context, u *userDatamodel.User) (bool, error)
}

// Service is the main auth service with dependencies
type Service struct {
	userRepo       RepositoryAPI
	tokenGenerator TokenGenerator
	bcryptCost     int
	logger         *slog.Logger
}

// NewService creates a new auth service
func NewService(userRepo RepositoryAPI, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret string, accessTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 12 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret: []byte(accessSecret),
		AccessTokenTTL:    accessTTL,
		now:               time.Now,
	}
}

// Authenticate validates credentials and returns a signed access token
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, dto.Username)
	if err != nil {
		s.logger.Error("Authenticate: failed to load user", "username", dto.Username, "error", err)
		return nil, fmt.Errorf("auth: load user: %w", err)
	}
	if user == nil {
		return nil, internal.ErrInvalidCredentials
	}

	if err := VerifyPassword(user.PasswordHash, dto.Password); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokenGenerator.GenerateAccessToken(user.Username)
	if err != nil {
		return nil, fmt.Errorf("auth: sign token: %w", err)
	}

	s.logger.Info("user logged in", "username", user.Username, "is_admin", user.IsAdmin)

	return &LoginResponse{
		Success:   true,
		Message:   "Login berhasil",
		Token:     token,
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// ResolveUser maps a token to the stored account. Admin rights are read from
// the account, not from the token.
func (s *Service) ResolveUser(ctx context.Context, tokenString string) (*User, error) {
	claims, err := s.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, claims.Username)
	if err != nil {
		return nil, fmt.Errorf("auth: load user: %w", err)
	}
	if user == nil {
		return nil, internal.ErrInvalidToken
	}
	return FromDataModel(user), nil
}

func (s *Service) Verify(ctx context.Context, tokenString string) (*VerifyResponse, error) {
	if tokenString == "" {
		return nil, internal.ErrInvalidToken
	}
	user, err := s.ResolveUser(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return &VerifyResponse{Success: true, Username: user.Username, IsAdmin: user.IsAdmin}, nil
}

// EnsureUser creates the account unless the username is taken.
func (s *Service) EnsureUser(ctx context.Context, username, password string, isAdmin bool) (bool, error) {
	hash, err := s.HashPassword(password)
	if err != nil {
		return false, err
	}
	created, err := s.userRepo.CreateIfAbsent(ctx, &userDatamodel.User{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	})
	if err != nil {
		return false, fmt.Errorf("auth: create user %s: %w", username, err)
	}
	return created, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(username string) (string, time.Time, error) {
	now := j.now()
	expiresAt := now.Add(j.AccessTokenTTL)

	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.AccessTokenSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.AccessTokenSecret, nil
	}, jwt.WithTimeFunc(j.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.Username != "" {
		return claims, nil
	}

	return nil, internal.ErrInvalidToken
}
