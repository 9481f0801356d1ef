package services

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fileshare-api/internal/application/ports"
	"fileshare-api/internal/domain/user"
	"fileshare-api/internal/infrastructure/jwt"
)

var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrFailedToGenerateToken = errors.New("failed to generate token")
)

type AuthService struct {
	jwtService *jwt.Service
	tokenTTL   time.Duration
}

func NewAuthService(
	jwtService *jwt.Service,
	tokenTTL time.Duration,
) ports.Auth {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthService{
		jwtService: jwtService,
		tokenTTL:   tokenTTL,
	}
}

func (as *AuthService) GenerateToken(u *user.User, requestPassword string) (string, error) {
	if u == nil || u.PasswordHash == nil {
		return "", ErrInvalidCredentials
	}
	err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(requestPassword))
	if err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := as.jwtService.GenerateJWT(u.UUID.String(), u.Role, as.tokenTTL)
	if err != nil {
		return "", ErrFailedToGenerateToken
	}

	return token, nil
}
