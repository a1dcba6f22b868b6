package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin    = "admin"
	jwtClaimRole = "role"
)

// AuthService обменивает общий пароль администратора на короткоживущий токен.
// Это не граница безопасности, а защита от случайных нажатий.
type AuthService interface {
	Login(ctx context.Context, passcode string) (string, time.Time, error)
	ValidateToken(tokenString string) error
}

type authService struct {
	passcodeHash []byte
	jwtSecret    []byte
	tokenTTL     time.Duration
	now          func() time.Time
}

func NewAuthService(passcodeHash, jwtSecret string, tokenTTL time.Duration) AuthService {
	return &authService{
		passcodeHash: []byte(passcodeHash),
		jwtSecret:    []byte(jwtSecret),
		tokenTTL:     tokenTTL,
		now:          time.Now,
	}
}

func (s *authService) Login(ctx context.Context, passcode string) (string, time.Time, error) {
	if len(s.passcodeHash) == 0 || len(s.jwtSecret) == 0 {
		return "", time.Time{}, ErrAuthNotConfigured
	}

	err := bcrypt.CompareHashAndPassword(s.passcodeHash, []byte(passcode))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, fmt.Errorf("failed to compare passcode hash: %w", err)
	}

	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := jwt.MapClaims{
		jwtClaimRole: RoleAdmin,
		"exp":        expiresAt.Unix(),
		"iat":        now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

func (s *authService) ValidateToken(tokenString string) error {
	if len(s.jwtSecret) == 0 {
		return ErrAuthNotConfigured
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}

	role, _ := claims[jwtClaimRole].(string)
	if role != RoleAdmin {
		return ErrInvalidToken
	}
	return nil
}
