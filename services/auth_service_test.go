package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthLoginAndValidate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("lerner"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	svc := NewAuthService(string(hash), "secret", time.Hour)

	token, expiresAt, err := svc.Login(context.Background(), "lerner")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if time.Until(expiresAt) < 59*time.Minute {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}
	if err := svc.ValidateToken(token); err != nil {
		t.Fatalf("token rejected: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := NewAuthService(string(hash), "other", time.Hour).ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token signed with another secret must be rejected, got %v", err)
	}
}

func TestAuthRejectsExpiredAndForeignTokens(t *testing.T) {
	svc := NewAuthService("", "secret", time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": RoleAdmin,
		"exp":  time.Now().Add(-time.Minute).Unix(),
	})
	s, _ := expired.SignedString([]byte("secret"))
	if err := svc.ValidateToken(s); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}

	visitor := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "visitor",
		"exp":  time.Now().Add(time.Minute).Unix(),
	})
	s, _ = visitor.SignedString([]byte("secret"))
	if err := svc.ValidateToken(s); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected non-admin token to be rejected, got %v", err)
	}
}

func TestAuthNotConfigured(t *testing.T) {
	svc := NewAuthService("", "", time.Hour)
	if _, _, err := svc.Login(context.Background(), "x"); !errors.Is(err, ErrAuthNotConfigured) {
		t.Fatalf("expected ErrAuthNotConfigured, got %v", err)
	}
	if err := svc.ValidateToken("x"); !errors.Is(err, ErrAuthNotConfigured) {
		t.Fatalf("expected ErrAuthNotConfigured, got %v", err)
	}
}
