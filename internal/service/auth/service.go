// Package auth implements the single-operator login gate: one credential
// pair from configuration, session continuity via a signed token.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/MCTHIAS/CathPed/internal/config"
	"github.com/MCTHIAS/CathPed/internal/model"
	apperrors "github.com/MCTHIAS/CathPed/pkg/errors"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	cfg config.AuthConfig
}

func NewService(cfg config.AuthConfig) *Service {
	return &Service{cfg: cfg}
}

// Login checks the operator credentials and issues a session token.
func (s *Service) Login(ctx context.Context, username, password string) (*model.TokenResponse, error) {
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Username)) != 1 {
		return nil, apperrors.Unauthorized(ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized(ErrInvalidCredentials)
	}

	expiresAt := time.Now().Add(s.cfg.TokenExpiry())
	claims := jwt.MapClaims{
		"sub": username,
		"iat": time.Now().Unix(),
		"exp": expiresAt.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &model.TokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// ValidateToken checks a session token and returns the operator name.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return "", apperrors.Unauthorized(fmt.Errorf("invalid token: %w", err))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", apperrors.Unauthorized(errors.New("invalid token claims"))
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", apperrors.Unauthorized(errors.New("missing subject claim"))
	}
	return sub, nil
}
