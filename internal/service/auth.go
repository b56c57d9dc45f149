package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/roksva123/go-planning-backend/internal/model"
)

const tokenTTL = 12 * time.Hour

// ErrInvalidCredentials hides whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("username or password is incorrect")

type AdminStore interface {
	GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error)
}

type AuthService struct {
	repo   AdminStore
	jwtKey []byte
	now    func() time.Time
}

func NewAuthService(repo AdminStore, jwtKey string) *AuthService {
	return &AuthService{repo: repo, jwtKey: []byte(jwtKey), now: time.Now}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (model.LoginResponse, error) {
	admin, err := s.repo.GetAdminByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		return model.LoginResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.LoginResponse{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return model.LoginResponse{}, ErrInvalidCredentials
	}

	now := s.now()
	exp := now.Add(tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      admin.ID,
		"username": admin.Username,
		"iat":      now.Unix(),
		"exp":      exp.Unix(),
	})

	tokenStr, err := token.SignedString(s.jwtKey)
	if err != nil {
		return model.LoginResponse{}, err
	}
	return model.LoginResponse{Token: tokenStr, ExpiresAt: exp.Unix()}, nil
}

// HashPassword returns the bcrypt hash stored for an admin.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
