package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/roksva123/go-planning-backend/internal/model"
)

type fakeAdmins struct {
	admins map[string]*model.Admin
	err    error
}

func (f *fakeAdmins) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.admins[username]
	if !ok {
		return nil, model.ErrNotFound
	}
	return a, nil
}

func newTestAuth(t *testing.T) (*AuthService, *fakeAdmins) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	admins := &fakeAdmins{admins: map[string]*model.Admin{
		"admin": {ID: "a-1", Username: "admin", PasswordHash: string(hash)},
	}}
	return NewAuthService(admins, "test-key"), admins
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuth(t)
	now := time.Now().Truncate(time.Second)
	svc.now = func() time.Time { return now }

	resp, err := svc.Login(context.Background(), "admin", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, now.Add(12*time.Hour).Unix(), resp.ExpiresAt)

	token, err := jwt.Parse(resp.Token, func(t *jwt.Token) (any, error) {
		return []byte("test-key"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "a-1", claims["sub"])
	assert.Equal(t, "admin", claims["username"])
	assert.Equal(t, float64(now.Unix()), claims["iat"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, admins := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	admins.err = errors.New("db down")
	_, err = svc.Login(ctx, "admin", "s3cret")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}
