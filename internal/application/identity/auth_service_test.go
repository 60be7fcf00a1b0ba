package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orders/backend/internal/domain/shared"
	"github.com/orders/backend/internal/infrastructure/auth"
	"github.com/orders/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-for-unit-tests",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "orders-test",
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	active := newTestUser(1, "buyer@mailserver.org", "strong_password", true)
	inactive := newTestUser(2, "new@mailserver.org", "strong_password", false)

	tests := []struct {
		name     string
		email    string
		password string
		setup    func(m *MockUserRepository)
		wantErr  error
	}{
		{
			name:     "success",
			email:    "buyer@mailserver.org",
			password: "strong_password",
			setup: func(m *MockUserRepository) {
				m.On("FindByEmail", ctx, "buyer@mailserver.org").Return(active, nil)
			},
		},
		{
			name:     "unknown email",
			email:    "nobody@mailserver.org",
			password: "strong_password",
			setup: func(m *MockUserRepository) {
				m.On("FindByEmail", ctx, "nobody@mailserver.org").Return(nil, shared.ErrNotFound)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "buyer@mailserver.org",
			password: "bad_password",
			setup: func(m *MockUserRepository) {
				m.On("FindByEmail", ctx, "buyer@mailserver.org").Return(active, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "inactive account",
			email:    "new@mailserver.org",
			password: "strong_password",
			setup: func(m *MockUserRepository) {
				m.On("FindByEmail", ctx, "new@mailserver.org").Return(inactive, nil)
			},
			wantErr: ErrAccountInactive,
		},
		{
			name:     "inactive account with wrong password hides state",
			email:    "new@mailserver.org",
			password: "bad_password",
			setup: func(m *MockUserRepository) {
				m.On("FindByEmail", ctx, "new@mailserver.org").Return(inactive, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setup(repo)
			svc := NewAuthService(repo, newTestJWT(), auth.NewInMemoryTokenBlacklist())

			res, err := svc.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, res.Token)
			assert.Equal(t, uint64(1), res.User.ID)
			assert.WithinDuration(t, time.Now().Add(15*time.Minute), res.ExpiresAt, 5*time.Second)
		})
	}
}

func TestAuthService_AuthenticateAndLogout(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	repo.On("FindByEmail", ctx, "buyer@mailserver.org").
		Return(newTestUser(1, "buyer@mailserver.org", "strong_password", true), nil)
	svc := NewAuthService(repo, newTestJWT(), auth.NewInMemoryTokenBlacklist())

	res, err := svc.Login(ctx, "buyer@mailserver.org", "strong_password")
	require.NoError(t, err)

	p, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), p.UserID)
	assert.True(t, p.IsBuyer())
	assert.False(t, p.IsShop())
	assert.NotEmpty(t, p.TokenID)

	require.NoError(t, svc.Logout(ctx, p))

	_, err = svc.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, auth.ErrTokenBlacklisted)
}

func TestAuthService_Authenticate_Errors(t *testing.T) {
	ctx := context.Background()
	jwtSvc := newTestJWT()
	issued, err := jwtSvc.GenerateToken(5, "shop")
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		svc := NewAuthService(new(MockUserRepository), jwtSvc, new(MockTokenBlacklist))
		_, err := svc.Authenticate(ctx, "not-a-jwt")
		assert.Error(t, err)
	})

	t.Run("user invalidated", func(t *testing.T) {
		bl := new(MockTokenBlacklist)
		bl.On("IsBlacklisted", ctx, mock.Anything).Return(false, nil)
		bl.On("IsUserTokenInvalidated", ctx, uint64(5), mock.Anything).Return(true, nil)
		svc := NewAuthService(new(MockUserRepository), jwtSvc, bl)

		_, err := svc.Authenticate(ctx, issued.Token)
		assert.ErrorIs(t, err, auth.ErrTokenBlacklisted)
	})

	t.Run("blacklist unavailable", func(t *testing.T) {
		bl := new(MockTokenBlacklist)
		bl.On("IsBlacklisted", ctx, mock.Anything).Return(false, errors.New("redis down"))
		svc := NewAuthService(new(MockUserRepository), jwtSvc, bl)

		_, err := svc.Authenticate(ctx, issued.Token)
		assert.EqualError(t, err, "redis down")
	})

	t.Run("shop principal", func(t *testing.T) {
		svc := NewAuthService(new(MockUserRepository), jwtSvc, auth.NewInMemoryTokenBlacklist())
		p, err := svc.Authenticate(ctx, issued.Token)
		require.NoError(t, err)
		assert.True(t, p.IsShop())
		assert.Equal(t, issued.ExpiresAt.Unix(), p.ExpiresAt.Unix())
	})
}
