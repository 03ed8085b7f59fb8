package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// fakeUserRepo is an in-memory identity.UserRepository
type fakeUserRepo struct {
	users map[uuid.UUID]*identity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*identity.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	if user, ok := r.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*identity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) FindByResetToken(_ context.Context, token string) (*identity.User, error) {
	for _, user := range r.users {
		if user.ResetToken != "" && user.ResetToken == token {
			copied := *user
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeUserRepo) Save(_ context.Context, user *identity.User) error {
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *identity.User) error {
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-jwt-signing-32ch",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "storefront-backend",
	})
	svc := NewAuthService(repo, jwtService, auth.NewInMemoryTokenBlacklist(), DefaultAuthServiceConfig(), nil)
	return svc, repo
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestAuthService(t)

	t.Run("creates account and signs in", func(t *testing.T) {
		result, err := svc.Register(ctx, RegisterInput{
			Email:    "ana@example.com",
			Password: "correct-horse-battery",
			Name:     "Ana",
			Lastname: "Diaz",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, "ana@example.com", result.User.Email)
		assert.Len(t, repo.users, 1)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{
			Email:    "ana@example.com",
			Password: "another-password",
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMAIL_TAKEN", domainErr.Code)
	})

	t.Run("rejects weak password", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{
			Email:    "bob@example.com",
			Password: "short",
		})
		assert.Error(t, err)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestAuthService(t)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "ana@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		result, err := svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "correct-horse-battery"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)

		user, err := repo.FindByEmail(ctx, "ana@example.com")
		require.NoError(t, err)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("unknown email yields the same error as wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever"})
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("locks account after repeated failures", func(t *testing.T) {
		for i := 0; i < DefaultAuthServiceConfig().MaxLoginAttempts; i++ {
			_, _ = svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "wrong"})
		}

		_, err := svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "correct-horse-battery"})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_LOCKED", domainErr.Code)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	login, err := svc.Register(ctx, RegisterInput{
		Email:    "ana@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	t.Run("valid refresh token yields a new pair", func(t *testing.T) {
		result, err := svc.Refresh(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
	})

	t.Run("access token is rejected", func(t *testing.T) {
		_, err := svc.Refresh(ctx, RefreshTokenInput{RefreshToken: login.AccessToken})
		assert.Error(t, err)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := svc.Refresh(ctx, RefreshTokenInput{RefreshToken: "garbage"})
		assert.Error(t, err)
	})
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	login, err := svc.Register(ctx, RegisterInput{
		Email:    "ana@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	claims, err := svc.jwtService.ValidateRefreshToken(login.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, LogoutInput{TokenJTI: claims.ID, TokenTTL: claims.GetRemainingTTL()}))

	_, err = svc.Refresh(ctx, RefreshTokenInput{RefreshToken: login.RefreshToken})
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	login, err := svc.Register(ctx, RegisterInput{
		Email:    "ana@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	t.Run("wrong current password rejected", func(t *testing.T) {
		err := svc.ChangePassword(ctx, ChangePasswordInput{
			UserID:      login.User.ID,
			OldPassword: "wrong",
			NewPassword: "a-brand-new-password",
		})
		assert.Error(t, err)
	})

	t.Run("changes and allows login with the new password", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, ChangePasswordInput{
			UserID:      login.User.ID,
			OldPassword: "correct-horse-battery",
			NewPassword: "a-brand-new-password",
		}))

		_, err := svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "a-brand-new-password"})
		assert.NoError(t, err)
	})
}

func TestForgottenPasswordFlow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "ana@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	t.Run("unknown email is silently accepted", func(t *testing.T) {
		token, err := svc.CreateForgottenPassword(ctx, ForgottenPasswordInput{Email: "nobody@example.com"})
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("token resets the password once", func(t *testing.T) {
		token, err := svc.CreateForgottenPassword(ctx, ForgottenPasswordInput{Email: "ana@example.com"})
		require.NoError(t, err)
		require.NotEmpty(t, token)

		require.NoError(t, svc.ResetForgottenPassword(ctx, ResetPasswordInput{
			Token:       token,
			NewPassword: "a-fresh-new-password",
		}))

		_, err = svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "a-fresh-new-password"})
		require.NoError(t, err)

		// the token is single-use
		err = svc.ResetForgottenPassword(ctx, ResetPasswordInput{
			Token:       token,
			NewPassword: "yet-another-password",
		})
		assert.Error(t, err)
	})
}
