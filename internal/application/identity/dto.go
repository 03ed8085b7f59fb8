package identity

import (
	"time"

	"github.com/google/uuid"
)

// RegisterInput contains the input for account creation
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Lastname string
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo contains basic user information returned to the client
type UserInfo struct {
	ID       uuid.UUID
	Email    string
	Name     string
	Lastname string
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	TokenJTI string        // JWT ID for blacklisting
	TokenTTL time.Duration // Remaining token lifetime
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// ForgottenPasswordInput starts the password reset flow
type ForgottenPasswordInput struct {
	Email string
}

// ResetPasswordInput completes the password reset flow
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}
