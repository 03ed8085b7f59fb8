package identity

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the status of a user account
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusLocked      UserStatus = "locked"
	UserStatusDeactivated UserStatus = "deactivated"
)

// Password cost for bcrypt
const bcryptCost = 12

// resetTokenTTL is how long a forgotten-password token stays valid
const resetTokenTTL = time.Hour

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User represents a storefront customer account.
// It is the aggregate root for identity operations.
type User struct {
	shared.BaseEntity
	Email             string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash      string     `gorm:"type:varchar(255);not null"`
	Name              string     `gorm:"type:varchar(100)"`
	Lastname          string     `gorm:"type:varchar(100)"`
	Status            UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt       *time.Time
	FailedAttempts    int `gorm:"not null;default:0"`
	LockedUntil       *time.Time
	ResetToken        string `gorm:"type:varchar(64);index"`
	ResetTokenExpires *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new active user account
func NewUser(email, password, name, lastname string) (*User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(name),
		Lastname:     strings.TrimSpace(lastname),
		Status:       UserStatusActive,
	}, nil
}

// DisplayName returns the user's full name, falling back to the email
func (u *User) DisplayName() string {
	full := strings.TrimSpace(u.Name + " " + u.Lastname)
	if full != "" {
		return full
	}
	return u.Email
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword verifies the old password before setting a new one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return u.SetPassword(newPassword)
}

// SetPassword replaces the password without verifying the old one.
// Used by the forgotten-password flow after token validation.
func (u *User) SetPassword(newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = passwordHash
	u.Touch()
	return nil
}

// CreateResetToken issues a new forgotten-password token, replacing any
// previous one. The token is returned in plain form for delivery.
func (u *User) CreateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", shared.NewDomainError("TOKEN_GENERATION_ERROR", "Failed to generate reset token")
	}
	token := hex.EncodeToString(buf)
	expires := time.Now().Add(resetTokenTTL)
	u.ResetToken = token
	u.ResetTokenExpires = &expires
	u.Touch()
	return token, nil
}

// ResetPasswordWithToken consumes a valid reset token and sets a new password
func (u *User) ResetPasswordWithToken(token, newPassword string) error {
	if u.ResetToken == "" || u.ResetToken != token {
		return shared.NewDomainError("INVALID_RESET_TOKEN", "Reset token is invalid")
	}
	if u.ResetTokenExpires == nil || time.Now().After(*u.ResetTokenExpires) {
		return shared.NewDomainError("EXPIRED_RESET_TOKEN", "Reset token has expired")
	}
	if err := u.SetPassword(newPassword); err != nil {
		return err
	}
	u.ResetToken = ""
	u.ResetTokenExpires = nil
	return nil
}

// RecordLoginSuccess resets the failure counter and stamps the login time
func (u *User) RecordLoginSuccess() {
	now := time.Now()
	u.LastLoginAt = &now
	u.FailedAttempts = 0
	u.LockedUntil = nil
	if u.Status == UserStatusLocked {
		u.Status = UserStatusActive
	}
	u.Touch()
}

// RecordLoginFailure increments the failure counter and locks the account
// once maxAttempts is reached. Returns true if the account was locked.
func (u *User) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	u.FailedAttempts++
	u.Touch()
	if u.FailedAttempts >= maxAttempts {
		until := time.Now().Add(lockDuration)
		u.LockedUntil = &until
		u.Status = UserStatusLocked
		return true
	}
	return false
}

// IsLocked returns whether the account is currently locked
func (u *User) IsLocked() bool {
	if u.Status != UserStatusLocked {
		return false
	}
	if u.LockedUntil != nil && time.Now().After(*u.LockedUntil) {
		return false
	}
	return true
}

// IsDeactivated returns whether the account was manually deactivated
func (u *User) IsDeactivated() bool {
	return u.Status == UserStatusDeactivated
}

// CanLogin returns whether the account may authenticate right now
func (u *User) CanLogin() bool {
	return !u.IsLocked() && !u.IsDeactivated()
}

// Deactivate disables the account
func (u *User) Deactivate() {
	u.Status = UserStatusDeactivated
	u.Touch()
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 255 || !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	return nil
}

// ValidatePassword enforces the minimum password policy
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt input limit
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
