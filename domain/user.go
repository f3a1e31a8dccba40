package domain

import (
	"strings"
	"time"
)

const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"

	MaxNameLength     = 50
	MinPasswordLength = 6
)

// User represents an authenticated identity in the platform.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type registrationRules struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
}

type nameRules struct {
	Name string `json:"name" validate:"required,max=50"`
}

// ValidateRegistration checks sign-up input. The password is checked in
// clear text before it is hashed.
func ValidateRegistration(name, email, password string) error {
	return check(registrationRules{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: password,
	})
}

// ValidateName checks a display name on its own.
func ValidateName(name string) error {
	return check(nameRules{Name: strings.TrimSpace(name)})
}
