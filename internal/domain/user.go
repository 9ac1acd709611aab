package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser    UserRole = "user"
	UserRoleAdmin   UserRole = "admin"
	UserRolePremium UserRole = "premium"
)

type User struct {
	ID                uuid.UUID `db:"id" json:"id"`
	Email             string    `db:"email" json:"email"`
	FirstName         string    `db:"first_name" json:"first_name"`
	LastName          string    `db:"last_name" json:"last_name"`
	PhoneNumber       *string   `db:"phone_number" json:"phone_number,omitempty"`
	Bio               *string   `db:"bio" json:"bio,omitempty"`
	ProfilePictureURL *string   `db:"profile_picture_url" json:"profile_picture_url,omitempty"`
	Role              UserRole  `db:"role" json:"role"`
	PasswordHash      []byte    `db:"password_hash" json:"-"`
	PasswordSalt      []byte    `db:"password_salt" json:"-"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserProfileUpdate lists the profile fields a user may change. nil means
// leave unchanged.
type UserProfileUpdate struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Bio         *string
	Email       *string
	OldPassword *string
	NewPassword *string
}

// Caller is the authenticated identity a request runs on behalf of. A nil
// *Caller is an anonymous visitor.
type Caller struct {
	UserID uuid.UUID
	Email  string
}

func (c *Caller) IsAnonymous() bool {
	return c == nil || c.UserID == uuid.Nil
}

// PublicProfile is what other users see of an account. Email stays private.
type PublicProfile struct {
	ID                uuid.UUID `json:"id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	PhoneNumber       *string   `json:"phone_number,omitempty"`
	Bio               *string   `json:"bio,omitempty"`
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:                u.ID,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		PhoneNumber:       u.PhoneNumber,
		Bio:               u.Bio,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}
