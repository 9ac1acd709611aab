package http

import (
	"time"

	"github.com/njprem/Joestate_APP_BackEnd/internal/domain"
	"github.com/njprem/Joestate_APP_BackEnd/internal/service"
)

// RegisterRequest carries the account fields for email registration.
type RegisterRequest struct {
	Email       string  `json:"email" example:"owner@example.com"`
	Password    string  `json:"password" example:"villa4sale"`
	FirstName   string  `json:"first_name" example:"Joe"`
	LastName    string  `json:"last_name" example:"State"`
	PhoneNumber *string `json:"phone_number,omitempty" example:"+20 100 000 0000"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"owner@example.com"`
	Password string `json:"password" example:"villa4sale"`
}

// AuthUser is the account summary returned next to a token.
type AuthUser struct {
	ID                string          `json:"id"`
	Email             string          `json:"email"`
	FirstName         string          `json:"first_name"`
	LastName          string          `json:"last_name"`
	Role              domain.UserRole `json:"role"`
	ProfilePictureURL *string         `json:"profile_picture_url,omitempty"`
}

type AuthTokenResponse struct {
	Token     string   `json:"token"`
	ExpiresAt string   `json:"expires_at"`
	User      AuthUser `json:"user"`
}

func toAuthTokenResponse(result *service.AuthResult) AuthTokenResponse {
	return AuthTokenResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
		User: AuthUser{
			ID:                result.User.ID.String(),
			Email:             result.User.Email,
			FirstName:         result.User.FirstName,
			LastName:          result.User.LastName,
			Role:              result.User.Role,
			ProfilePictureURL: result.User.ProfilePictureURL,
		},
	}
}
