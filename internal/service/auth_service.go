package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/njprem/Joestate_APP_BackEnd/internal/domain"
	"github.com/njprem/Joestate_APP_BackEnd/internal/repository/ports"
	"github.com/njprem/Joestate_APP_BackEnd/internal/util"
)

type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber *string
}

type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users ports.UserRepository
	jwt   *util.JWTManager
}

func NewAuthService(users ports.UserRepository, jwtManager *util.JWTManager) *AuthService {
	return &AuthService{users: users, jwt: jwtManager}
}

// Register creates an account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", ErrUserValidation)
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUserValidation, err)
	}

	if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("%w: lookup email: %w", ErrStorageFailure, err)
	}

	hash, salt, err := util.DerivePassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, domain.User{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PhoneNumber:  trimOptional(input.PhoneNumber),
		Role:         domain.UserRoleUser,
		PasswordHash: hash,
		PasswordSalt: salt,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("%w: create user: %w", ErrStorageFailure, err)
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" || password == "" {
		return nil, ErrInvalidCredential
	}
	user, err := s.users.FindByEmail(ctx, normalized)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("%w: lookup user: %w", ErrStorageFailure, err)
	}
	if !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredential
	}
	return s.issue(user)
}

// Identify resolves a bearer token into the caller it was issued for. The
// user must still exist.
func (s *AuthService) Identify(ctx context.Context, token string) (*domain.Caller, error) {
	claims, err := s.jwt.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("%w: load user: %w", ErrStorageFailure, err)
	}
	return &domain.Caller{UserID: user.ID, Email: user.Email}, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.jwt.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrUserValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email address", ErrUserValidation)
	}
	return email, nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
