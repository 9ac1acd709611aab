package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/Joestate_APP_BackEnd/internal/domain"
	"github.com/njprem/Joestate_APP_BackEnd/internal/media"
	"github.com/njprem/Joestate_APP_BackEnd/internal/repository/ports"
	"github.com/njprem/Joestate_APP_BackEnd/internal/util"
)

const defaultMaxAvatarBytes = int64(2 * 1024 * 1024)

type UserService struct {
	users          ports.UserRepository
	storage        ports.ObjectStorage
	avatarBucket   string
	maxAvatarBytes int64
	now            func() time.Time
	logger         *slog.Logger
}

func NewUserService(users ports.UserRepository, storage ports.ObjectStorage, avatarBucket string, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:          users,
		storage:        storage,
		avatarBucket:   strings.TrimSpace(avatarBucket),
		maxAvatarBytes: defaultMaxAvatarBytes,
		now:            time.Now,
		logger:         logger,
	}
}

func (s *UserService) GetProfile(ctx context.Context, caller *domain.Caller) (*domain.User, error) {
	if caller.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	return s.load(ctx, caller.UserID)
}

func (s *UserService) GetPublicProfile(ctx context.Context, id uuid.UUID) (*domain.PublicProfile, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := user.Public()
	return &profile, nil
}

// UpdateProfile applies the non-nil fields of update. Changing the password
// requires the current one.
func (s *UserService) UpdateProfile(ctx context.Context, caller *domain.Caller, update domain.UserProfileUpdate) (*domain.User, error) {
	if caller.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	user, err := s.load(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	if update.FirstName != nil {
		name := strings.TrimSpace(*update.FirstName)
		if name == "" {
			return nil, fmt.Errorf("%w: first name cannot be blank", ErrUserValidation)
		}
		user.FirstName = name
	}
	if update.LastName != nil {
		name := strings.TrimSpace(*update.LastName)
		if name == "" {
			return nil, fmt.Errorf("%w: last name cannot be blank", ErrUserValidation)
		}
		user.LastName = name
	}
	if update.PhoneNumber != nil {
		user.PhoneNumber = trimOptional(update.PhoneNumber)
	}
	if update.Bio != nil {
		user.Bio = trimOptional(update.Bio)
	}

	if update.Email != nil {
		email, err := normalizeEmail(*update.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			existing, err := s.users.FindByEmail(ctx, email)
			switch {
			case err == nil && existing != nil && existing.ID != user.ID:
				return nil, ErrEmailTaken
			case err != nil && !isNotFound(err):
				return nil, fmt.Errorf("%w: lookup email: %w", ErrStorageFailure, err)
			}
			user.Email = email
		}
	}

	if update.NewPassword != nil && *update.NewPassword != "" {
		if update.OldPassword == nil || *update.OldPassword == "" {
			return nil, fmt.Errorf("%w: current password is required to set a new one", ErrUserValidation)
		}
		if !util.VerifyPassword(*update.OldPassword, user.PasswordSalt, user.PasswordHash) {
			return nil, fmt.Errorf("%w: current password is incorrect", ErrUserValidation)
		}
		if err := util.ValidatePassword(*update.NewPassword); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUserValidation, err)
		}
		hash, salt, err := util.DerivePassword(*update.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
		user.PasswordSalt = salt
	}

	updated, err := s.users.UpdateProfile(ctx, *user)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, ErrEmailTaken
		case isNotFound(err):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: update profile: %w", ErrStorageFailure, err)
	}
	return updated, nil
}

// UploadAvatar stores a new profile picture and points the account at it.
func (s *UserService) UploadAvatar(ctx context.Context, caller *domain.Caller, upload ImageUpload) (*domain.User, error) {
	if caller.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	if upload.Reader == nil || upload.Size <= 0 {
		return nil, fmt.Errorf("%w: profile picture is required", ErrUserValidation)
	}
	if upload.Size > s.maxAvatarBytes {
		return nil, fmt.Errorf("%w: profile picture exceeds size limit (%d bytes)", ErrUserValidation, s.maxAvatarBytes)
	}
	if _, err := s.load(ctx, caller.UserID); err != nil {
		return nil, err
	}

	data, info, err := media.Inspect(io.LimitReader(upload.Reader, s.maxAvatarBytes+1))
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedImage) {
			return nil, fmt.Errorf("%w: %v", ErrUserValidation, err)
		}
		return nil, err
	}
	if int64(len(data)) > s.maxAvatarBytes {
		return nil, fmt.Errorf("%w: profile picture exceeds size limit (%d bytes)", ErrUserValidation, s.maxAvatarBytes)
	}

	objectKey := fmt.Sprintf("avatars/%s/%s%s", caller.UserID.String(), s.now().UTC().Format("20060102T150405Z0700"), info.Extension)
	url, err := s.storage.Upload(ctx, s.avatarBucket, objectKey, info.ContentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: upload avatar: %w", ErrStorageFailure, err)
	}

	user, err := s.users.UpdateAvatar(ctx, caller.UserID, url)
	if err != nil {
		if delErr := s.storage.Delete(ctx, s.avatarBucket, objectKey); delErr != nil {
			s.logger.Warn("could not remove orphaned avatar",
				slog.String("object_key", objectKey),
				slog.String("error", delErr.Error()))
		}
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: save avatar: %w", ErrStorageFailure, err)
	}
	return user, nil
}

func (s *UserService) load(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: load user: %w", ErrStorageFailure, err)
	}
	return user, nil
}
