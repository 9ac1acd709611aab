package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/Joestate_APP_BackEnd/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.User, error)
	UpdateProfile(ctx context.Context, user domain.User) (*domain.User, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, url string) (*domain.User, error)
}
