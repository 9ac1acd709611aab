package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/Joestate_APP_BackEnd/internal/domain"
)

type FavoriteRepository interface {
	// Lock serialises toggles of one (user, listing) pair until the surrounding
	// transaction ends.
	Lock(ctx context.Context, userID, listingID uuid.UUID) error
	Add(ctx context.Context, userID, listingID uuid.UUID) (*domain.Favorite, error)
	// Remove reports whether an entry existed.
	Remove(ctx context.Context, userID, listingID uuid.UUID) (bool, error)
	ListListingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}
