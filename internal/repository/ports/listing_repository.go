package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/Joestate_APP_BackEnd/internal/domain"
)

// ListingRepository is the durable listing table. Query applies only the
// predicate it is given; callers add status scoping themselves.
//
// Delete removes the listing together with its images and favorite entries.
// No route deletes listings yet; the method pins down the cascade contract
// every implementation must honour.
type ListingRepository interface {
	Create(ctx context.Context, listing domain.Listing) (*domain.Listing, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	Query(ctx context.Context, query domain.ListingQuery) ([]domain.Listing, error)
	DistinctLocations(ctx context.Context, substring string, limit int) ([]string, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ListingImageRepository interface {
	CreateMany(ctx context.Context, images []domain.ListingImage) error
	ListByListingIDs(ctx context.Context, listingIDs []uuid.UUID) (map[uuid.UUID][]domain.ListingImage, error)
}
