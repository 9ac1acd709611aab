package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/njprem/Joestate_APP_BackEnd/internal/domain"
	"github.com/njprem/Joestate_APP_BackEnd/internal/repository/ports"
)

type FavoriteService struct {
	favorites ports.FavoriteRepository
	listings  ports.ListingRepository
	users     ports.UserRepository
	uow       ports.UnitOfWork
}

func NewFavoriteService(favoriteRepo ports.FavoriteRepository, listingRepo ports.ListingRepository, userRepo ports.UserRepository, uow ports.UnitOfWork) *FavoriteService {
	return &FavoriteService{
		favorites: favoriteRepo,
		listings:  listingRepo,
		users:     userRepo,
		uow:       uow,
	}
}

// IDsFavoritedBy returns the caller's favorite listing ids. Anonymous callers
// get an empty set.
func (s *FavoriteService) IDsFavoritedBy(ctx context.Context, caller *domain.Caller) (domain.FavoriteSet, error) {
	ids, err := s.FavoriteIDs(ctx, caller)
	if err != nil {
		return nil, err
	}
	return domain.NewFavoriteSet(ids...), nil
}

// FavoriteIDs lists the caller's favorites, most recently added first.
func (s *FavoriteService) FavoriteIDs(ctx context.Context, caller *domain.Caller) ([]uuid.UUID, error) {
	if caller.IsAnonymous() {
		return []uuid.UUID{}, nil
	}
	ids, err := s.favorites.ListListingIDs(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: list favorites: %w", ErrStorageFailure, err)
	}
	return ids, nil
}

// Toggle flips the favorite state of (caller, listing) and returns the new
// state. Concurrent toggles of the same pair are serialised by the pair lock.
func (s *FavoriteService) Toggle(ctx context.Context, caller *domain.Caller, listingID uuid.UUID) (bool, error) {
	if caller.IsAnonymous() {
		return false, ErrUnauthenticated
	}

	var favorited bool
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.favorites.Lock(ctx, caller.UserID, listingID); err != nil {
			return fmt.Errorf("%w: lock favorite: %w", ErrStorageFailure, err)
		}

		removed, err := s.favorites.Remove(ctx, caller.UserID, listingID)
		if err != nil {
			return fmt.Errorf("%w: remove favorite: %w", ErrStorageFailure, err)
		}
		if removed {
			favorited = false
			return nil
		}

		if _, err := s.users.FindByID(ctx, caller.UserID); err != nil {
			if isNotFound(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("%w: load user: %w", ErrStorageFailure, err)
		}
		if _, err := s.listings.FindByID(ctx, listingID); err != nil {
			if isNotFound(err) {
				return ErrListingNotFound
			}
			return fmt.Errorf("%w: load listing: %w", ErrStorageFailure, err)
		}

		if _, err := s.favorites.Add(ctx, caller.UserID, listingID); err != nil {
			switch {
			case isForeignKeyViolation(err):
				return ErrListingNotFound
			case isNotFound(err), isUniqueViolation(err):
				// pair already present
			default:
				return fmt.Errorf("%w: add favorite: %w", ErrStorageFailure, err)
			}
		}
		favorited = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return favorited, nil
}
