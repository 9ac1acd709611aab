package domain

import (
	"time"

	"github.com/google/uuid"
)

type Favorite struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ListingID uuid.UUID `db:"listing_id" json:"listing_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FavoriteSet is the set of listing ids a caller has favorited.
type FavoriteSet map[uuid.UUID]struct{}

func NewFavoriteSet(ids ...uuid.UUID) FavoriteSet {
	set := make(FavoriteSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s FavoriteSet) Has(id uuid.UUID) bool {
	if s == nil {
		return false
	}
	_, ok := s[id]
	return ok
}
