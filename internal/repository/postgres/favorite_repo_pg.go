package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/Joestate_APP_BackEnd/internal/domain"
	"github.com/njprem/Joestate_APP_BackEnd/internal/repository/ports"
)

type FavoriteRepository struct {
	db *sqlx.DB
}

func NewFavoriteRepo(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Lock takes a transaction scoped advisory lock keyed on the pair. Outside a
// transaction the lock is released as soon as the statement finishes.
func (r *FavoriteRepository) Lock(ctx context.Context, userID, listingID uuid.UUID) error {
	const query = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`
	_, err := executor(ctx, r.db).ExecContext(ctx, query, userID.String()+":"+listingID.String())
	return err
}

func (r *FavoriteRepository) Add(ctx context.Context, userID, listingID uuid.UUID) (*domain.Favorite, error) {
	const query = `
		INSERT INTO favorite_list (user_id, listing_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, listing_id) DO NOTHING
		RETURNING user_id, listing_id, created_at
	`

	var favorite domain.Favorite
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &favorite, query, userID, listingID); err != nil {
		return nil, err
	}
	return &favorite, nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	const query = `
		DELETE FROM favorite_list
		WHERE user_id = $1 AND listing_id = $2
	`
	result, err := executor(ctx, r.db).ExecContext(ctx, query, userID, listingID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *FavoriteRepository) ListListingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	const query = `
		SELECT listing_id
		FROM favorite_list
		WHERE user_id = $1
		ORDER BY created_at DESC, listing_id
	`
	ids := make([]uuid.UUID, 0)
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &ids, query, userID); err != nil {
		return nil, err
	}
	return ids, nil
}

var _ ports.FavoriteRepository = (*FavoriteRepository)(nil)
