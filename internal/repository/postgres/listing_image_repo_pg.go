package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/Joestate_APP_BackEnd/internal/domain"
	"github.com/njprem/Joestate_APP_BackEnd/internal/repository/ports"
)

type ListingImageRepository struct {
	db *sqlx.DB
}

func NewListingImageRepo(db *sqlx.DB) *ListingImageRepository {
	return &ListingImageRepository{db: db}
}

func (r *ListingImageRepository) CreateMany(ctx context.Context, images []domain.ListingImage) error {
	if len(images) == 0 {
		return nil
	}
	const query = `
		INSERT INTO listing_image (listing_id, url, object_key, is_main, position)
		VALUES (:listing_id, :url, :object_key, :is_main, :position)
	`

	ext := executor(ctx, r.db)
	for _, image := range images {
		if _, err := sqlx.NamedExecContext(ctx, ext, query, image); err != nil {
			return err
		}
	}
	return nil
}

func (r *ListingImageRepository) ListByListingIDs(ctx context.Context, listingIDs []uuid.UUID) (map[uuid.UUID][]domain.ListingImage, error) {
	result := make(map[uuid.UUID][]domain.ListingImage, len(listingIDs))
	if len(listingIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, listing_id, url, object_key, is_main, position, created_at
		FROM listing_image
		WHERE listing_id IN (?)
		ORDER BY listing_id, position, id
	`, listingIDs)
	if err != nil {
		return nil, err
	}

	ext := executor(ctx, r.db)
	rows, err := ext.QueryxContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var image domain.ListingImage
		if err := rows.StructScan(&image); err != nil {
			return nil, err
		}
		result[image.ListingID] = append(result[image.ListingID], image)
	}
	return result, rows.Err()
}

var _ ports.ListingImageRepository = (*ListingImageRepository)(nil)
