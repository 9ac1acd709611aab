package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/njprem/Joestate_APP_BackEnd/internal/domain"
	"github.com/njprem/Joestate_APP_BackEnd/internal/repository/ports"
)

const listingColumns = `id, owner_id, title, description, price, area, location,
		room_count, bath_count, type, purpose, rent_frequency, status, created_at`

type ListingRepository struct {
	db *sqlx.DB
}

func NewListingRepo(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(ctx context.Context, listing domain.Listing) (*domain.Listing, error) {
	query := `
		INSERT INTO listing (
			owner_id, title, description, price, area, location,
			room_count, bath_count, type, purpose, rent_frequency, status
		) VALUES (
			:owner_id, :title, :description, :price, :area, :location,
			:room_count, :bath_count, :type, :purpose, :rent_frequency, :status
		)
		RETURNING ` + listingColumns

	rows, err := sqlx.NamedQueryContext(ctx, executor(ctx, r.db), query, listing)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var stored domain.Listing
		if err := rows.StructScan(&stored); err != nil {
			return nil, err
		}
		return &stored, nil
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, sql.ErrNoRows
}

func (r *ListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listing WHERE id = $1`

	var listing domain.Listing
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &listing, query, id); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *ListingRepository) Query(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
	listings := make([]domain.Listing, 0)
	if q.IDs != nil && len(q.IDs) == 0 {
		return listings, nil
	}

	query, args := buildListingQuery(q)
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &listings, query, args...); err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *ListingRepository) DistinctLocations(ctx context.Context, substring string, limit int) ([]string, error) {
	const query = `
		SELECT DISTINCT location
		FROM listing
		WHERE location ILIKE $1 ESCAPE '\'
		ORDER BY location ASC
		LIMIT $2
	`
	locations := make([]string, 0)
	pattern := "%" + escapeLike(substring) + "%"
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &locations, query, pattern, limit); err != nil {
		return nil, err
	}
	return locations, nil
}

// Delete relies on ON DELETE CASCADE from listing_image and favorite_list.
// Nothing calls it yet; it backs the cascade contract on ports.ListingRepository.
func (r *ListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM listing WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// listingPredicate collects one WHERE clause per active constraint. Each
// expression holds a single %s that is replaced by the next placeholder.
type listingPredicate struct {
	clauses []string
	args    []any
}

func (p *listingPredicate) add(expr string, value any) {
	p.args = append(p.args, value)
	p.clauses = append(p.clauses, fmt.Sprintf(expr, fmt.Sprintf("$%d", len(p.args))))
}

func (p *listingPredicate) placeholder(value any) string {
	p.args = append(p.args, value)
	return fmt.Sprintf("$%d", len(p.args))
}

func buildListingQuery(q domain.ListingQuery) (string, []any) {
	var p listingPredicate
	f := q.Filter

	if f.Location != nil {
		if loc := strings.TrimSpace(*f.Location); loc != "" {
			p.add(`location ILIKE %s ESCAPE '\'`, "%"+escapeLike(loc)+"%")
		}
	}
	if f.Purpose != nil {
		p.add("purpose = %s", string(*f.Purpose))
	}
	if f.Type != nil {
		p.add("type = %s", string(*f.Type))
	}
	if f.RentFrequency != nil {
		p.add("rent_frequency = %s", string(*f.RentFrequency))
	}
	if f.MinPrice != nil {
		p.add("price >= %s", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		p.add("price <= %s", *f.MaxPrice)
	}
	if f.MinArea != nil {
		p.add("area >= %s", *f.MinArea)
	}
	if f.MaxArea != nil {
		p.add("area <= %s", *f.MaxArea)
	}
	if f.MinBeds != nil {
		p.add("room_count >= %s", *f.MinBeds)
	}
	if f.MinBaths != nil {
		p.add("bath_count >= %s", *f.MinBaths)
	}

	if q.Status != nil {
		p.add("status = %s", string(*q.Status))
	}
	if q.OwnerID != nil {
		p.add("owner_id = %s", *q.OwnerID)
	}
	if len(q.IDs) > 0 {
		ids := make(pq.StringArray, 0, len(q.IDs))
		for _, id := range q.IDs {
			ids = append(ids, id.String())
		}
		p.add("id = ANY(%s::uuid[])", ids)
	}

	var builder strings.Builder
	builder.WriteString("SELECT " + listingColumns + "\n\t\tFROM listing")
	if len(p.clauses) > 0 {
		builder.WriteString("\n\t\tWHERE " + strings.Join(p.clauses, "\n\t\t  AND "))
	}

	builder.WriteString("\n\t\tORDER BY ")
	switch q.Order {
	case domain.ListingOrderNewest:
		builder.WriteString("created_at DESC, id DESC")
	default:
		builder.WriteString("created_at ASC, id ASC")
	}

	if q.Limit > 0 {
		builder.WriteString("\n\t\tLIMIT " + p.placeholder(q.Limit))
	}
	return builder.String(), p.args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}

var _ ports.ListingRepository = (*ListingRepository)(nil)
