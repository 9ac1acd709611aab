package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/Joestate_APP_BackEnd/internal/domain"
	"github.com/njprem/Joestate_APP_BackEnd/internal/repository/ports"
)

const userColumns = `id, email, first_name, last_name, phone_number, bio, profile_picture_url,
        role, password_hash, password_salt, created_at, updated_at`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	query := `
        INSERT INTO user_account (email, first_name, last_name, phone_number, role, password_hash, password_salt)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + userColumns

	role := user.Role
	if role == "" {
		role = domain.UserRoleUser
	}

	var stored domain.User
	row := executor(ctx, r.db).QueryRowxContext(ctx, query,
		user.Email, user.FirstName, user.LastName, user.PhoneNumber, role, user.PasswordHash, user.PasswordSalt)
	if err := row.StructScan(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM user_account WHERE lower(email) = lower($1)`

	var user domain.User
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM user_account WHERE id = $1`

	var user domain.User
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.User, error) {
	result := make(map[uuid.UUID]domain.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM user_account WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	ext := executor(ctx, r.db)
	var users []domain.User
	if err := sqlx.SelectContext(ctx, ext, &users, ext.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, user := range users {
		result[user.ID] = user
	}
	return result, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user domain.User) (*domain.User, error) {
	query := `
        UPDATE user_account
        SET email = $2,
            first_name = $3,
            last_name = $4,
            phone_number = $5,
            bio = $6,
            password_hash = $7,
            password_salt = $8,
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + userColumns

	var stored domain.User
	row := executor(ctx, r.db).QueryRowxContext(ctx, query,
		user.ID, user.Email, user.FirstName, user.LastName, user.PhoneNumber, user.Bio, user.PasswordHash, user.PasswordSalt)
	if err := row.StructScan(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, url string) (*domain.User, error) {
	query := `
        UPDATE user_account
        SET profile_picture_url = $2,
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + userColumns

	var stored domain.User
	if err := executor(ctx, r.db).QueryRowxContext(ctx, query, id, url).StructScan(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
