package service

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrListingNotFound   = errors.New("listing not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrListingValidation = errors.New("listing validation failed")
	ErrUserValidation    = errors.New("user validation failed")
	ErrEmailTaken        = errors.New("email is already in use")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrUnauthenticated   = errors.New("authentication required")
	ErrStorageFailure    = errors.New("storage failure")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
