package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"medportal/internal/common"

	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// on returns tx when the caller runs inside a transaction, db otherwise.
func on(db *sql.DB, tx *sql.Tx) querier {
	if tx != nil {
		return tx
	}
	return db
}

// DuplicateError reports a unique index violation on a single user-facing field.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s", e.Field)
}

func (e *DuplicateError) Unwrap() error { return common.ErrConflict }

var uniqueConstraintFields = map[string]string{
	"users_username_key": "username",
	"users_email_key":    "email",
}

// uniqueViolation translates a PostgreSQL unique violation into a DuplicateError when the
// constraint guards a user-facing field, and into ErrConflict otherwise.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	if field, ok := uniqueConstraintFields[pgErr.ConstraintName]; ok {
		return &DuplicateError{Field: field}
	}
	return fmt.Errorf("%s: %w", pgErr.ConstraintName, common.ErrConflict)
}
