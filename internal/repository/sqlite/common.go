package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"tasklist/internal/errors"
)

// HandleDatabaseError converts database errors to structured app errors.
// A cancelled or expired context is reported as a timeout.
func HandleDatabaseError(ctx context.Context, operation string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.FromContextError(operation, ctxErr)
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return errors.FromContextError(operation, err)
	}
	return errors.NewDatabaseError(operation, err)
}

// IsUniqueViolation reports whether err was raised by a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ValidateRowsAffected checks that a statement touched at least one row
func ValidateRowsAffected(ctx context.Context, result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return HandleDatabaseError(ctx, "get rows affected", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

// ExecuteWithRowsAffected executes a statement and returns notFound when it touched no rows
func ExecuteWithRowsAffected(ctx context.Context, db *sql.DB, query string, notFound error, args ...interface{}) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return HandleDatabaseError(ctx, "execute query", err)
	}

	return ValidateRowsAffected(ctx, result, notFound)
}

// QuerySingle executes a query that returns a single row and scans it.
// sql.ErrNoRows is returned as notFound.
func QuerySingle[T any](ctx context.Context, db *sql.DB, query string, scanFunc func(Scanner) (*T, error), notFound error, args ...interface{}) (*T, error) {
	row := db.QueryRowContext(ctx, query, args...)
	result, err := scanFunc(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, notFound
		}
		return nil, HandleDatabaseError(ctx, "scan task", err)
	}
	return result, nil
}

// QueryMultiple executes a query that returns multiple rows and scans them
func QueryMultiple[T any](ctx context.Context, db *sql.DB, query string, scanFunc func(Rows) ([]*T, error), args ...interface{}) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, HandleDatabaseError(ctx, "query tasks", err)
	}
	defer rows.Close()

	results, err := scanFunc(rows)
	if err != nil {
		return nil, HandleDatabaseError(ctx, "scan tasks", err)
	}

	return results, nil
}
