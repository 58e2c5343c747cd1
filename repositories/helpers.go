package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx, so every repository
// method can run either standalone or as one step of a transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TrashPolicy tells a delete whether the removed rows go to the matching
// *_backup table (and can be restored later) or are dropped for good.
type TrashPolicy int

const (
	MoveToTrash TrashPolicy = iota
	SkipTrash
)

// ErrNothingToRestore is returned when a trash table is empty.
var ErrNothingToRestore = errors.New("nothing to restore")

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

func pgErrorCode(err error) (string, string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}
	return "", "", false
}

func isUniqueViolation(err error) bool {
	code, _, ok := pgErrorCode(err)
	return ok && code == pqUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	code, _, ok := pgErrorCode(err)
	return ok && code == pqForeignKeyViolation
}

func isCheckViolation(err error) bool {
	code, _, ok := pgErrorCode(err)
	return ok && code == pqCheckViolation
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

type executorHolder struct {
	db *sql.DB
}

func (h executorHolder) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return h.db
}
