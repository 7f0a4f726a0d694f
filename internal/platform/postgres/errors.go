package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/tasker-api/internal/store"
)

// SQLSTATE codes the stores react to.
const (
	codeUnique     = "23505"
	codeForeignKey = "23503"
	codeCheck      = "23514"
	codeNotNull    = "23502"
)

// constraintKinds labels integrity violations that surface as
// store.ErrInvalidEntity. Unique violations are handled separately.
var constraintKinds = map[string]string{
	codeForeignKey: "foreign key",
	codeCheck:      "check constraint",
	codeNotNull:    "not null",
}

func pgCode(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil, false
	}
	return pgErr, true
}

// MapError translates driver errors into the store sentinels. The driver
// error stays in the chain for logging.
func MapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}

	pgErr, ok := pgCode(err)
	if !ok {
		return err
	}
	if pgErr.Code == codeUnique {
		return fmt.Errorf("%w: %w", store.ErrDuplicate, err)
	}
	kind, known := constraintKinds[pgErr.Code]
	if !known {
		return err
	}

	subject := pgErr.ConstraintName
	if pgErr.Code == codeNotNull {
		subject = pgErr.ColumnName
	}
	return fmt.Errorf("%w: %s violation on %q: %w", store.ErrInvalidEntity, kind, subject, err)
}

// IsUniqueViolation reports whether err carries SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	pgErr, ok := pgCode(err)
	return ok && pgErr.Code == codeUnique
}

// IsForeignKeyViolation reports whether err carries SQLSTATE 23503.
func IsForeignKeyViolation(err error) bool {
	pgErr, ok := pgCode(err)
	return ok && pgErr.Code == codeForeignKey
}

// CheckRowsAffected turns a zero-row UPDATE or DELETE into notFound, or
// store.ErrNotFound when notFound is nil.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return errors.New("check rows affected: nil result")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	if notFound != nil {
		return notFound
	}
	return store.ErrNotFound
}
