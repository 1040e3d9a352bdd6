package postgres

import (
	"context"
	"errors"
	"fmt"

	"ledger-api/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool is the subset of *pgxpool.Pool the repositories use.
// pgxmock.PgxPoolIface satisfies it in tests.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// SQLSTATE codes mapped onto domain sentinels.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// wrapErr annotates err with op and, for constraint violations, the matching
// domain sentinel so services can branch with errors.Is.
func wrapErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrDuplicate, err)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrForeignKey, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
