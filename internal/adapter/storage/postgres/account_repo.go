package postgres

import (
	"context"
	"errors"
	"fmt"

	"ledger-api/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, owner_id, balance, created_at, updated_at`

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create inserts a new account within a database transaction.
func (r *AccountRepo) Create(ctx context.Context, tx pgx.Tx, a *domain.Account) error {
	query := `INSERT INTO accounts (id, owner_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query, a.ID, a.OwnerID, a.Balance, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return wrapErr("insert account", err)
	}
	return nil
}

// GetByID fetches an account by id (without locking).
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, id), "get account by id")
}

// GetByIDForUpdate fetches an account by id with pessimistic locking.
// This MUST be called within a transaction.
func (r *AccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return scanAccount(tx.QueryRow(ctx, query, id), "get account for update")
}

// List returns accounts ordered by id, optionally restricted to one owner.
func (r *AccountRepo) List(ctx context.Context, ownerID *string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	var args []any
	if ownerID != nil {
		query += ` WHERE owner_id = $1`
		args = append(args, *ownerID)
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account rows: %w", err)
	}
	return accounts, nil
}

// CountByOwner counts the accounts referencing a user.
func (r *AccountRepo) CountByOwner(ctx context.Context, tx pgx.Tx, ownerID string) (int64, error) {
	var n int64
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE owner_id = $1`, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count accounts by owner: %w", err)
	}
	return n, nil
}

// AdjustBalance applies delta in SQL and returns the new balance. The row must
// already be locked by GetByIDForUpdate, so no returned row means the guard
// refused to take the balance below zero.
func (r *AccountRepo) AdjustBalance(ctx context.Context, tx pgx.Tx, id string, delta int64) (int64, error) {
	query := `UPDATE accounts SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2 AND balance + $1 >= 0
		RETURNING balance`

	var balance int64
	err := tx.QueryRow(ctx, query, delta, id).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("adjust balance of %s: %w", id, domain.ErrInsufficientBalance)
		}
		return 0, wrapErr("adjust balance", err)
	}
	return balance, nil
}

// Delete removes an account. Transaction rows that reference it are kept.
func (r *AccountRepo) Delete(ctx context.Context, tx pgx.Tx, id string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete account", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete account %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanAccount(row pgx.Row, op string) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(&a.ID, &a.OwnerID, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}
