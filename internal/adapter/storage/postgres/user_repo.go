package postgres

import (
	"context"
	"errors"
	"fmt"

	"ledger-api/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts a new user. A taken username surfaces as domain.ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (username, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query, u.Username, u.PasswordHash, u.Role, u.CreatedAt)
	if err != nil {
		return wrapErr("insert user", err)
	}
	return nil
}

// GetByUsername fetches a user for login.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT username, password_hash, role, created_at FROM users WHERE username = $1`

	u := &domain.User{}
	err := r.pool.QueryRow(ctx, query, username).Scan(&u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// Delete removes a user. accounts.owner_id is ON DELETE RESTRICT, so a user
// that still owns accounts fails with domain.ErrForeignKey.
func (r *UserRepo) Delete(ctx context.Context, tx pgx.Tx, username string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return wrapErr("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete user %s: %w", username, domain.ErrNotFound)
	}
	return nil
}
