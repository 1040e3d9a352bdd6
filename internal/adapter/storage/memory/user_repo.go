package memory

import (
	"context"
	"fmt"

	"ledger-api/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// UserRepo implements ports.UserRepository over a Store.
type UserRepo struct {
	store *Store
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(s *Store) *UserRepo {
	return &UserRepo{store: s}
}

// Create inserts a new user.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	err := r.store.exclusive(ctx, func() error {
		if _, exists := r.store.users[u.Username]; exists {
			return domain.ErrDuplicate
		}
		c := *u
		r.store.users[u.Username] = &c
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert user %s: %w", u.Username, err)
	}
	return nil
}

// GetByUsername fetches a user, or nil if absent.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var out *domain.User
	err := r.store.exclusive(ctx, func() error {
		if u, ok := r.store.users[username]; ok {
			c := *u
			out = &c
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return out, nil
}

// Delete removes a user that owns no accounts.
func (r *UserRepo) Delete(ctx context.Context, tx pgx.Tx, username string) error {
	mt, err := r.store.active(ctx, tx)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	u, ok := r.store.users[username]
	if !ok {
		return fmt.Errorf("delete user %s: %w", username, domain.ErrNotFound)
	}
	for _, a := range r.store.accounts {
		if a.OwnerID != nil && *a.OwnerID == username {
			return fmt.Errorf("delete user %s: still owns %s: %w", username, a.ID, domain.ErrForeignKey)
		}
	}

	delete(r.store.users, username)
	mt.record(func() { r.store.users[username] = u })
	return nil
}

// AuditRepo implements ports.AuditRepository over a Store.
type AuditRepo struct {
	store *Store
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(s *Store) *AuditRepo {
	return &AuditRepo{store: s}
}

// Create appends an audit entry.
func (r *AuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	return r.store.exclusive(ctx, func() error {
		r.store.audit = append(r.store.audit, *entry)
		return nil
	})
}

// Entries returns a copy of the audit trail, oldest first.
func (r *AuditRepo) Entries(ctx context.Context) ([]domain.AuditLog, error) {
	var out []domain.AuditLog
	err := r.store.exclusive(ctx, func() error {
		out = append(out, r.store.audit...)
		return nil
	})
	return out, err
}
