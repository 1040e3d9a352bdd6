package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ledger-api/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository over a Store.
type AccountRepo struct {
	store *Store
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(s *Store) *AccountRepo {
	return &AccountRepo{store: s}
}

// Create inserts an account. The owner, if any, must exist.
func (r *AccountRepo) Create(ctx context.Context, tx pgx.Tx, a *domain.Account) error {
	mt, err := r.store.active(ctx, tx)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	if _, exists := r.store.accounts[a.ID]; exists {
		return fmt.Errorf("insert account %s: %w", a.ID, domain.ErrDuplicate)
	}
	if a.OwnerID != nil {
		if _, ok := r.store.users[*a.OwnerID]; !ok {
			return fmt.Errorf("insert account %s: owner %s: %w", a.ID, *a.OwnerID, domain.ErrForeignKey)
		}
	}

	r.store.accounts[a.ID] = cloneAccount(a)
	mt.record(func() { delete(r.store.accounts, a.ID) })
	return nil
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	var out *domain.Account
	err := r.store.exclusive(ctx, func() error {
		if a, ok := r.store.accounts[id]; ok {
			out = cloneAccount(a)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return out, nil
}

// GetByIDForUpdate fetches an account inside tx. The whole store is already
// exclusive to tx, so there is no separate row lock.
func (r *AccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Account, error) {
	if _, err := r.store.active(ctx, tx); err != nil {
		return nil, fmt.Errorf("get account for update: %w", err)
	}
	a, ok := r.store.accounts[id]
	if !ok {
		return nil, nil
	}
	return cloneAccount(a), nil
}

// List returns accounts ordered by id, optionally restricted to one owner.
func (r *AccountRepo) List(ctx context.Context, ownerID *string) ([]domain.Account, error) {
	accounts := make([]domain.Account, 0)
	err := r.store.exclusive(ctx, func() error {
		for _, a := range r.store.accounts {
			if ownerID != nil && (a.OwnerID == nil || *a.OwnerID != *ownerID) {
				continue
			}
			accounts = append(accounts, *cloneAccount(a))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// CountByOwner counts the accounts referencing a user.
func (r *AccountRepo) CountByOwner(ctx context.Context, tx pgx.Tx, ownerID string) (int64, error) {
	if _, err := r.store.active(ctx, tx); err != nil {
		return 0, fmt.Errorf("count accounts by owner: %w", err)
	}
	var n int64
	for _, a := range r.store.accounts {
		if a.OwnerID != nil && *a.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

// AdjustBalance adds delta and returns the new balance, refusing to go below zero.
func (r *AccountRepo) AdjustBalance(ctx context.Context, tx pgx.Tx, id string, delta int64) (int64, error) {
	mt, err := r.store.active(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("adjust balance: %w", err)
	}
	a, ok := r.store.accounts[id]
	if !ok {
		return 0, fmt.Errorf("adjust balance of %s: %w", id, domain.ErrNotFound)
	}
	if a.Balance+delta < 0 {
		return 0, fmt.Errorf("adjust balance of %s: %w", id, domain.ErrInsufficientBalance)
	}

	prevBalance, prevUpdated := a.Balance, a.UpdatedAt
	a.Balance += delta
	a.UpdatedAt = time.Now().UTC()
	mt.record(func() {
		a.Balance = prevBalance
		a.UpdatedAt = prevUpdated
	})
	return a.Balance, nil
}

// Delete removes an account. Log entries naming it are kept.
func (r *AccountRepo) Delete(ctx context.Context, tx pgx.Tx, id string) error {
	mt, err := r.store.active(ctx, tx)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	a, ok := r.store.accounts[id]
	if !ok {
		return fmt.Errorf("delete account %s: %w", id, domain.ErrNotFound)
	}

	delete(r.store.accounts, id)
	mt.record(func() { r.store.accounts[id] = a })
	return nil
}
