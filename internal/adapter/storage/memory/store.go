// Package memory is an embedded, in-process ledger store. It implements the
// same ports as the postgres adapter so the service runs without a database.
//
// All state sits behind a weight-1 semaphore. A transaction holds it from
// Begin until Commit or Rollback; non-transactional reads take it briefly.
// Callers holding a transaction must therefore only use the methods that
// accept that transaction.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"ledger-api/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/semaphore"
)

// ErrForeignTx is returned when a repository is handed a transaction that
// this store did not begin.
var ErrForeignTx = errors.New("memory: transaction does not belong to this store")

// Store holds the whole ledger in memory.
type Store struct {
	sem *semaphore.Weighted

	accounts map[string]*domain.Account
	users    map[string]*domain.User
	txns     []domain.Transaction
	audit    []domain.AuditLog

	lastTxnID int64         // guarded by sem; never reused, even after rollback
	txSeq     atomic.Uint64 // Tx ids, for logging
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sem:      semaphore.NewWeighted(1),
		accounts: make(map[string]*domain.Account),
		users:    make(map[string]*domain.User),
	}
}

// Begin starts a transaction. It blocks until the store is free or ctx is done.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{store: s, id: s.txSeq.Add(1)}, nil
}

// exclusive runs fn while holding the store outside any transaction. Both
// lookups and non-transactional writes go through it.
func (s *Store) exclusive(ctx context.Context, fn func() error) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)
	return fn()
}

// active resolves tx to a live transaction of this store.
func (s *Store) active(ctx context.Context, tx pgx.Tx) (*Tx, error) {
	mt, ok := tx.(*Tx)
	if !ok || mt.store != s {
		return nil, ErrForeignTx
	}
	if mt.done {
		return nil, pgx.ErrTxClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return mt, nil
}

// HealthCheck implements ports.HealthChecker for the embedded store.
type HealthCheck struct {
	store *Store
}

// NewHealthCheck creates a health checker for s.
func NewHealthCheck(s *Store) *HealthCheck {
	return &HealthCheck{store: s}
}

// Ping succeeds once the store can be entered.
func (h *HealthCheck) Ping(ctx context.Context) error {
	return h.store.exclusive(ctx, func() error { return nil })
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "memory"
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	if a.OwnerID != nil {
		owner := *a.OwnerID
		c.OwnerID = &owner
	}
	return &c
}
