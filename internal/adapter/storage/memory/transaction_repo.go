package memory

import (
	"context"
	"fmt"
	"sort"

	"ledger-api/internal/core/domain"
	"ledger-api/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository over a Store.
type TransactionRepo struct {
	store *Store
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(s *Store) *TransactionRepo {
	return &TransactionRepo{store: s}
}

// Create appends t to the log and assigns the next id. A rolled-back entry
// still consumes its id.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	mt, err := r.store.active(ctx, tx)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	r.store.lastTxnID++
	t.ID = r.store.lastTxnID
	n := len(r.store.txns)
	r.store.txns = append(r.store.txns, *t)
	mt.record(func() { r.store.txns = r.store.txns[:n] })
	return nil
}

// List returns log entries newest first, ties broken by id.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, error) {
	txns := make([]domain.Transaction, 0)
	err := r.store.exclusive(ctx, func() error {
		for _, t := range r.store.txns {
			if params.AccountID != "" && !t.Involves(params.AccountID) {
				continue
			}
			txns = append(txns, t)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	sort.SliceStable(txns, func(i, j int) bool {
		if !txns[i].CreatedAt.Equal(txns[j].CreatedAt) {
			return txns[i].CreatedAt.After(txns[j].CreatedAt)
		}
		return txns[i].ID > txns[j].ID
	})
	if params.Limit > 0 && len(txns) > params.Limit {
		txns = txns[:params.Limit]
	}
	return txns, nil
}

// GetStats aggregates account and log totals.
func (r *TransactionRepo) GetStats(ctx context.Context) (*ports.LedgerStats, error) {
	stats := &ports.LedgerStats{}
	err := r.store.exclusive(ctx, func() error {
		for _, a := range r.store.accounts {
			stats.AccountCount++
			stats.TotalBalance += a.Balance
		}
		for _, t := range r.store.txns {
			stats.TransactionCount++
			stats.TotalVolume += t.Amount
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get ledger stats: %w", err)
	}
	return stats, nil
}
