package postgres

import (
	"context"
	"fmt"

	"ledger-api/internal/core/domain"
	"ledger-api/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create appends a log entry within a database transaction and sets t.ID
// from the BIGSERIAL sequence.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (sender_id, receiver_id, amount, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := tx.QueryRow(ctx, query, t.SenderAccountID, t.ReceiverAccountID, t.Amount, t.CreatedAt).Scan(&t.ID)
	if err != nil {
		return wrapErr("insert transaction", err)
	}
	return nil
}

// List returns log entries newest first. Ties on created_at are broken by id.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, error) {
	query := `SELECT id, sender_id, receiver_id, amount, created_at FROM transactions`
	var args []any

	if params.AccountID != "" {
		args = append(args, params.AccountID)
		query += ` WHERE sender_id = $1 OR receiver_id = $1`
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if params.Limit > 0 {
		args = append(args, params.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0)
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.SenderAccountID, &t.ReceiverAccountID, &t.Amount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

// GetStats aggregates account and log totals in one round trip.
func (r *TransactionRepo) GetStats(ctx context.Context) (*ports.LedgerStats, error) {
	query := `SELECT
		(SELECT COUNT(*) FROM accounts) AS account_count,
		(SELECT COALESCE(SUM(balance), 0)::BIGINT FROM accounts) AS total_balance,
		(SELECT COUNT(*) FROM transactions) AS transaction_count,
		(SELECT COALESCE(SUM(amount), 0)::BIGINT FROM transactions) AS total_volume`

	stats := &ports.LedgerStats{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.AccountCount, &stats.TotalBalance,
		&stats.TransactionCount, &stats.TotalVolume,
	)
	if err != nil {
		return nil, fmt.Errorf("get ledger stats: %w", err)
	}
	return stats, nil
}
