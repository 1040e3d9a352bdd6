package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"

	"ledger-api/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AccountRepository defines persistence operations for accounts.
// Methods accepting pgx.Tx run inside the caller's transaction and take row locks.
type AccountRepository interface {
	Create(ctx context.Context, tx pgx.Tx, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Account, error)
	// List returns accounts ordered by id. A nil ownerID lists every account.
	List(ctx context.Context, ownerID *string) ([]domain.Account, error)
	CountByOwner(ctx context.Context, tx pgx.Tx, ownerID string) (int64, error)
	// AdjustBalance adds delta to the balance and returns the new value.
	// It fails with domain.ErrInsufficientBalance if the result would be negative.
	AdjustBalance(ctx context.Context, tx pgx.Tx, id string, delta int64) (int64, error)
	Delete(ctx context.Context, tx pgx.Tx, id string) error
}

// TransactionRepository defines persistence operations for the transfer log.
// The log is append-only: there is no update or delete.
type TransactionRepository interface {
	// Create inserts the entry and sets its store-assigned ID.
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, error)
	GetStats(ctx context.Context) (*LedgerStats, error)
}

// TransactionListParams narrows a log listing.
type TransactionListParams struct {
	AccountID string // empty = whole log
	Limit     int    // <= 0 = no limit
}

// LedgerStats holds aggregate figures for the admin stats endpoint.
type LedgerStats struct {
	AccountCount     int64 `json:"account_count"`
	TotalBalance     int64 `json:"total_balance"`
	TransactionCount int64 `json:"transaction_count"`
	TotalVolume      int64 `json:"total_volume"`
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Delete(ctx context.Context, tx pgx.Tx, username string) error
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
