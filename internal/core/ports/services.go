package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"ledger-api/internal/core/domain"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(user *domain.User) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
	Role    domain.Role
}

// IdempotencyCache is the Redis-layer replay check for transfers.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Acquire claims key for one in-flight request; false if already claimed.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// --- Service Ports (Business Logic) ---

// LedgerService is the ledger engine: the only component that mutates
// balances or appends to the transfer log.
type LedgerService interface {
	Transfer(ctx context.Context, req TransferRequest) (*domain.TransferResult, error)
	GetBalance(ctx context.Context, actor *domain.Actor, accountID string) (int64, error)
	ListAccounts(ctx context.Context, actor *domain.Actor) ([]domain.Account, error)
	ListTransactions(ctx context.Context, actor *domain.Actor, filter TransactionFilter) ([]domain.Transaction, error)
	CreateAccount(ctx context.Context, actor *domain.Actor, req CreateAccountRequest) (*domain.Account, error)
	DeleteAccount(ctx context.Context, actor *domain.Actor, accountID string) error
	GetStats(ctx context.Context, actor *domain.Actor) (*LedgerStats, error)
}

// TransferRequest holds input for a transfer.
type TransferRequest struct {
	Actor          *domain.Actor
	FromAccountID  string
	ToAccountID    string
	Amount         int64
	IdempotencyKey string // optional
}

// TransactionFilter narrows ListTransactions.
type TransactionFilter struct {
	AccountID string
	Limit     int
}

// CreateAccountRequest holds input for account creation.
type CreateAccountRequest struct {
	ID             string
	OwnerID        *string
	InitialBalance int64
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
	DeleteUser(ctx context.Context, actor *domain.Actor, username string) error
	// EnsureUser creates the user if it does not exist yet. Used by seeding.
	EnsureUser(ctx context.Context, username, password string, role domain.Role) (*domain.User, error)
}

// AuditService records audit entries. Failures are logged, never returned.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
