package dto

import "time"

// TransferRequest is the request body for POST /api/v1/transfers.
// Amount must be a JSON integer; fractional or string amounts fail binding.
type TransferRequest struct {
	FromAccountID string `json:"from_account_id" binding:"required,account_id"`
	ToAccountID   string `json:"to_account_id" binding:"required,account_id"`
	Amount        int64  `json:"amount" binding:"required,gt=0"`
}

// TransferResponse is the response body for a committed transfer.
type TransferResponse struct {
	TransactionID   int64     `json:"transaction_id"`
	FromAccountID   string    `json:"from_account_id"`
	ToAccountID     string    `json:"to_account_id"`
	Amount          int64     `json:"amount"`
	SenderBalance   int64     `json:"sender_balance"`
	ReceiverBalance int64     `json:"receiver_balance"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateAccountRequest is the request body for POST /api/v1/accounts.
type CreateAccountRequest struct {
	ID             string  `json:"id" binding:"required,account_id"`
	OwnerID        *string `json:"owner_id,omitempty" binding:"omitempty,account_id"`
	InitialBalance int64   `json:"initial_balance" binding:"gte=0"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID        string    `json:"id"`
	OwnerID   *string   `json:"owner_id,omitempty"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}

// TransactionListQuery binds GET /api/v1/transactions query parameters.
type TransactionListQuery struct {
	AccountID string `form:"account_id" binding:"omitempty,account_id"`
	Limit     int    `form:"limit" binding:"gte=0,lte=1000"`
}

// TransactionResponse is one log entry.
type TransactionResponse struct {
	ID                int64     `json:"id"`
	SenderAccountID   string    `json:"sender_account_id"`
	ReceiverAccountID string    `json:"receiver_account_id"`
	Amount            int64     `json:"amount"`
	CreatedAt         time.Time `json:"created_at"`
}

// TransactionListResponse wraps a log listing.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Count int                   `json:"count"`
}

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,account_id"`
	Password string `json:"password" binding:"required,min=8,max=128" sanitize:"-"`
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required" sanitize:"-"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}
