package domain

import (
	"regexp"
	"time"
)

var accountIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

// Account holds a non-negative integer balance. OwnerID is nil for flat
// accounts, which only admins may operate on.
type Account struct {
	ID        string    `json:"id"`
	OwnerID   *string   `json:"owner_id,omitempty"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanCover reports whether the account can be debited by amount without going negative.
func (a *Account) CanCover(amount int64) bool {
	return amount <= a.Balance
}

// ValidAccountID reports whether id is an acceptable account identifier.
func ValidAccountID(id string) bool {
	return accountIDPattern.MatchString(id)
}
