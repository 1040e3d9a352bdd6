package domain

import "time"

// Role is the privilege level carried by a user and its actor.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is a login identity. Accounts reference it through Account.OwnerID.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Actor is the identity an operation runs under, as resolved by authentication.
type Actor struct {
	ID   string
	Role Role
}

// IsAdmin returns true for privileged actors.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// Owns reports whether the actor controls the account. Only accounts with
// an OwnerID have an owner; flat accounts are reachable by admins alone.
func (a *Actor) Owns(account *Account) bool {
	if a == nil || account == nil || account.OwnerID == nil {
		return false
	}
	return *account.OwnerID == a.ID
}

// CanAccess reports whether the actor may read, debit or delete the account.
// Admins may act on every account.
func (a *Actor) CanAccess(account *Account) bool {
	return a.IsAdmin() || a.Owns(account)
}
