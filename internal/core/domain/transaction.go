package domain

import "time"

// Transaction is an immutable log entry for one committed transfer.
// Sender and receiver ids are kept verbatim even after the accounts are deleted.
type Transaction struct {
	ID                int64     `json:"id"`
	SenderAccountID   string    `json:"sender_account_id"`
	ReceiverAccountID string    `json:"receiver_account_id"`
	Amount            int64     `json:"amount"`
	CreatedAt         time.Time `json:"created_at"`
}

// Involves returns true if accountID is the sender or the receiver.
func (t *Transaction) Involves(accountID string) bool {
	return t.SenderAccountID == accountID || t.ReceiverAccountID == accountID
}

// Matches reports whether t moved amount from sender to receiver.
func (t *Transaction) Matches(sender, receiver string, amount int64) bool {
	return t.SenderAccountID == sender && t.ReceiverAccountID == receiver && t.Amount == amount
}

// TransferResult is what a committed transfer hands back: the log entry
// plus both post-transfer balances.
type TransferResult struct {
	Transaction     Transaction `json:"transaction"`
	SenderBalance   int64       `json:"sender_balance"`
	ReceiverBalance int64       `json:"receiver_balance"`
}
