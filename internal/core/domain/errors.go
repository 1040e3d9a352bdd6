package domain

import "errors"

// Storage sentinels. Repositories wrap these; services map them to apperror kinds.
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicate           = errors.New("duplicate key")
	ErrForeignKey          = errors.New("foreign key violation")
	ErrInsufficientBalance = errors.New("insufficient balance")
)
