package wallet

import "errors"

var (
	// Validation errors: client-correctable, surfaced immediately, never retried.
	ErrInvalidAmount     = errors.New("invalid amount: must be greater than 0")
	ErrInvalidReference  = errors.New("invalid reference: must not be empty")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrRecipientInactive = errors.New("recipient account is not active")
	ErrSelfTransfer      = errors.New("cannot transfer to yourself")

	// State errors: surfaced, not retried.
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrWalletNotFound    = errors.New("wallet not found")

	// Infrastructure errors: retried a bounded number of times, then surfaced.
	ErrTransientConflict = errors.New("transfer conflicted with a concurrent operation, try again")
	ErrTimeout           = errors.New("operation timed out")

	// Integrity errors: unreachable under correct operation.
	ErrDuplicateReference = errors.New("duplicate transaction reference")
	ErrReferenceConflict  = errors.New("reference already used with a different amount")
)
