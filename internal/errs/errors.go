package errs

import "errors"

// Operation-level sentinels. These are local to a single operation: the
// replay keeps going after any of them.
var (
	ErrAccountLocked      = errors.New("account_locked")
	ErrUnknownTransaction = errors.New("unknown_transaction")
	ErrNotDisputed        = errors.New("transaction_not_disputed")
	ErrAlreadyDisputed    = errors.New("transaction_already_disputed")
	ErrInsufficientFunds  = errors.New("insufficient_funds")
	// ErrAmountOverflow is returned when a balance would leave the decimal range.
	ErrAmountOverflow = errors.New("amount_overflow")
)

// Input and lookup sentinels for cross-layer signaling.
var (
	// ErrMalformedRecord marks an input row that is not an operation at all.
	ErrMalformedRecord = errors.New("malformed_record")
	ErrInvalid         = errors.New("invalid")
	ErrNotFound        = errors.New("not_found")
)
