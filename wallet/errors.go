package wallet

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientBalance is returned when a debit would drive the
	// balance below zero.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")

	// ErrDuplicateTransaction is returned when a ledger row with the same
	// idempotency key already exists. Expected behavior for retries.
	ErrDuplicateTransaction = errors.New("duplicate wallet transaction")

	// ErrNonPositiveAmount is returned when a credit or deposit amount is
	// zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be positive")

	// ErrUserNotFound is returned when the referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")
)

// ReconciliationError reports a divergence between the stored balance and
// the signed sum of the ledger. Seeing one means the pairing invariant was
// violated somewhere; it requires manual investigation.
type ReconciliationError struct {
	UserID    string
	Balance   decimal.Decimal
	LedgerSum decimal.Decimal
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("wallet out of balance for user %s: balance %s, ledger sum %s",
		e.UserID, e.Balance, e.LedgerSum)
}
