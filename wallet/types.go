/*
Package wallet maintains per-user stored-value balances backed by an
append-only transaction ledger.

PURPOSE:

	Every balance mutation is paired, in the same store transaction, with
	exactly one new ledger row. The running balance and the ledger can never
	diverge: for every user, the signed sum of their transactions equals
	their wallet balance at all times.

SIGN CONVENTION (fixed here, applied everywhere):

	deposit  -> positive amount (funds in)
	refund   -> positive amount (funds in)
	payment  -> negative amount (funds out)

EXTERNAL SETTLEMENT:

	When a booking is paid through an external gateway, the wallet never
	held the money - but the payment must still appear in the ledger for
	audit. The engine records a settlement pair in one transaction: a
	deposit (+price, the gateway settlement arriving) and a payment
	(-price, the booking being paid). Net balance effect is zero and the
	reconciliation invariant holds.

CRITICAL INVARIANTS:
 1. APPEND-ONLY: ledger rows are never updated or deleted
 2. PAIRED: no balance change without its ledger row, and vice versa
 3. NON-NEGATIVE: a user's balance never drops below zero
 4. IDEMPOTENT: rows carry idempotency keys; retries cannot duplicate

SEE ALSO:
  - ledger.go: Read/reconcile operations and row constructors
  - store/sqlite: The transactional Store implementation
*/
package wallet

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TRANSACTION - One append-only ledger row
// =============================================================================

type TxType string

const (
	TypeDeposit TxType = "deposit"
	TypePayment TxType = "payment"
	TypeRefund  TxType = "refund"
)

// Transaction is an immutable ledger row. Amount is signed: deposits and
// refunds are positive, payments negative.
type Transaction struct {
	ID             string
	UserID         string
	Amount         decimal.Decimal
	Type           TxType
	Description    string
	BookingID      string // Optional reference to the originating booking
	Date           time.Time
	IdempotencyKey string
}

// SignedFor reports whether the amount's sign matches the row type.
func (t Transaction) SignedFor() bool {
	switch t.Type {
	case TypePayment:
		return !t.Amount.IsPositive()
	case TypeDeposit, TypeRefund:
		return !t.Amount.IsNegative()
	}
	return false
}

// =============================================================================
// STORE - Transactional persistence contract
// =============================================================================

// Store applies ledger rows atomically: each Apply mutates the user's
// balance by tx.Amount AND inserts the row, in one store transaction.
// A partial write is impossible by construction.
//
// Apply must fail with ErrInsufficientBalance if the resulting balance
// would be negative, and with ErrDuplicateTransaction if the idempotency
// key was already used.
type Store interface {
	Apply(ctx context.Context, tx Transaction) error
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
	History(ctx context.Context, userID string) ([]Transaction, error) // Newest first
}
