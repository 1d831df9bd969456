/*
ledger.go - Wallet ledger operations and row constructors

PURPOSE:

	The Ledger is the read/reconcile surface over the wallet Store, plus the
	constructors that fix the sign convention for every row type. Balance-
	affecting writes that belong to a booking lifecycle event go through the
	booking service's store transaction; standalone deposits go through
	Deposit here.

WHY CONSTRUCTORS?

	The sign convention (payment negative, refund/deposit positive) is easy
	to get wrong at call sites. NewRefund/NewDeposit/NewSettlementPair are
	the only places a row is assembled, so the convention cannot drift.
*/
package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// ROW CONSTRUCTORS - The only places sign conventions are applied
// =============================================================================

// NewRefund builds a positive refund row referencing the cancelled booking.
func NewRefund(userID string, amount decimal.Decimal, bookingID string, at time.Time) Transaction {
	return Transaction{
		ID:             uuid.NewString(),
		UserID:         userID,
		Amount:         amount,
		Type:           TypeRefund,
		Description:    fmt.Sprintf("Refund for booking #%s", bookingID),
		BookingID:      bookingID,
		Date:           at,
		IdempotencyKey: "refund-" + bookingID,
	}
}

// NewDeposit builds a positive deposit row.
func NewDeposit(userID string, amount decimal.Decimal, description string, at time.Time) Transaction {
	return Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      amount,
		Type:        TypeDeposit,
		Description: description,
		Date:        at,
	}
}

// NewSettlementPair builds the two rows recorded when an externally-settled
// payment is confirmed: the gateway settlement arriving (+amount) and the
// booking being paid (-amount). Net balance effect is zero, so the
// reconciliation invariant holds without pretending the wallet funded the
// trip. Both rows must be applied in the same store transaction.
func NewSettlementPair(userID string, amount decimal.Decimal, bookingID string, at time.Time) []Transaction {
	return []Transaction{
		{
			ID:             uuid.NewString(),
			UserID:         userID,
			Amount:         amount,
			Type:           TypeDeposit,
			Description:    fmt.Sprintf("External settlement for booking #%s", bookingID),
			BookingID:      bookingID,
			Date:           at,
			IdempotencyKey: "settle-" + bookingID,
		},
		{
			ID:             uuid.NewString(),
			UserID:         userID,
			Amount:         amount.Neg(),
			Type:           TypePayment,
			Description:    fmt.Sprintf("Payment for booking #%s", bookingID),
			BookingID:      bookingID,
			Date:           at,
			IdempotencyKey: "payment-" + bookingID,
		},
	}
}

// =============================================================================
// LEDGER - Read and reconcile surface
// =============================================================================

type Ledger struct {
	store Store
	now   func() time.Time
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// Deposit credits a user's wallet outside any booking flow.
func (l *Ledger) Deposit(ctx context.Context, userID string, amount decimal.Decimal, description string) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, ErrNonPositiveAmount
	}
	tx := NewDeposit(userID, amount, description, l.now())
	if err := l.store.Apply(ctx, tx); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// Balance returns the user's current balance.
func (l *Ledger) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	return l.store.Balance(ctx, userID)
}

// History returns the user's ledger rows, newest first.
func (l *Ledger) History(ctx context.Context, userID string) ([]Transaction, error) {
	return l.store.History(ctx, userID)
}

// Reconcile recomputes the signed ledger sum and compares it with the
// stored balance. Returns a ReconciliationError on divergence.
func (l *Ledger) Reconcile(ctx context.Context, userID string) error {
	balance, err := l.store.Balance(ctx, userID)
	if err != nil {
		return err
	}
	history, err := l.store.History(ctx, userID)
	if err != nil {
		return err
	}

	sum := decimal.Zero
	for _, tx := range history {
		sum = sum.Add(tx.Amount)
	}

	if !sum.Equal(balance) {
		return &ReconciliationError{UserID: userID, Balance: balance, LedgerSum: sum}
	}
	return nil
}
