/*
lifecycle.go - Booking lifecycle state machine

PURPOSE:

	Orchestrates the full life of a booking and its side effects:

	  create -> Pending -> Confirmed -> Completed
	                \          \
	                 +----------+--> Cancelled

	1. Creation: validate, serialize the capacity check against the insert
	2. Payment confirmation: Pending -> Confirmed, ledger settlement pair
	3. Cancellation: tiered refund, wallet credit + refund row, one
	   transaction
	4. Admin override: any -> Completed (or other statuses), audited,
	   no refund logic

ATOMICITY:

	Every lifecycle transition and its wallet writes go through a single
	store transaction (Store.WithTx). A booking can never be Cancelled
	without its refund row, and a refund row can never exist without the
	balance credit.

CONCURRENCY:
  - Capacity-affecting creates are serialized per (package, trip date) by
    keyMutex AND re-validated inside the transaction
  - Confirm and cancel on the same booking are mutually exclusive through
    the optimistic version check in UpdateBooking (losers get ErrConflict)
  - Wallet mutations are atomic read-modify-writes inside the store

SIDE EFFECTS:

	Notifications and emails are dispatched after commit, best-effort.
	Their failure is logged and counted, never propagated.

SEE ALSO:
  - capacity.go: Seat computation
  - refund.go:   Refund tiers
  - authz.go:    Who may do what
*/
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voyago/booking-engine/metrics"
	"github.com/voyago/booking-engine/notify"
	"github.com/voyago/booking-engine/wallet"
)

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	store      Store
	dispatcher *notify.Dispatcher

	// Serializes capacity check + insert per (package, trip date).
	capacityLocks *keyMutex

	now func() time.Time
}

func NewService(store Store, dispatcher *notify.Dispatcher) *Service {
	return &Service{
		store:         store,
		dispatcher:    dispatcher,
		capacityLocks: newKeyMutex(),
		now:           time.Now,
	}
}

// WithClock replaces the service clock. For tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// =============================================================================
// CREATE - capacity-checked, price-frozen
// =============================================================================

type CreateBookingInput struct {
	PackageID      PackageID
	TripDate       time.Time
	NumberOfPeople int
	Travelers      []Traveler
	RoomType       RoomType
	Insurance      bool
}

// CreateBooking validates the request, checks capacity under the per-key
// lock, computes and freezes the total price, and inserts the booking in
// Pending status.
func (s *Service) CreateBooking(ctx context.Context, actor Actor, in CreateBookingInput) (*Booking, error) {
	if in.NumberOfPeople < 1 {
		return nil, &InputError{Field: "number_of_people", Reason: "must be at least 1"}
	}
	if len(in.Travelers) != in.NumberOfPeople {
		return nil, &InputError{
			Field:  "travelers",
			Reason: fmt.Sprintf("expected %d traveler records, got %d", in.NumberOfPeople, len(in.Travelers)),
		}
	}
	if in.TripDate.IsZero() {
		return nil, &InputError{Field: "trip_date", Reason: "missing"}
	}
	if in.RoomType == "" {
		in.RoomType = RoomNone
	}
	if !ValidRoomType(in.RoomType) {
		return nil, &InputError{Field: "room_type", Reason: fmt.Sprintf("unknown option %q", in.RoomType)}
	}

	tripDate := NormalizeTripDate(in.TripDate)

	// Hold the per-(package,date) lock across check + insert so concurrent
	// requests cannot both observe the same remaining count.
	lockKey := capacityKey(in.PackageID, tripDate)
	s.capacityLocks.Lock(lockKey)
	defer s.capacityLocks.Unlock(lockKey)

	pkg, err := s.store.GetPackage(ctx, in.PackageID)
	if err != nil {
		return nil, wrapStore("load package", err)
	}
	if pkg == nil {
		return nil, fmt.Errorf("package %s: %w", in.PackageID, ErrNotFound)
	}
	if !pkg.Available {
		return nil, fmt.Errorf("package %s: %w", in.PackageID, ErrUnavailable)
	}

	booking := Booking{
		ID:             BookingID(uuid.NewString()),
		PackageID:      pkg.ID,
		UserID:         actor.UserID,
		TripDate:       tripDate,
		NumberOfPeople: in.NumberOfPeople,
		Travelers:      in.Travelers,
		RoomType:       in.RoomType,
		Insurance:      in.Insurance,
		TotalPrice:     ComputeTotal(pkg.Price, in.NumberOfPeople, in.RoomType, in.Insurance),
		Status:         StatusPending,
		RefundAmount:   decimal.Zero,
		CreatedAt:      s.now(),
	}

	err = s.store.WithTx(ctx, func(tx Store) error {
		// Re-validate inside the transaction: even a writer that bypassed
		// the lock cannot oversell.
		remaining, err := remainingSeats(ctx, tx, pkg, tripDate)
		if err != nil {
			return err
		}
		if in.NumberOfPeople > remaining {
			return &CapacityError{
				PackageID: pkg.ID,
				TripDate:  tripDate,
				Requested: in.NumberOfPeople,
				Remaining: remaining,
			}
		}
		return tx.InsertBooking(ctx, booking)
	})
	if err != nil {
		if errors.Is(err, ErrCapacityExceeded) {
			metrics.IncCapacityRejection()
			return nil, err
		}
		return nil, wrapStore("create booking", err)
	}

	metrics.IncBookingCreated()
	s.notifyOwner(ctx, booking.UserID,
		"Booking Initiated",
		fmt.Sprintf("Your booking for %s has been received. Please complete the payment to confirm.", pkg.Name),
		notify.KindBookingCreated,
		func(u *User) string {
			return notify.BookingCreatedEmail(u.Name, pkg.Name, tripDate.Format("2006-01-02"), booking.TotalPrice)
		})

	return &booking, nil
}

// =============================================================================
// CONFIRM - payment confirmation event
// =============================================================================

// ConfirmPayment moves a Pending booking to Confirmed and records the
// settlement pair in the owner's ledger. Re-confirming an already-Confirmed
// booking returns ErrAlreadyConfirmed: a no-op signal, not a failure state.
// Confirming a booking an admin rolled back to Pending succeeds without
// writing a second settlement pair.
func (s *Service) ConfirmPayment(ctx context.Context, actor Actor, id BookingID) (*Booking, error) {
	b, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionConfirmPayment, b.UserID); err != nil {
		return nil, err
	}

	switch b.Status {
	case StatusConfirmed:
		return nil, fmt.Errorf("booking %s: %w", id, ErrAlreadyConfirmed)
	case StatusCancelled, StatusCompleted:
		return nil, &StateTransitionError{BookingID: id, From: b.Status, To: StatusConfirmed}
	}

	now := s.now()
	updated := *b
	updated.Status = StatusConfirmed
	updated.PaymentDate = &now

	settled := 0
	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.UpdateBooking(ctx, updated, b.Version); err != nil {
			return err
		}
		// Payment was settled externally; record the audit pair so the
		// ledger still sums to the balance. A rolled-back booking being
		// re-confirmed finds its pair already recorded: the money moved
		// once, so the duplicate rows are skipped, not an error.
		for _, row := range wallet.NewSettlementPair(string(b.UserID), b.TotalPrice, string(b.ID), now) {
			switch err := tx.Apply(ctx, row); {
			case err == nil:
				settled++
			case errors.Is(err, wallet.ErrDuplicateTransaction):
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapStore("confirm payment", err)
	}

	metrics.IncBookingConfirmed()
	if settled > 0 {
		metrics.IncWalletTransaction(string(wallet.TypeDeposit))
		metrics.IncWalletTransaction(string(wallet.TypePayment))
	}
	s.notifyOwner(ctx, b.UserID,
		"Payment Successful",
		fmt.Sprintf("We have received your payment for booking #%s. Your trip is confirmed!", b.ID),
		notify.KindPaymentSuccess,
		func(u *User) string {
			return notify.PaymentSuccessEmail(u.Name, string(b.ID), b.TotalPrice)
		})

	return &updated, nil
}

// =============================================================================
// CANCEL - tiered refund, atomic wallet credit
// =============================================================================

// CancelBooking cancels a Pending or Confirmed booking, persists the refund
// amount and cancellation date, and - when the refund is positive - credits
// the owner's wallet and appends the refund row, all in one transaction.
// Returns the refund amount rounded to currency precision.
func (s *Service) CancelBooking(ctx context.Context, actor Actor, id BookingID) (decimal.Decimal, error) {
	b, err := s.loadBooking(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	if err := Authorize(actor, ActionCancelBooking, b.UserID); err != nil {
		return decimal.Zero, err
	}
	if b.Status.Terminal() {
		return decimal.Zero, &StateTransitionError{BookingID: id, From: b.Status, To: StatusCancelled}
	}

	now := s.now()
	// Rounded here because this value is being persisted; the fraction
	// math itself runs at full precision.
	refund := RefundAmount(b.TotalPrice, b.TripDate, now).Round(2)

	updated := *b
	updated.Status = StatusCancelled
	updated.RefundAmount = refund
	updated.CancellationDate = &now

	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.UpdateBooking(ctx, updated, b.Version); err != nil {
			return err
		}
		if refund.IsPositive() {
			return tx.Apply(ctx, wallet.NewRefund(string(b.UserID), refund, string(b.ID), now))
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, wrapStore("cancel booking", err)
	}

	metrics.IncBookingCancelled()
	if refund.IsPositive() {
		metrics.IncRefundIssued()
		metrics.IncWalletTransaction(string(wallet.TypeRefund))
	}
	s.notifyOwner(ctx, b.UserID,
		"Booking Cancelled",
		fmt.Sprintf("Your booking #%s has been cancelled. Refund of $%s initiated.", b.ID, refund.StringFixed(2)),
		notify.KindCancellation,
		func(u *User) string {
			return notify.CancellationEmail(u.Name, string(b.ID), refund)
		})

	return refund, nil
}

// =============================================================================
// ADMIN OVERRIDE - no refund logic attached
// =============================================================================

// OverrideStatus sets a booking's status directly. Staff only. Used
// operationally, e.g. marking a departed trip Completed. No refund or
// wallet logic runs on this path; the change is recorded in the activity
// log.
func (s *Service) OverrideStatus(ctx context.Context, actor Actor, id BookingID, status Status) (*Booking, error) {
	if err := Authorize(actor, ActionOverrideStatus, nil); err != nil {
		return nil, err
	}
	switch status {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
	default:
		return nil, &InputError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}

	b, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == status {
		return b, nil
	}

	updated := *b
	updated.Status = status

	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.UpdateBooking(ctx, updated, b.Version); err != nil {
			return err
		}
		return tx.AppendActivity(ctx, ActivityLog{
			ID:         uuid.NewString(),
			ActorID:    actor.UserID,
			Action:     "Booking Status Updated",
			EntityKind: "Booking",
			EntityID:   string(id),
			Details: map[string]string{
				"oldStatus": string(b.Status),
				"newStatus": string(status),
			},
			CreatedAt: s.now(),
		})
	})
	if err != nil {
		return nil, wrapStore("override status", err)
	}

	return &updated, nil
}

// =============================================================================
// READS
// =============================================================================

// GetBooking returns a booking the actor may view.
func (s *Service) GetBooking(ctx context.Context, actor Actor, id BookingID) (*Booking, error) {
	b, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionViewBooking, b.UserID); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBookings returns bookings visible to the actor. Non-staff actors are
// always scoped to their own bookings regardless of the filter.
func (s *Service) ListBookings(ctx context.Context, actor Actor, f BookingFilter) ([]Booking, error) {
	if !actor.Role.Staff() {
		uid := actor.UserID
		f.UserID = &uid
	}
	bookings, err := s.store.ListBookings(ctx, f)
	if err != nil {
		return nil, wrapStore("list bookings", err)
	}
	return bookings, nil
}

// Capacity returns the remaining seats for a package on a trip date.
func (s *Service) Capacity(ctx context.Context, packageID PackageID, tripDate time.Time) (int, error) {
	return AvailableCapacity(ctx, s.store, packageID, tripDate)
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Service) loadBooking(ctx context.Context, id BookingID) (*Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, wrapStore("load booking", err)
	}
	if b == nil {
		return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	return b, nil
}

// notifyOwner loads the owner and dispatches best-effort notifications.
// Failures never propagate.
func (s *Service) notifyOwner(ctx context.Context, userID UserID, title, message string, kind notify.Kind, html func(*User) string) {
	if s.dispatcher == nil {
		return
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil || u == nil {
		s.dispatcher.Dispatch(ctx, string(userID), "", title, message, "", kind)
		return
	}
	s.dispatcher.Dispatch(ctx, string(userID), u.Email, title, message, html(u), kind)
}

// wrapStore classifies an error coming back from the store: domain errors
// pass through untouched, infrastructure errors become DependencyFailure.
func wrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsClientError(err) || IsNotFound(err) ||
		errors.Is(err, ErrConflict) || errors.Is(err, ErrForbidden) ||
		errors.Is(err, wallet.ErrInsufficientBalance) ||
		errors.Is(err, wallet.ErrDuplicateTransaction) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrDependencyFailure, err)
}
