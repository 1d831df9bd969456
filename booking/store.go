/*
store.go - Persistence interfaces for the booking engine

PURPOSE:

	Defines the contract between the domain logic and the database. The
	engine never talks SQL; it talks these interfaces. Different
	implementations can use SQLite, PostgreSQL, or in-memory storage.

CONSISTENCY CONTRACT:

	The engine does not care how data hits disk, only that:
	- WithTx provides all-or-nothing semantics across every write made
	  through the Store it passes to fn
	- UpdateBooking enforces an optimistic version check so that two
	  transitions on the same booking cannot both win
	- Apply (wallet) pairs the balance mutation with its ledger row inside
	  the same transaction

IMPLEMENTATIONS:
  - store/sqlite:        Production SQLite (WAL mode)
  - booking/store:       In-memory, for tests and demos
*/
package booking

import (
	"context"
	"time"

	"github.com/voyago/booking-engine/wallet"
)

// =============================================================================
// PER-ENTITY STORES
// =============================================================================

type PackageStore interface {
	SavePackage(ctx context.Context, p Package) error
	GetPackage(ctx context.Context, id PackageID) (*Package, error)
	ListPackages(ctx context.Context) ([]Package, error)
}

// BookingFilter narrows admin booking listings.
type BookingFilter struct {
	Status    *Status
	PackageID *PackageID
	UserID    *UserID
	TripFrom  *time.Time
	TripTo    *time.Time
}

type BookingStore interface {
	// InsertBooking persists a new booking. Insert-only; status changes go
	// through UpdateBooking.
	InsertBooking(ctx context.Context, b Booking) error

	GetBooking(ctx context.Context, id BookingID) (*Booking, error)
	ListBookings(ctx context.Context, f BookingFilter) ([]Booking, error)

	// BookedSeats sums NumberOfPeople over Pending and Confirmed bookings
	// for the exact (package, normalized trip date) pair.
	BookedSeats(ctx context.Context, packageID PackageID, tripDate time.Time) (int, error)

	// UpdateBooking persists a status transition iff the stored version
	// equals expectedVersion, then increments the version. Returns
	// ErrConflict when the check loses, ErrNotFound when the row is gone.
	UpdateBooking(ctx context.Context, b Booking, expectedVersion int64) error
}

type UserStore interface {
	SaveUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id UserID) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUserRole(ctx context.Context, id UserID, role Role) error
}

// ReviewStore persists package reviews. Kept out of the aggregate Store:
// reviews never participate in lifecycle transactions.
type ReviewStore interface {
	// SaveReview upserts on (package, user).
	SaveReview(ctx context.Context, r Review) error
	ListReviews(ctx context.Context, packageID PackageID) ([]Review, error)
}

type ActivityStore interface {
	// AppendActivity records an audit entry. Append-only.
	AppendActivity(ctx context.Context, entry ActivityLog) error
	ListActivity(ctx context.Context, limit int) ([]ActivityLog, error)
}

// =============================================================================
// AGGREGATE STORE - Everything the lifecycle service needs
// =============================================================================

// Store aggregates all persistence concerns plus the wallet ledger store.
// WithTx executes fn against a Store whose writes commit or roll back as a
// unit; the lifecycle service relies on this to keep booking mutations and
// wallet mutations inseparable.
type Store interface {
	PackageStore
	BookingStore
	UserStore
	ActivityStore
	wallet.Store

	WithTx(ctx context.Context, fn func(Store) error) error
}
