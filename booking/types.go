/*
Package booking provides the core travel-package booking engine.

PURPOSE:

	This package contains the domain types and algorithms for selling
	fixed-capacity travel packages: remaining-seat calculation, price
	computation, the booking lifecycle state machine, and the tiered
	cancellation refund policy.

KEY CONCEPTS IN THIS FILE (types.go):
  - Package: A sellable itinerary with a price and a per-date seat capacity
  - Booking: A customer's reservation for a (package, trip date, party size)
  - Traveler: One member of a booking's party
  - User/Actor: Identity and role used for authorization decisions

DESIGN PRINCIPLES:
 1. Precision: Uses decimal.Decimal for all money, never float64
 2. Frozen prices: TotalPrice is computed once at creation and never
    recomputed from the package
 3. Normalized dates: TripDate is always truncated to UTC midnight so
    bookings for the same calendar day aggregate together
 4. Optimistic versioning: Booking carries a Version guarding concurrent
    status transitions

SEE ALSO:
  - capacity.go: Remaining-seat calculation
  - pricing.go:  Total price computation
  - refund.go:   Cancellation refund tiers
  - lifecycle.go: The Pending/Confirmed/Cancelled/Completed state machine
*/
package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PackageID string
type BookingID string
type UserID string

// =============================================================================
// PACKAGE - A sellable travel itinerary
// =============================================================================

type Package struct {
	ID          PackageID
	Name        string
	Destination string
	Description string
	Price       decimal.Decimal // Base price per person
	MaxPeople   int             // Seat capacity per trip date
	Available   bool            // Soft-deactivation flag; never hard-deleted
	StartDate   time.Time
	EndDate     time.Time
	CreatedBy   UserID
	CreatedAt   time.Time
}

// =============================================================================
// BOOKING - A reservation against a package
// =============================================================================

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
	StatusCompleted Status = "Completed"
)

// Terminal reports whether no further customer-driven transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// ConsumesCapacity reports whether a booking in this status holds seats.
// Completed is excluded deliberately: a completed trip's capacity is moot.
func (s Status) ConsumesCapacity() bool {
	return s == StatusPending || s == StatusConfirmed
}

type RoomType string

const (
	RoomSingle RoomType = "Single"
	RoomDouble RoomType = "Double"
	RoomSuite  RoomType = "Suite"
	RoomNone   RoomType = "N/A"
)

// ValidRoomType reports whether rt is one of the accepted room options.
func ValidRoomType(rt RoomType) bool {
	switch rt {
	case RoomSingle, RoomDouble, RoomSuite, RoomNone:
		return true
	}
	return false
}

// Traveler holds per-person details collected at booking time.
type Traveler struct {
	FirstName      string
	LastName       string
	DateOfBirth    time.Time
	PassportNumber string
}

type Booking struct {
	ID             BookingID
	PackageID      PackageID
	UserID         UserID
	TripDate       time.Time // Always normalized to UTC midnight
	NumberOfPeople int
	Travelers      []Traveler // len(Travelers) == NumberOfPeople, always
	RoomType       RoomType
	Insurance      bool
	TotalPrice     decimal.Decimal // Frozen at creation
	Status         Status

	// Set only on cancellation.
	RefundAmount     decimal.Decimal
	CancellationDate *time.Time

	// Set only on payment confirmation.
	PaymentDate *time.Time

	CreatedAt time.Time

	// Version guards concurrent status transitions (optimistic check).
	// Incremented by the store on every successful status update.
	Version int64
}

// =============================================================================
// USER - Identity, role, wallet balance
// =============================================================================

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

func (r Role) Staff() bool { return r == RoleAgent || r == RoleAdmin }

type User struct {
	ID            UserID
	Name          string
	Email         string
	Role          Role
	WalletBalance decimal.Decimal // Always equals the signed sum of the user's ledger
	CreatedAt     time.Time
}

// =============================================================================
// ACTIVITY LOG - Append-only admin audit trail
// =============================================================================

type ActivityLog struct {
	ID         string
	ActorID    UserID
	Action     string // e.g. "Booking Status Updated", "User Role Changed"
	EntityKind string // "Booking", "User"
	EntityID   string
	Details    map[string]string
	CreatedAt  time.Time
}

// =============================================================================
// REVIEW - Traveler feedback on a package
// =============================================================================

// Review is a traveler's rating of a package. One review per traveler per
// package; resubmitting replaces the earlier one.
type Review struct {
	ID        string
	PackageID PackageID
	UserID    UserID
	Rating    int // 1..5
	Comment   string
	CreatedAt time.Time
}

// =============================================================================
// TIME NORMALIZATION
// =============================================================================

// NormalizeTripDate truncates a trip date to UTC midnight. Every booking for
// the same calendar day must land on the same key, regardless of the
// time-of-day the client sent.
func NormalizeTripDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// capacityKey is the serialization key for capacity-affecting writes.
// Two bookings for different packages or dates never contend.
func capacityKey(packageID PackageID, tripDate time.Time) string {
	return string(packageID) + "|" + tripDate.Format("2006-01-02")
}
