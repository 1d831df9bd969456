/*
errors.go - Centralized error taxonomy for the booking engine

PURPOSE:

	All booking error kinds in one place for consistency and discoverability.
	Callers classify with errors.Is/errors.As; the HTTP layer maps each kind
	to a stable status code and message.

ERROR CATEGORIES:
 1. Lookup errors     - NotFound, Unavailable
 2. Validation errors - InvalidInput (traveler mismatch, bad dates)
 3. Business errors   - CapacityExceeded, InvalidStateTransition,
    AlreadyConfirmed, Forbidden
 4. Infrastructure    - Conflict (optimistic check lost), DependencyFailure

USAGE:

	var capErr *booking.CapacityError
	if errors.As(err, &capErr) {
	    // capErr.Remaining for user-facing messaging
	}

SEE ALSO:
  - lifecycle.go: Where most of these are produced
  - api/handlers.go: HTTP status mapping
*/
package booking

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is returned when a package has been soft-deactivated.
	ErrUnavailable = errors.New("package unavailable")

	// ErrForbidden is returned on authorization failure.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned for malformed or inconsistent request data.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCapacityExceeded is returned when a package+date cannot seat the
	// requested party. The CapacityError wrapper carries the remaining count.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInvalidStateTransition is returned for a disallowed lifecycle move,
	// e.g. cancelling a Completed booking.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrAlreadyConfirmed signals that a confirmation was a no-op because the
	// booking is already Confirmed. Not an error state; a retry signal.
	ErrAlreadyConfirmed = errors.New("booking already confirmed")

	// ErrConflict is returned when an optimistic version check lost a race.
	// Safe to retry.
	ErrConflict = errors.New("concurrent modification detected")

	// ErrDependencyFailure is returned when the data store or a required
	// collaborator is unreachable mid-operation.
	ErrDependencyFailure = errors.New("dependency failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// CapacityError reports how many seats were requested versus left.
// Remaining is surfaced to clients ("Only 3 spots left").
type CapacityError struct {
	PackageID PackageID
	TripDate  time.Time
	Requested int
	Remaining int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("only %d spots left on %s (requested %d)",
		e.Remaining, e.TripDate.Format("2006-01-02"), e.Requested)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// StateTransitionError reports a disallowed lifecycle move.
type StateTransitionError struct {
	BookingID BookingID
	From      Status
	To        Status
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("booking %s is %s, cannot move to %s", e.BookingID, e.From, e.To)
}

func (e *StateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

// InputError reports a validation failure with the offending field.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsClientError returns true if the error is due to the caller's request
// rather than a system fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrInvalidStateTransition) ||
		errors.Is(err, ErrAlreadyConfirmed) ||
		errors.Is(err, ErrUnavailable)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
