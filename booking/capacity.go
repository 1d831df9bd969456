/*
capacity.go - Remaining-seat calculation

PURPOSE:

	A package seats at most MaxPeople per trip date. Remaining capacity is
	MaxPeople minus the party sizes of every Pending and Confirmed booking
	for that exact (package, date) pair. Cancelled bookings release their
	seats; Completed bookings are excluded because a finished trip's
	capacity is moot (a Confirmed booking moving to Completed never "frees"
	capacity - the trip already happened).

CONCURRENCY:

	This file only computes. Serializing the check against the insert is the
	lifecycle service's job (see keylock.go and lifecycle.go).
*/
package booking

import (
	"context"
	"fmt"
	"time"
)

// AvailableCapacity returns the remaining seats for a package on the given
// trip date. The date is normalized before the lookup.
//
// Errors: ErrNotFound when the package doesn't exist, ErrUnavailable when
// it has been deactivated.
func AvailableCapacity(ctx context.Context, store Store, packageID PackageID, tripDate time.Time) (int, error) {
	pkg, err := store.GetPackage(ctx, packageID)
	if err != nil {
		return 0, fmt.Errorf("load package: %w", err)
	}
	if pkg == nil {
		return 0, fmt.Errorf("package %s: %w", packageID, ErrNotFound)
	}
	if !pkg.Available {
		return 0, fmt.Errorf("package %s: %w", packageID, ErrUnavailable)
	}

	return remainingSeats(ctx, store, pkg, NormalizeTripDate(tripDate))
}

// remainingSeats computes MaxPeople minus the booked sum. tripDate must
// already be normalized.
func remainingSeats(ctx context.Context, store Store, pkg *Package, tripDate time.Time) (int, error) {
	booked, err := store.BookedSeats(ctx, pkg.ID, tripDate)
	if err != nil {
		return 0, fmt.Errorf("sum booked seats: %w", err)
	}
	return pkg.MaxPeople - booked, nil
}
