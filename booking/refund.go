/*
refund.go - Tiered cancellation refund policy

PURPOSE:

	Pure, deterministic mapping from time-until-trip to a refund fraction.
	Used only during cancellation.

THE TIERS:

	daysUntilTrip >= 30   -> 0.90
	daysUntilTrip >=  7   -> 0.50
	otherwise             -> 0

	daysUntilTrip is fractional, not floored: 29.999 days before the trip is
	the 0.50 tier, not 0.90. Exactly 30 days is 0.90; exactly 7 days is 0.50.

PAST-DATED TRIPS:

	A negative daysUntilTrip yields fraction 0. Cancelling a trip that has
	already departed is permitted and simply refunds nothing; it is not a
	policy error.

ROUNDING:

	RefundAmount keeps full precision. Round to 2 decimal places only when
	persisting or displaying, never in intermediate computation.
*/
package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// Refund fractions per tier.
var (
	refundFull    = decimal.RequireFromString("0.90")
	refundPartial = decimal.RequireFromString("0.50")
)

// Tier thresholds in days before departure.
const (
	fullRefundDays    = 30.0
	partialRefundDays = 7.0
)

// RefundFraction returns the fraction of the total price returned when a
// booking with the given trip date is cancelled at time now.
func RefundFraction(tripDate, now time.Time) decimal.Decimal {
	daysUntilTrip := tripDate.Sub(now).Hours() / 24

	switch {
	case daysUntilTrip >= fullRefundDays:
		return refundFull
	case daysUntilTrip >= partialRefundDays:
		return refundPartial
	default:
		return decimal.Zero
	}
}

// RefundAmount returns totalPrice scaled by the refund fraction, at full
// precision.
func RefundAmount(totalPrice decimal.Decimal, tripDate, now time.Time) decimal.Decimal {
	return totalPrice.Mul(RefundFraction(tripDate, now))
}
