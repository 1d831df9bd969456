/*
pricing.go - Total price computation

PURPOSE:

	Computes the total price of a booking from the package base price, the
	party size, the room option, and the insurance add-on. The result is
	frozen into the Booking record at creation; later package price changes
	never retroactively alter existing bookings.

THE RULE:

	surcharge     = 500 if roomType == Suite, else 0   (flat, applied ONCE,
	                                                    not per person)
	insuranceCost = 0.10 * basePrice if insured, else 0 (on the base price
	                                                    alone - not the
	                                                    surcharge-adjusted
	                                                    price, and not
	                                                    multiplied by the
	                                                    party size)
	total         = (basePrice + surcharge) * numberOfPeople + insuranceCost

	The insurance rule is easy to misread: ComputeTotal(100, 2, Suite, true)
	is (100+500)*2 + 10 = 1210, NOT (100+500)*2*1.10. This is intended
	business policy, preserved exactly.
*/
package booking

import "github.com/shopspring/decimal"

// Pricing constants.
var (
	suiteSurcharge = decimal.NewFromInt(500)
	insuranceRate  = decimal.RequireFromString("0.10")
)

// ComputeTotal returns the total booking price. Pure; no rounding is applied
// here - amounts are rounded to currency precision only at persistence or
// display time.
func ComputeTotal(basePrice decimal.Decimal, numberOfPeople int, roomType RoomType, insurance bool) decimal.Decimal {
	surcharge := decimal.Zero
	if roomType == RoomSuite {
		surcharge = suiteSurcharge
	}

	insuranceCost := decimal.Zero
	if insurance {
		insuranceCost = basePrice.Mul(insuranceRate)
	}

	perPerson := basePrice.Add(surcharge)
	return perPerson.Mul(decimal.NewFromInt(int64(numberOfPeople))).Add(insuranceCost)
}
