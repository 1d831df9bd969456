package booking_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/voyago/booking-engine/booking"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// =============================================================================
// PRICING DETERMINISM TESTS
// =============================================================================

func TestComputeTotal_SuiteWithInsurance(t *testing.T) {
	// GIVEN: base 100, 2 people, Suite, insurance
	// WHEN: computing the total
	// THEN: (100+500)*2 + 0.10*100 = 1210

	total := booking.ComputeTotal(d("100"), 2, booking.RoomSuite, true)
	if !total.Equal(d("1210")) {
		t.Errorf("expected 1210, got %s", total)
	}
}

func TestComputeTotal_SuiteSurchargeNotPerPerson(t *testing.T) {
	// The surcharge is added to the per-person price before multiplying,
	// so it scales with party size exactly once per person.
	total := booking.ComputeTotal(d("100"), 3, booking.RoomSuite, false)
	if !total.Equal(d("1800")) {
		t.Errorf("expected 1800, got %s", total)
	}
}

func TestComputeTotal_InsuranceOnBaseOnly(t *testing.T) {
	// GIVEN: insurance with a large party and a Suite
	// THEN: the insurance component is 10% of base price, ignoring both

	withInsurance := booking.ComputeTotal(d("200"), 5, booking.RoomSuite, true)
	without := booking.ComputeTotal(d("200"), 5, booking.RoomSuite, false)

	if !withInsurance.Sub(without).Equal(d("20")) {
		t.Errorf("insurance component should be 20, got %s", withInsurance.Sub(without))
	}
}

func TestComputeTotal_NonSuiteRooms(t *testing.T) {
	for _, rt := range []booking.RoomType{booking.RoomSingle, booking.RoomDouble, booking.RoomNone} {
		total := booking.ComputeTotal(d("150"), 2, rt, false)
		if !total.Equal(d("300")) {
			t.Errorf("room type %s: expected 300, got %s", rt, total)
		}
	}
}

func TestComputeTotal_Deterministic(t *testing.T) {
	a := booking.ComputeTotal(d("99.99"), 4, booking.RoomDouble, true)
	b := booking.ComputeTotal(d("99.99"), 4, booking.RoomDouble, true)
	if !a.Equal(b) {
		t.Errorf("same inputs produced %s and %s", a, b)
	}
}
