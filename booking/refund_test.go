package booking_test

import (
	"testing"
	"time"

	"github.com/voyago/booking-engine/booking"
)

// =============================================================================
// REFUND TIER BOUNDARY TESTS
// =============================================================================

func TestRefundFraction_TierBoundaries(t *testing.T) {
	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		lead     time.Duration
		expected string
	}{
		{"exactly 30 days", 30 * 24 * time.Hour, "0.9"},
		{"just under 30 days", 30*24*time.Hour - time.Minute, "0.5"},
		{"between tiers", 15 * 24 * time.Hour, "0.5"},
		{"exactly 7 days", 7 * 24 * time.Hour, "0.5"},
		{"just under 7 days", 7*24*time.Hour - time.Minute, "0"},
		{"day of trip", 0, "0"},
		{"trip already departed", -3 * 24 * time.Hour, "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fraction := booking.RefundFraction(now.Add(tc.lead), now)
			if !fraction.Equal(d(tc.expected)) {
				t.Errorf("lead %v: expected fraction %s, got %s", tc.lead, tc.expected, fraction)
			}
		})
	}
}

func TestRefundAmount_FullPrecisionUntilRounding(t *testing.T) {
	// GIVEN: total 1000, trip 35 days out
	// THEN: the refund is exactly 900

	now := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	trip := now.Add(35 * 24 * time.Hour)

	refund := booking.RefundAmount(d("1000"), trip, now)
	if !refund.Equal(d("900")) {
		t.Errorf("expected 900, got %s", refund)
	}
}

func TestRefundAmount_ZeroInsideWindow(t *testing.T) {
	now := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	trip := now.Add(2 * 24 * time.Hour)

	refund := booking.RefundAmount(d("1000"), trip, now)
	if !refund.IsZero() {
		t.Errorf("expected zero refund, got %s", refund)
	}
}
