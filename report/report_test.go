package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyago/booking-engine/booking"
	"github.com/voyago/booking-engine/booking/store"
	"github.com/voyago/booking-engine/report"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

// seedReportData builds two packages and four bookings:
//
//	June 10: 2 Bali bookings (1000 + 500), one Paris booking cancelled
//	June 12: 1 Paris booking (800)
//	July  1: 1 Bali booking (300), outside the June range
func seedReportData(t *testing.T) *store.Memory {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.SavePackage(ctx, booking.Package{
		ID: "pkg-bali", Name: "Bali Escape", Destination: "Bali", Price: d("100"), MaxPeople: 10, Available: true,
	}))
	require.NoError(t, mem.SavePackage(ctx, booking.Package{
		ID: "pkg-paris", Name: "Paris Getaway", Destination: "Paris", Price: d("200"), MaxPeople: 10, Available: true,
	}))
	require.NoError(t, mem.SavePackage(ctx, booking.Package{
		ID: "pkg-idle", Name: "Unsold Safari", Destination: "Kenya", Price: d("400"), MaxPeople: 10, Available: true,
	}))

	rows := []booking.Booking{
		{ID: "b1", PackageID: "pkg-bali", UserID: "u1", TripDate: day(t, "2026-06-10"),
			NumberOfPeople: 2, TotalPrice: d("1000"), Status: booking.StatusConfirmed},
		{ID: "b2", PackageID: "pkg-bali", UserID: "u2", TripDate: day(t, "2026-06-10"),
			NumberOfPeople: 1, TotalPrice: d("500"), Status: booking.StatusPending},
		{ID: "b3", PackageID: "pkg-paris", UserID: "u1", TripDate: day(t, "2026-06-10"),
			NumberOfPeople: 3, TotalPrice: d("900"), Status: booking.StatusCancelled},
		{ID: "b4", PackageID: "pkg-paris", UserID: "u3", TripDate: day(t, "2026-06-12"),
			NumberOfPeople: 2, TotalPrice: d("800"), Status: booking.StatusCompleted},
		{ID: "b5", PackageID: "pkg-bali", UserID: "u1", TripDate: day(t, "2026-07-01"),
			NumberOfPeople: 1, TotalPrice: d("300"), Status: booking.StatusConfirmed},
	}
	for _, b := range rows {
		require.NoError(t, mem.InsertBooking(ctx, b))
	}
	return mem
}

func TestDayWise(t *testing.T) {
	mem := seedReportData(t)
	r := report.New(mem)

	rows, err := r.DayWise(context.Background(), day(t, "2026-06-01"), day(t, "2026-06-30"))
	require.NoError(t, err)

	// Two active days in June; the cancelled Paris booking on the 10th is
	// excluded from every column.
	require.Len(t, rows, 2)

	assert.Equal(t, day(t, "2026-06-10"), rows[0].Date)
	assert.True(t, rows[0].Sales.Equal(d("1500")))
	assert.Equal(t, 2, rows[0].Bookings)
	assert.Equal(t, 3, rows[0].Travelers)

	assert.Equal(t, day(t, "2026-06-12"), rows[1].Date)
	assert.True(t, rows[1].Sales.Equal(d("800")))
	assert.Equal(t, 1, rows[1].Bookings)
	assert.Equal(t, 2, rows[1].Travelers)
}

func TestDayWise_EmptyRange(t *testing.T) {
	mem := seedReportData(t)
	r := report.New(mem)

	rows, err := r.DayWise(context.Background(), day(t, "2026-09-01"), day(t, "2026-09-30"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPackageWise(t *testing.T) {
	mem := seedReportData(t)
	r := report.New(mem)

	rows, err := r.PackageWise(context.Background(), day(t, "2026-06-01"), day(t, "2026-06-30"))
	require.NoError(t, err)

	// All three packages appear, sorted by sales descending; the never-sold
	// package shows a zero row.
	require.Len(t, rows, 3)

	assert.Equal(t, booking.PackageID("pkg-bali"), rows[0].PackageID)
	assert.True(t, rows[0].Sales.Equal(d("1500")))
	assert.Equal(t, 2, rows[0].Bookings)
	assert.Equal(t, 3, rows[0].Travelers)

	assert.Equal(t, booking.PackageID("pkg-paris"), rows[1].PackageID)
	assert.True(t, rows[1].Sales.Equal(d("800")))
	assert.Equal(t, 1, rows[1].Bookings)

	assert.Equal(t, booking.PackageID("pkg-idle"), rows[2].PackageID)
	assert.True(t, rows[2].Sales.IsZero())
	assert.Equal(t, 0, rows[2].Bookings)
}

func TestPackageWise_OrphanPackageStillReported(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.InsertBooking(ctx, booking.Booking{
		ID: "b1", PackageID: "pkg-gone", UserID: "u1", TripDate: day(t, "2026-06-10"),
		NumberOfPeople: 1, TotalPrice: d("250"), Status: booking.StatusConfirmed,
	}))

	rows, err := report.New(mem).PackageWise(ctx, day(t, "2026-06-01"), day(t, "2026-06-30"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, booking.PackageID("pkg-gone"), rows[0].PackageID)
	assert.True(t, rows[0].Sales.Equal(d("250")))
}
