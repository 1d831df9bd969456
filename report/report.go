/*
Package report aggregates booking data into sales reports.

PURPOSE:

	Produces the two admin-facing views over a trip-date range:
	- Day-wise:     sales, booking count, traveler count per calendar day
	- Package-wise: the same totals per package, including packages with
	  zero sales in the period

	Cancelled bookings never count toward sales; Pending, Confirmed and
	Completed do. The sale is attributed to the trip date, not the
	creation date.

EXPORT:

	Reports can be rendered to XLSX for download (see export.go).
*/
package report

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voyago/booking-engine/booking"
)

// DayRow is one calendar day's aggregate.
type DayRow struct {
	Date      time.Time
	Sales     decimal.Decimal
	Bookings  int
	Travelers int
}

// PackageRow is one package's aggregate over the period.
type PackageRow struct {
	PackageID   booking.PackageID
	PackageName string
	Destination string
	Sales       decimal.Decimal
	Bookings    int
	Travelers   int
}

// Reporter builds reports from the booking store.
type Reporter struct {
	store booking.Store
}

func New(store booking.Store) *Reporter {
	return &Reporter{store: store}
}

// countsTowardSales reports whether a booking's revenue is realized or
// still expected. Cancelled is the only excluded status.
func countsTowardSales(s booking.Status) bool {
	return s != booking.StatusCancelled
}

func (r *Reporter) bookingsInRange(ctx context.Context, from, to time.Time) ([]booking.Booking, error) {
	from = booking.NormalizeTripDate(from)
	to = booking.NormalizeTripDate(to)
	return r.store.ListBookings(ctx, booking.BookingFilter{
		TripFrom: &from,
		TripTo:   &to,
	})
}

// DayWise aggregates sales per trip date over [from, to]. Days without
// bookings are omitted.
func (r *Reporter) DayWise(ctx context.Context, from, to time.Time) ([]DayRow, error) {
	bookings, err := r.bookingsInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]*DayRow)
	for _, b := range bookings {
		if !countsTowardSales(b.Status) {
			continue
		}
		key := b.TripDate.Format("2006-01-02")
		row, ok := byDay[key]
		if !ok {
			row = &DayRow{Date: b.TripDate, Sales: decimal.Zero}
			byDay[key] = row
		}
		row.Sales = row.Sales.Add(b.TotalPrice)
		row.Bookings++
		row.Travelers += b.NumberOfPeople
	}

	rows := make([]DayRow, 0, len(byDay))
	for _, row := range byDay {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows, nil
}

// PackageWise aggregates sales per package over [from, to]. Every known
// package appears, zero-sales packages included, so underperformers are
// visible.
func (r *Reporter) PackageWise(ctx context.Context, from, to time.Time) ([]PackageRow, error) {
	packages, err := r.store.ListPackages(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := r.bookingsInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	byPackage := make(map[booking.PackageID]*PackageRow, len(packages))
	order := make([]booking.PackageID, 0, len(packages))
	for _, p := range packages {
		byPackage[p.ID] = &PackageRow{
			PackageID:   p.ID,
			PackageName: p.Name,
			Destination: p.Destination,
			Sales:       decimal.Zero,
		}
		order = append(order, p.ID)
	}

	for _, b := range bookings {
		if !countsTowardSales(b.Status) {
			continue
		}
		row, ok := byPackage[b.PackageID]
		if !ok {
			// Booking against a package record that has since vanished;
			// still report it rather than silently dropping revenue.
			row = &PackageRow{PackageID: b.PackageID, PackageName: string(b.PackageID), Sales: decimal.Zero}
			byPackage[b.PackageID] = row
			order = append(order, b.PackageID)
		}
		row.Sales = row.Sales.Add(b.TotalPrice)
		row.Bookings++
		row.Travelers += b.NumberOfPeople
	}

	rows := make([]PackageRow, 0, len(order))
	for _, id := range order {
		rows = append(rows, *byPackage[id])
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Sales.GreaterThan(rows[j].Sales)
	})
	return rows, nil
}
