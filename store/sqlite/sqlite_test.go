package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyago/booking-engine/booking"
	"github.com/voyago/booking-engine/notify"
	"github.com/voyago/booking-engine/store/sqlite"
	"github.com/voyago/booking-engine/wallet"
)

// =============================================================================
// TEST FIXTURE
// =============================================================================

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// newTestStore opens an in-memory database with the full schema and one
// seeded customer.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.SaveUser(context.Background(), booking.User{
		ID: "user-1", Name: "Alice", Email: "alice@example.com",
		Role: booking.RoleUser, CreatedAt: testNow,
	}))
	return s
}

func testBooking(id string, status booking.Status) booking.Booking {
	return booking.Booking{
		ID:             booking.BookingID(id),
		PackageID:      "pkg-bali",
		UserID:         "user-1",
		TripDate:       booking.NormalizeTripDate(testNow.AddDate(0, 0, 30)),
		NumberOfPeople: 2,
		Travelers: []booking.Traveler{
			{FirstName: "Alice", LastName: "A"},
			{FirstName: "Ben", LastName: "A"},
		},
		RoomType:     booking.RoomDouble,
		Insurance:    true,
		TotalPrice:   d("220"),
		Status:       status,
		RefundAmount: decimal.Zero,
		CreatedAt:    testNow,
	}
}

// =============================================================================
// PACKAGES
// =============================================================================

func TestPackages_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	missing, err := s.GetPackage(ctx, "pkg-ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)

	p := booking.Package{
		ID: "pkg-bali", Name: "Bali Escape", Destination: "Bali",
		Description: "Ten days of beaches",
		Price:       d("100"), MaxPeople: 5, Available: true,
		CreatedBy: "agent-1", CreatedAt: testNow,
	}
	require.NoError(t, s.SavePackage(ctx, p))

	got, err := s.GetPackage(ctx, "pkg-bali")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Destination, got.Destination)
	assert.True(t, got.Price.Equal(d("100")), "got %s", got.Price)
	assert.Equal(t, 5, got.MaxPeople)
	assert.True(t, got.Available)

	// Save again is an upsert, not a duplicate.
	p.Price = d("120")
	p.Available = false
	require.NoError(t, s.SavePackage(ctx, p))

	got, err = s.GetPackage(ctx, "pkg-bali")
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(d("120")))
	assert.False(t, got.Available)

	all, err := s.ListPackages(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// =============================================================================
// BOOKINGS
// =============================================================================

func TestBookings_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := testBooking("bk-1", booking.StatusPending)
	require.NoError(t, s.InsertBooking(ctx, b))

	got, err := s.GetBooking(ctx, "bk-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, b.PackageID, got.PackageID)
	assert.Equal(t, b.UserID, got.UserID)
	assert.Equal(t, b.TripDate, got.TripDate)
	assert.Equal(t, b.NumberOfPeople, got.NumberOfPeople)
	require.Len(t, got.Travelers, 2)
	assert.Equal(t, "Alice", got.Travelers[0].FirstName)
	assert.Equal(t, booking.RoomDouble, got.RoomType)
	assert.True(t, got.Insurance)
	assert.True(t, got.TotalPrice.Equal(d("220")), "got %s", got.TotalPrice)
	assert.Equal(t, booking.StatusPending, got.Status)
	assert.Nil(t, got.PaymentDate)
	assert.Equal(t, int64(0), got.Version)

	missing, err := s.GetBooking(ctx, "bk-ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBookedSeats_CountsOnlyActiveStatuses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	date := booking.NormalizeTripDate(testNow.AddDate(0, 0, 30))

	pending := testBooking("bk-1", booking.StatusPending)
	confirmed := testBooking("bk-2", booking.StatusConfirmed)
	cancelled := testBooking("bk-3", booking.StatusCancelled)
	otherDay := testBooking("bk-4", booking.StatusConfirmed)
	otherDay.TripDate = booking.NormalizeTripDate(testNow.AddDate(0, 0, 31))
	for _, b := range []booking.Booking{pending, confirmed, cancelled, otherDay} {
		require.NoError(t, s.InsertBooking(ctx, b))
	}

	seats, err := s.BookedSeats(ctx, "pkg-bali", date)
	require.NoError(t, err)

	// Two people each; the cancelled booking and the other date stay out.
	assert.Equal(t, 4, seats)
}

func TestUpdateBooking_VersionGuard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := testBooking("bk-1", booking.StatusPending)
	require.NoError(t, s.InsertBooking(ctx, b))

	b.Status = booking.StatusConfirmed
	paid := testNow
	b.PaymentDate = &paid
	require.NoError(t, s.UpdateBooking(ctx, b, 0))

	got, err := s.GetBooking(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, got.Status)
	assert.Equal(t, int64(1), got.Version)
	require.NotNil(t, got.PaymentDate)

	// The stale writer loses.
	b.Status = booking.StatusCancelled
	err = s.UpdateBooking(ctx, b, 0)
	assert.ErrorIs(t, err, booking.ErrConflict)

	// A missing row is not a conflict.
	ghost := testBooking("bk-ghost", booking.StatusConfirmed)
	err = s.UpdateBooking(ctx, ghost, 0)
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestListBookings_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveUser(ctx, booking.User{
		ID: "user-2", Name: "Bob", Email: "bob@example.com",
		Role: booking.RoleUser, CreatedAt: testNow,
	}))
	mine := testBooking("bk-1", booking.StatusPending)
	other := testBooking("bk-2", booking.StatusConfirmed)
	other.UserID = "user-2"
	require.NoError(t, s.InsertBooking(ctx, mine))
	require.NoError(t, s.InsertBooking(ctx, other))

	alice := booking.UserID("user-1")
	got, err := s.ListBookings(ctx, booking.BookingFilter{UserID: &alice})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, booking.BookingID("bk-1"), got[0].ID)

	confirmed := booking.StatusConfirmed
	got, err = s.ListBookings(ctx, booking.BookingFilter{Status: &confirmed})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, booking.BookingID("bk-2"), got[0].ID)
}

// =============================================================================
// WALLET
// =============================================================================

func TestApply_UpdatesBalanceAndHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Apply(ctx, wallet.NewDeposit("user-1", d("150"), "Top-up", testNow)))

	balance, err := s.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(d("150")), "got %s", balance)

	history, err := s.History(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, wallet.TypeDeposit, history[0].Type)
	assert.True(t, history[0].Amount.Equal(d("150")))
}

func TestApply_IdempotencyKeyBlocksRetries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Apply(ctx, wallet.NewRefund("user-1", d("90"), "bk-1", testNow)))
	err := s.Apply(ctx, wallet.NewRefund("user-1", d("90"), "bk-1", testNow))
	assert.ErrorIs(t, err, wallet.ErrDuplicateTransaction)

	// The retry left no second row and no double credit.
	balance, err := s.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(d("90")), "got %s", balance)
	history, err := s.History(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestApply_RejectsOverdraftAndUnknownUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Apply(ctx, wallet.Transaction{
		ID: "tx-1", UserID: "user-1", Amount: d("-10"),
		Type: wallet.TypePayment, Date: testNow,
	})
	assert.ErrorIs(t, err, wallet.ErrInsufficientBalance)

	err = s.Apply(ctx, wallet.NewDeposit("ghost", d("10"), "Top-up", testNow))
	assert.ErrorIs(t, err, wallet.ErrUserNotFound)

	balance, err := s.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestWithTx_RollsBackEverythingOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := testBooking("bk-1", booking.StatusPending)
	require.NoError(t, s.InsertBooking(ctx, b))

	// A status flip and an overdraw in one transaction: the wallet failure
	// must take the status flip down with it.
	err := s.WithTx(ctx, func(tx booking.Store) error {
		updated := b
		updated.Status = booking.StatusConfirmed
		if err := tx.UpdateBooking(ctx, updated, 0); err != nil {
			return err
		}
		return tx.Apply(ctx, wallet.Transaction{
			ID: "tx-1", UserID: "user-1", Amount: d("-500"),
			Type: wallet.TypePayment, Date: testNow,
		})
	})
	require.ErrorIs(t, err, wallet.ErrInsufficientBalance)

	got, err := s.GetBooking(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPending, got.Status)
	assert.Equal(t, int64(0), got.Version)

	history, err := s.History(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func TestNotifications_MarkReadScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n := notify.Notification{
		ID: "n-1", UserID: "user-1", Title: "Booking Initiated",
		Message: "Please pay", Kind: notify.KindBookingCreated, CreatedAt: testNow,
	}
	require.NoError(t, s.SaveNotification(ctx, n))

	err := s.MarkNotificationRead(ctx, "n-1", "user-2")
	assert.ErrorIs(t, err, booking.ErrNotFound)

	require.NoError(t, s.MarkNotificationRead(ctx, "n-1", "user-1"))
	ns, err := s.ListNotifications(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.True(t, ns[0].Read)
}

// =============================================================================
// REVIEWS
// =============================================================================

func TestReviews_UpsertPerTravelerAndPackage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := booking.Review{
		ID: "rv-1", PackageID: "pkg-bali", UserID: "user-1",
		Rating: 5, Comment: "Great", CreatedAt: testNow,
	}
	require.NoError(t, s.SaveReview(ctx, first))

	replacement := booking.Review{
		ID: "rv-2", PackageID: "pkg-bali", UserID: "user-1",
		Rating: 3, Comment: "On reflection", CreatedAt: testNow.Add(time.Hour),
	}
	require.NoError(t, s.SaveReview(ctx, replacement))

	got, err := s.ListReviews(ctx, "pkg-bali")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Rating)
	assert.Equal(t, "On reflection", got[0].Comment)

	other, err := s.ListReviews(ctx, "pkg-ghost")
	require.NoError(t, err)
	assert.Empty(t, other)
}

// =============================================================================
// ACTIVITY LOG
// =============================================================================

func TestActivity_DetailsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := booking.ActivityLog{
		ID: "act-1", ActorID: "agent-1",
		Action: "Booking Status Updated", EntityKind: "Booking", EntityID: "bk-1",
		Details:   map[string]string{"oldStatus": "Pending", "newStatus": "Confirmed"},
		CreatedAt: testNow,
	}
	require.NoError(t, s.AppendActivity(ctx, entry))

	got, err := s.ListActivity(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, booking.UserID("agent-1"), got[0].ActorID)
	assert.Equal(t, "Confirmed", got[0].Details["newStatus"])
}
