package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyago/booking-engine/api"
	"github.com/voyago/booking-engine/booking"
	"github.com/voyago/booking-engine/booking/store"
	"github.com/voyago/booking-engine/notify"
	"github.com/voyago/booking-engine/report"
	"github.com/voyago/booking-engine/wallet"
)

// =============================================================================
// TEST FIXTURE
// =============================================================================

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type testServer struct {
	router http.Handler
	mem    *store.Memory
	tokens *api.TokenIssuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mem := store.NewMemory()
	dispatcher := notify.NewDispatcher(&notify.StoreNotifier{Store: mem}, nil)
	svc := booking.NewService(mem, dispatcher).WithClock(func() time.Time { return testNow })
	tokens := api.NewTokenIssuer("test-secret")

	h := api.NewHandler(mem, svc, wallet.NewLedger(mem), report.New(mem), mem, mem, tokens)

	ctx := context.Background()
	require.NoError(t, mem.SaveUser(ctx, booking.User{
		ID: "user-1", Name: "Alice", Email: "alice@example.com", Role: booking.RoleUser,
	}))
	require.NoError(t, mem.SaveUser(ctx, booking.User{
		ID: "user-2", Name: "Bob", Email: "bob@example.com", Role: booking.RoleUser,
	}))
	require.NoError(t, mem.SaveUser(ctx, booking.User{
		ID: "agent-1", Name: "Carol", Email: "carol@example.com", Role: booking.RoleAgent,
	}))
	require.NoError(t, mem.SaveUser(ctx, booking.User{
		ID: "admin", Name: "Root", Email: "admin@example.com", Role: booking.RoleAdmin,
	}))
	require.NoError(t, mem.SavePackage(ctx, booking.Package{
		ID: "pkg-bali", Name: "Bali Escape", Destination: "Bali",
		Price: decimal.RequireFromString("100"), MaxPeople: 5, Available: true,
	}))

	return &testServer{router: api.NewRouter(h), mem: mem, tokens: tokens}
}

// do performs a request as the given user; empty userID means anonymous.
func (ts *testServer) do(t *testing.T, method, path, userID string, role booking.Role, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		token, err := ts.tokens.CreateToken(booking.UserID(userID), role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

func tripDate(days int) string { return testNow.AddDate(0, 0, days).Format("2006-01-02") }

func createBookingRequest(days, people int) api.CreateBookingRequest {
	req := api.CreateBookingRequest{
		PackageID:      "pkg-bali",
		TripDate:       tripDate(days),
		NumberOfPeople: people,
	}
	for i := 0; i < people; i++ {
		req.Travelers = append(req.Travelers, api.TravelerDTO{FirstName: "T", LastName: "Raveler"})
	}
	return req
}

// =============================================================================
// AUTH
// =============================================================================

func TestAuth_MissingOrInvalidToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/bookings", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec2 := httptest.NewRecorder()
	ts.router.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusUnauthorized, rec2.Code)
}

func TestIssueToken_RoundTrip(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/auth/token", "", "", api.TokenRequest{UserID: "user-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[api.TokenResponse](t, rec)
	require.NotEmpty(t, resp.Token)

	// The issued token must authenticate a real request.
	req := httptest.NewRequest(http.MethodGet, "/api/wallet", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rec2 := httptest.NewRecorder()
	ts.router.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusOK, rec2.Code)
}

func TestIssueToken_UnknownUser(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/auth/token", "", "", api.TokenRequest{UserID: "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// BOOKING FLOW
// =============================================================================

func TestBookingFlow_CreateConfirmWallet(t *testing.T) {
	ts := newTestServer(t)

	req := createBookingRequest(40, 2)
	req.RoomType = "Suite"
	req.Insurance = true
	rec := ts.do(t, http.MethodPost, "/api/bookings", "user-1", booking.RoleUser, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[api.BookingDTO](t, rec)
	assert.Equal(t, "1210.00", created.TotalPrice)
	assert.Equal(t, "Pending", created.Status)
	assert.Equal(t, tripDate(40), created.TripDate)

	rec = ts.do(t, http.MethodPost, "/api/bookings/"+created.ID+"/payment", "user-1", booking.RoleUser, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	confirmed := decode[api.BookingDTO](t, rec)
	assert.Equal(t, "Confirmed", confirmed.Status)
	assert.NotEmpty(t, confirmed.PaymentDate)

	// The external settlement shows up as a zero-net pair.
	rec = ts.do(t, http.MethodGet, "/api/wallet", "user-1", booking.RoleUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	w := decode[api.WalletDTO](t, rec)
	assert.Equal(t, "0.00", w.Balance)
	assert.Len(t, w.Transactions, 2)
}

func TestCreateBooking_BadTripDate(t *testing.T) {
	ts := newTestServer(t)
	req := createBookingRequest(40, 1)
	req.TripDate = "tomorrow"
	rec := ts.do(t, http.MethodPost, "/api/bookings", "user-1", booking.RoleUser, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBooking_CapacityConflictBody(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/bookings", "user-1", booking.RoleUser, createBookingRequest(20, 5))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/bookings", "user-2", booking.RoleUser, createBookingRequest(20, 1))
	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decode[api.ErrorResponse](t, rec)
	require.NotNil(t, resp.RemainingCapacity)
	assert.Equal(t, 0, *resp.RemainingCapacity)
}

func TestCancelBooking_RefundInResponse(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/bookings", "user-1", booking.RoleUser, createBookingRequest(35, 1))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[api.BookingDTO](t, rec)

	// Total 100 cancelled 35 days out: 90% tier.
	rec = ts.do(t, http.MethodPost, "/api/bookings/"+created.ID+"/cancel", "user-1", booking.RoleUser, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[api.CancelResponse](t, rec)
	assert.Equal(t, "90.00", resp.RefundAmount)
	assert.Equal(t, "Cancelled", resp.Status)

	// Cancelling again is a state-machine conflict.
	rec = ts.do(t, http.MethodPost, "/api/bookings/"+created.ID+"/cancel", "user-1", booking.RoleUser, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetBooking_ErrorMapping(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/bookings/nope", "user-1", booking.RoleUser, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	create := ts.do(t, http.MethodPost, "/api/bookings", "user-1", booking.RoleUser, createBookingRequest(10, 1))
	require.Equal(t, http.StatusCreated, create.Code)
	b := decode[api.BookingDTO](t, create)

	rec = ts.do(t, http.MethodGet, "/api/bookings/"+b.ID, "user-2", booking.RoleUser, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/bookings/"+b.ID, "agent-1", booking.RoleAgent, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// =============================================================================
// CAPACITY ENDPOINT
// =============================================================================

func TestGetCapacity(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/bookings", "user-1", booking.RoleUser, createBookingRequest(20, 3))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/packages/pkg-bali/capacity?date="+tripDate(20), "user-1", booking.RoleUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[api.CapacityDTO](t, rec)
	assert.Equal(t, 2, resp.RemainingCapacity)

	rec = ts.do(t, http.MethodGet, "/api/packages/pkg-bali/capacity?date=soon", "user-1", booking.RoleUser, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// PACKAGES
// =============================================================================

func TestPackages_ManageRequiresStaff(t *testing.T) {
	ts := newTestServer(t)
	body := api.SavePackageRequest{Name: "Alps Trek", Destination: "Alps", Price: "750", MaxPeople: 8}

	rec := ts.do(t, http.MethodPost, "/api/packages", "user-1", booking.RoleUser, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/packages", "agent-1", booking.RoleAgent, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[api.PackageDTO](t, rec)
	assert.Equal(t, "750.00", created.Price)
	assert.True(t, created.Available)
}

func TestPackages_Validation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/packages", "agent-1", booking.RoleAgent,
		api.SavePackageRequest{Name: "Bad", Destination: "X", Price: "not-money", MaxPeople: 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/packages", "agent-1", booking.RoleAgent,
		api.SavePackageRequest{Name: "", Destination: "X", Price: "10", MaxPeople: 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePackage_OmittedAvailableKeepsState(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.mem.SavePackage(context.Background(), booking.Package{
		ID: "pkg-retired", Name: "Retired Tour", Destination: "Nowhere",
		Price: decimal.RequireFromString("300"), MaxPeople: 4, Available: false,
	}))

	// A price edit that says nothing about availability must not put the
	// package back on sale.
	rec := ts.do(t, http.MethodPut, "/api/packages/pkg-retired", "agent-1", booking.RoleAgent,
		api.SavePackageRequest{Name: "Retired Tour", Destination: "Nowhere", Price: "275", MaxPeople: 4})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[api.PackageDTO](t, rec)
	assert.False(t, updated.Available)
	assert.Equal(t, "275.00", updated.Price)

	// Reactivation has to be asked for explicitly.
	onSale := true
	rec = ts.do(t, http.MethodPut, "/api/packages/pkg-retired", "agent-1", booking.RoleAgent,
		api.SavePackageRequest{Name: "Retired Tour", Destination: "Nowhere", Price: "275", MaxPeople: 4, Available: &onSale})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[api.PackageDTO](t, rec).Available)
}

// =============================================================================
// REVIEWS
// =============================================================================

func TestPackageReviews_RequireCompletedTrip(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/bookings", "user-1", booking.RoleUser, createBookingRequest(10, 1))
	require.Equal(t, http.StatusCreated, rec.Code)
	b := decode[api.BookingDTO](t, rec)

	// Trip not completed yet.
	rec = ts.do(t, http.MethodPost, "/api/packages/pkg-bali/reviews", "user-1", booking.RoleUser,
		api.SaveReviewRequest{Rating: 5, Comment: "Great"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/bookings/"+b.ID+"/status", "agent-1", booking.RoleAgent,
		api.SetStatusRequest{Status: "Completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/packages/pkg-bali/reviews", "user-1", booking.RoleUser,
		api.SaveReviewRequest{Rating: 5, Comment: "Great"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[api.ReviewDTO](t, rec)
	assert.Equal(t, 5, created.Rating)
	assert.Equal(t, "user-1", created.UserID)

	// Someone who never booked stays locked out.
	rec = ts.do(t, http.MethodPost, "/api/packages/pkg-bali/reviews", "user-2", booking.RoleUser,
		api.SaveReviewRequest{Rating: 1, Comment: "Never went"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPackageReviews_ResubmitReplacesAndValidates(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/bookings", "user-1", booking.RoleUser, createBookingRequest(10, 1))
	require.Equal(t, http.StatusCreated, rec.Code)
	b := decode[api.BookingDTO](t, rec)
	rec = ts.do(t, http.MethodPut, "/api/bookings/"+b.ID+"/status", "agent-1", booking.RoleAgent,
		api.SetStatusRequest{Status: "Completed"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/packages/pkg-bali/reviews", "user-1", booking.RoleUser,
		api.SaveReviewRequest{Rating: 5, Comment: "Great"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = ts.do(t, http.MethodPost, "/api/packages/pkg-bali/reviews", "user-1", booking.RoleUser,
		api.SaveReviewRequest{Rating: 3, Comment: "On reflection"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// One review per traveler per package; the resubmission won.
	rec = ts.do(t, http.MethodGet, "/api/packages/pkg-bali/reviews", "user-2", booking.RoleUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reviews := decode[[]api.ReviewDTO](t, rec)
	require.Len(t, reviews, 1)
	assert.Equal(t, 3, reviews[0].Rating)
	assert.Equal(t, "On reflection", reviews[0].Comment)

	// Rating bounds.
	rec = ts.do(t, http.MethodPost, "/api/packages/pkg-bali/reviews", "user-1", booking.RoleUser,
		api.SaveReviewRequest{Rating: 7})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown package.
	rec = ts.do(t, http.MethodGet, "/api/packages/pkg-ghost/reviews", "user-1", booking.RoleUser, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func TestNotifications_ListAndMarkRead(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/bookings", "user-1", booking.RoleUser, createBookingRequest(10, 1))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/notifications", "user-1", booking.RoleUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ns := decode[[]api.NotificationDTO](t, rec)
	require.Len(t, ns, 1)
	assert.False(t, ns[0].Read)

	rec = ts.do(t, http.MethodPost, "/api/notifications/"+ns[0].ID+"/read", "user-1", booking.RoleUser, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/notifications", "user-1", booking.RoleUser, nil)
	ns = decode[[]api.NotificationDTO](t, rec)
	require.Len(t, ns, 1)
	assert.True(t, ns[0].Read)

	// Another user cannot mark it.
	rec = ts.do(t, http.MethodPost, "/api/notifications/"+ns[0].ID+"/read", "user-2", booking.RoleUser, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// ADMIN
// =============================================================================

func TestSetUserRole(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/admin/users/user-2/role", "admin", booking.RoleAdmin,
		api.SetRoleRequest{Role: "agent"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[api.UserDTO](t, rec)
	assert.Equal(t, "agent", resp.Role)

	// Promotion to admin is always rejected.
	rec = ts.do(t, http.MethodPut, "/api/admin/users/user-2/role", "admin", booking.RoleAdmin,
		api.SetRoleRequest{Role: "admin"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Agents cannot change roles at all.
	rec = ts.do(t, http.MethodPut, "/api/admin/users/user-1/role", "agent-1", booking.RoleAgent,
		api.SetRoleRequest{Role: "agent"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/admin/users/user-1/role", "admin", booking.RoleAdmin,
		api.SetRoleRequest{Role: "viscount"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The change is audited.
	logs, err := ts.mem.ListActivity(context.Background(), 10)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	assert.Equal(t, "User Role Changed", logs[0].Action)
	assert.Equal(t, "user-2", logs[0].EntityID)
}

func TestListActivity_SnakeCaseBody(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/admin/users/user-2/role", "admin", booking.RoleAdmin,
		api.SetRoleRequest{Role: "agent"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/admin/activity", "admin", booking.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"entity_id"`)
	entries := decode[[]api.ActivityLogDTO](t, rec)
	require.NotEmpty(t, entries)
	assert.Equal(t, "User Role Changed", entries[0].Action)
	assert.Equal(t, "admin", entries[0].ActorID)
	assert.Equal(t, "user-2", entries[0].EntityID)
	assert.NotEmpty(t, entries[0].CreatedAt)

	// The audit trail is admin-only.
	rec = ts.do(t, http.MethodGet, "/api/admin/activity", "agent-1", booking.RoleAgent, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSalesReport(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/bookings", "user-1", booking.RoleUser, createBookingRequest(10, 2))
	require.Equal(t, http.StatusCreated, rec.Code)

	path := fmt.Sprintf("/api/admin/reports/sales?from=%s&to=%s", tripDate(0), tripDate(30))
	rec = ts.do(t, http.MethodGet, path, "agent-1", booking.RoleAgent, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[api.SalesReportDTO](t, rec)
	require.Len(t, resp.Days, 1)
	assert.Equal(t, "200.00", resp.Days[0].Sales)
	assert.Equal(t, 2, resp.Days[0].Travelers)
	require.NotEmpty(t, resp.Packages)
	assert.Equal(t, "pkg-bali", resp.Packages[0].PackageID)

	// Customers cannot pull reports.
	rec = ts.do(t, http.MethodGet, path, "user-1", booking.RoleUser, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Inverted range.
	bad := fmt.Sprintf("/api/admin/reports/sales?from=%s&to=%s", tripDate(30), tripDate(0))
	rec = ts.do(t, http.MethodGet, bad, "agent-1", booking.RoleAgent, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSalesReport_XLSXExport(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/bookings", "user-1", booking.RoleUser, createBookingRequest(10, 1))
	require.Equal(t, http.StatusCreated, rec.Code)

	path := fmt.Sprintf("/api/admin/reports/sales?from=%s&to=%s&format=xlsx", tripDate(0), tripDate(30))
	rec = ts.do(t, http.MethodGet, path, "agent-1", booking.RoleAgent, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestReconcile(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/bookings", "user-1", booking.RoleUser, createBookingRequest(35, 1))
	require.Equal(t, http.StatusCreated, rec.Code)
	b := decode[api.BookingDTO](t, rec)
	rec = ts.do(t, http.MethodPost, "/api/bookings/"+b.ID+"/cancel", "user-1", booking.RoleUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/admin/reconcile/user-1", "admin", booking.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[api.ReconcileDTO](t, rec)
	assert.True(t, resp.Consistent)

	rec = ts.do(t, http.MethodGet, "/api/admin/reconcile/user-1", "user-1", booking.RoleUser, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// =============================================================================
// PUBLIC ENDPOINTS
// =============================================================================

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsExposed(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/metrics", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
