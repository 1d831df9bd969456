/*
handlers.go - HTTP API handlers for the booking engine

PURPOSE:

	Exposes the booking engine via REST API. Handles HTTP request/response,
	JSON serialization, and delegates to domain logic.

ENDPOINTS:

	Auth:
	  POST   /api/auth/token                Issue a JWT for a known user (dev login)

	Packages:
	  GET    /api/packages                  List packages
	  POST   /api/packages                  Create package (agent/admin)
	  GET    /api/packages/{id}             Get package
	  PUT    /api/packages/{id}             Update package (agent/admin)
	  GET    /api/packages/{id}/capacity    Remaining seats for ?date=

	Bookings:
	  POST   /api/bookings                  Create booking
	  GET    /api/bookings                  Own bookings (staff: all, with filters)
	  GET    /api/bookings/{id}             Get booking (owner or staff)
	  POST   /api/bookings/{id}/payment     Confirm payment
	  POST   /api/bookings/{id}/cancel      Cancel with tiered refund
	  PUT    /api/bookings/{id}/status      Staff status override

	Wallet & notifications:
	  GET    /api/wallet                    Balance plus ledger history
	  GET    /api/notifications             List own notifications
	  POST   /api/notifications/{id}/read   Mark one read

	Admin:
	  GET    /api/admin/users               List users
	  PUT    /api/admin/users/{id}/role     Change role (admin; no promotion to admin)
	  GET    /api/admin/reports/sales       Sales report (?format=xlsx to export)
	  GET    /api/admin/reconcile/{userId}  Wallet reconciliation check
	  GET    /api/admin/activity            Recent audit entries

REQUEST FLOW:
 1. Parse HTTP request
 2. Validate input
 3. Call domain logic (service, ledger, reporter)
 4. Serialize response
 5. Map domain errors to HTTP status

ERROR HANDLING:

	Errors are returned as JSON with appropriate HTTP status:
	- 400: Validation errors, invalid input
	- 403: Authorization failures
	- 404: Resource not found
	- 409: Capacity, state-machine and version conflicts
	- 502: Storage/dependency failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voyago/booking-engine/booking"
	"github.com/voyago/booking-engine/notify"
	"github.com/voyago/booking-engine/report"
	"github.com/voyago/booking-engine/wallet"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         booking.Store
	Service       *booking.Service
	Ledger        *wallet.Ledger
	Reporter      *report.Reporter
	Notifications notify.NotificationStore
	Reviews       booking.ReviewStore
	Tokens        *TokenIssuer
}

// NewHandler wires a handler from its dependencies.
func NewHandler(store booking.Store, svc *booking.Service, ledger *wallet.Ledger, reporter *report.Reporter, notifications notify.NotificationStore, reviews booking.ReviewStore, tokens *TokenIssuer) *Handler {
	return &Handler{
		Store:         store,
		Service:       svc,
		Ledger:        ledger,
		Reporter:      reporter,
		Notifications: notifications,
		Reviews:       reviews,
		Tokens:        tokens,
	}
}

func actorOr401(w http.ResponseWriter, r *http.Request) (booking.Actor, bool) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated", nil)
	}
	return actor, ok
}

// =============================================================================
// AUTH
// =============================================================================

// IssueToken exchanges a known user id for a JWT. Development login; a
// production deployment would sit behind a real identity provider.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	u, err := h.Store.GetUser(r.Context(), booking.UserID(req.UserID))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}

	token, err := h.Tokens.CreateToken(u.ID, u.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

// =============================================================================
// PACKAGES
// =============================================================================

func (h *Handler) ListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.Store.ListPackages(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list packages", err)
		return
	}

	dtos := make([]PackageDTO, 0, len(packages))
	for _, p := range packages {
		dtos = append(dtos, packageDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetPackage(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetPackage(r.Context(), booking.PackageID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get package", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Package not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, packageDTO(*p))
}

func (h *Handler) CreatePackage(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}
	if err := booking.Authorize(actor, booking.ActionManagePackages, nil); err != nil {
		writeDomainError(w, err)
		return
	}

	var req SavePackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := packageFromRequest(req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	p.ID = booking.PackageID(uuid.NewString())
	p.CreatedBy = actor.UserID
	p.CreatedAt = time.Now()

	if err := h.Store.SavePackage(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create package", err)
		return
	}
	writeJSON(w, http.StatusCreated, packageDTO(p))
}

func (h *Handler) UpdatePackage(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}
	if err := booking.Authorize(actor, booking.ActionManagePackages, nil); err != nil {
		writeDomainError(w, err)
		return
	}

	existing, err := h.Store.GetPackage(r.Context(), booking.PackageID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get package", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Package not found", nil)
		return
	}

	var req SavePackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := packageFromRequest(req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	p.ID = existing.ID
	p.CreatedBy = existing.CreatedBy
	p.CreatedAt = existing.CreatedAt
	// Omitting the flag keeps the current state: editing a price must not
	// quietly put a deactivated package back on sale.
	p.Available = existing.Available
	if req.Available != nil {
		p.Available = *req.Available
	}

	if err := h.Store.SavePackage(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update package", err)
		return
	}
	writeJSON(w, http.StatusOK, packageDTO(p))
}

func packageFromRequest(req SavePackageRequest) (booking.Package, error) {
	if req.Name == "" {
		return booking.Package{}, &booking.InputError{Field: "name", Reason: "missing"}
	}
	if req.MaxPeople < 1 {
		return booking.Package{}, &booking.InputError{Field: "max_people", Reason: "must be at least 1"}
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return booking.Package{}, &booking.InputError{Field: "price", Reason: "must be a non-negative decimal"}
	}

	p := booking.Package{
		Name:        req.Name,
		Destination: req.Destination,
		Description: req.Description,
		Price:       price,
		MaxPeople:   req.MaxPeople,
		Available:   true,
	}
	if req.StartDate != "" {
		p.StartDate, err = time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return booking.Package{}, &booking.InputError{Field: "start_date", Reason: "use YYYY-MM-DD"}
		}
	}
	if req.EndDate != "" {
		p.EndDate, err = time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return booking.Package{}, &booking.InputError{Field: "end_date", Reason: "use YYYY-MM-DD"}
		}
	}
	return p, nil
}

// GetCapacity returns remaining seats for ?date=YYYY-MM-DD.
func (h *Handler) GetCapacity(w http.ResponseWriter, r *http.Request) {
	packageID := booking.PackageID(chi.URLParam(r, "id"))
	dateStr := r.URL.Query().Get("date")
	tripDate, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	remaining, err := h.Service.Capacity(r.Context(), packageID, tripDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CapacityDTO{
		PackageID:         string(packageID),
		TripDate:          booking.NormalizeTripDate(tripDate).Format("2006-01-02"),
		RemainingCapacity: remaining,
	})
}

// =============================================================================
// REVIEWS
// =============================================================================

// ListPackageReviews returns a package's reviews, newest first. Public to
// any authenticated user.
func (h *Handler) ListPackageReviews(w http.ResponseWriter, r *http.Request) {
	packageID := booking.PackageID(chi.URLParam(r, "id"))
	pkg, err := h.Store.GetPackage(r.Context(), packageID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load package", err)
		return
	}
	if pkg == nil {
		writeError(w, http.StatusNotFound, "Package not found", nil)
		return
	}

	reviews, err := h.Reviews.ListReviews(r.Context(), packageID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reviews", err)
		return
	}
	out := make([]ReviewDTO, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, reviewDTO(rv))
	}
	writeJSON(w, http.StatusOK, out)
}

// SavePackageReview records the caller's review of a package. Only a
// traveler with a completed booking for the package may review it, and a
// second submission replaces the first.
func (h *Handler) SavePackageReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	var req SaveReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeDomainError(w, &booking.InputError{Field: "rating", Reason: "must be between 1 and 5"})
		return
	}

	packageID := booking.PackageID(chi.URLParam(r, "id"))
	pkg, err := h.Store.GetPackage(r.Context(), packageID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load package", err)
		return
	}
	if pkg == nil {
		writeError(w, http.StatusNotFound, "Package not found", nil)
		return
	}

	completed := booking.StatusCompleted
	mine, err := h.Store.ListBookings(r.Context(), booking.BookingFilter{
		Status:    &completed,
		PackageID: &packageID,
		UserID:    &actor.UserID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check eligibility", err)
		return
	}
	if len(mine) == 0 {
		writeError(w, http.StatusForbidden, "Only travelers who completed this trip can review it", booking.ErrForbidden)
		return
	}

	review := booking.Review{
		ID:        uuid.NewString(),
		PackageID: packageID,
		UserID:    actor.UserID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Reviews.SaveReview(r.Context(), review); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save review", err)
		return
	}
	writeJSON(w, http.StatusCreated, reviewDTO(review))
}

// =============================================================================
// BOOKINGS
// =============================================================================

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tripDate, err := time.Parse("2006-01-02", req.TripDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid trip_date format (use YYYY-MM-DD)", err)
		return
	}

	travelers := make([]booking.Traveler, len(req.Travelers))
	for i, t := range req.Travelers {
		travelers[i] = booking.Traveler{
			FirstName:      t.FirstName,
			LastName:       t.LastName,
			PassportNumber: t.PassportNumber,
		}
		if t.DateOfBirth != "" {
			dob, err := time.Parse("2006-01-02", t.DateOfBirth)
			if err != nil {
				writeError(w, http.StatusBadRequest,
					fmt.Sprintf("Invalid date_of_birth for traveler %d (use YYYY-MM-DD)", i+1), err)
				return
			}
			travelers[i].DateOfBirth = dob
		}
	}

	b, err := h.Service.CreateBooking(r.Context(), actor, booking.CreateBookingInput{
		PackageID:      booking.PackageID(req.PackageID),
		TripDate:       tripDate,
		NumberOfPeople: req.NumberOfPeople,
		Travelers:      travelers,
		RoomType:       booking.RoomType(req.RoomType),
		Insurance:      req.Insurance,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookingDTO(*b))
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	var f booking.BookingFilter
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		status := booking.Status(v)
		f.Status = &status
	}
	if v := q.Get("package_id"); v != "" {
		id := booking.PackageID(v)
		f.PackageID = &id
	}
	if v := q.Get("user_id"); v != "" {
		id := booking.UserID(v)
		f.UserID = &id
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
		f.TripFrom = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return
		}
		f.TripTo = &t
	}

	bookings, err := h.Service.ListBookings(r.Context(), actor, f)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]BookingDTO, 0, len(bookings))
	for _, b := range bookings {
		dtos = append(dtos, bookingDTO(b))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	b, err := h.Service.GetBooking(r.Context(), actor, booking.BookingID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingDTO(*b))
}

func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	b, err := h.Service.ConfirmPayment(r.Context(), actor, booking.BookingID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingDTO(*b))
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	id := booking.BookingID(chi.URLParam(r, "id"))
	refund, err := h.Service.CancelBooking(r.Context(), actor, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CancelResponse{
		BookingID:    string(id),
		Status:       string(booking.StatusCancelled),
		RefundAmount: refund.StringFixed(2),
	})
}

func (h *Handler) SetBookingStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	b, err := h.Service.OverrideStatus(r.Context(), actor,
		booking.BookingID(chi.URLParam(r, "id")), booking.Status(req.Status))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingDTO(*b))
}

// =============================================================================
// WALLET & NOTIFICATIONS
// =============================================================================

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	balance, err := h.Ledger.Balance(r.Context(), string(actor.UserID))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	history, err := h.Ledger.History(r.Context(), string(actor.UserID))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]WalletTransactionDTO, 0, len(history))
	for _, tx := range history {
		dtos = append(dtos, walletTransactionDTO(tx))
	}
	writeJSON(w, http.StatusOK, WalletDTO{
		UserID:       string(actor.UserID),
		Balance:      balance.StringFixed(2),
		Transactions: dtos,
	})
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	notifications, err := h.Notifications.ListNotifications(r.Context(), string(actor.UserID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list notifications", err)
		return
	}

	dtos := make([]NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		dtos = append(dtos, notificationDTO(n))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	err := h.Notifications.MarkNotificationRead(r.Context(), chi.URLParam(r, "id"), string(actor.UserID))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ADMIN
// =============================================================================

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}
	if err := booking.Authorize(actor, booking.ActionManageUsers, nil); err != nil {
		writeDomainError(w, err)
		return
	}

	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, userDTO(u))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SetUserRole changes a user's role. Promotion to admin is rejected by
// Authorize: the single master admin account is fixed at bootstrap.
func (h *Handler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}

	var req SetRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	role := booking.Role(req.Role)
	switch role {
	case booking.RoleUser, booking.RoleAgent, booking.RoleAdmin:
	default:
		writeError(w, http.StatusBadRequest, "Unknown role", nil)
		return
	}

	if err := booking.Authorize(actor, booking.ActionChangeRole, role); err != nil {
		writeDomainError(w, err)
		return
	}

	targetID := booking.UserID(chi.URLParam(r, "id"))
	target, err := h.Store.GetUser(r.Context(), targetID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if target == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}

	err = h.Store.WithTx(r.Context(), func(tx booking.Store) error {
		if err := tx.UpdateUserRole(r.Context(), targetID, role); err != nil {
			return err
		}
		return tx.AppendActivity(r.Context(), booking.ActivityLog{
			ID:         uuid.NewString(),
			ActorID:    actor.UserID,
			Action:     "User Role Changed",
			EntityKind: "User",
			EntityID:   string(targetID),
			Details: map[string]string{
				"oldRole": string(target.Role),
				"newRole": string(role),
			},
			CreatedAt: time.Now(),
		})
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	target.Role = role
	writeJSON(w, http.StatusOK, userDTO(*target))
}

// SalesReport returns the day-wise and package-wise views over
// ?from=&to=. With ?format=xlsx the requested view (?view=packages,
// default days) is exported as a workbook.
func (h *Handler) SalesReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}
	if err := booking.Authorize(actor, booking.ActionViewReports, nil); err != nil {
		writeDomainError(w, err)
		return
	}

	q := r.URL.Query()
	from, err := time.Parse("2006-01-02", q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
		return
	}
	to, err := time.Parse("2006-01-02", q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "Report range is inverted", nil)
		return
	}

	days, err := h.Reporter.DayWise(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	packages, err := h.Reporter.PackageWise(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if q.Get("format") == "xlsx" {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="sales_%s_%s.xlsx"`, from.Format("2006-01-02"), to.Format("2006-01-02")))
		if q.Get("view") == "packages" {
			err = report.ExportPackageWiseXLSX(w, from, to, packages)
		} else {
			err = report.ExportDayWiseXLSX(w, from, to, days)
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to export report", err)
		}
		return
	}

	dto := SalesReportDTO{
		From:     from.Format("2006-01-02"),
		To:       to.Format("2006-01-02"),
		Days:     make([]DayRowDTO, 0, len(days)),
		Packages: make([]PackageRowDTO, 0, len(packages)),
	}
	for _, d := range days {
		dto.Days = append(dto.Days, DayRowDTO{
			Date:      d.Date.Format("2006-01-02"),
			Sales:     d.Sales.StringFixed(2),
			Bookings:  d.Bookings,
			Travelers: d.Travelers,
		})
	}
	for _, p := range packages {
		dto.Packages = append(dto.Packages, PackageRowDTO{
			PackageID:   string(p.PackageID),
			PackageName: p.PackageName,
			Destination: p.Destination,
			Sales:       p.Sales.StringFixed(2),
			Bookings:    p.Bookings,
			Travelers:   p.Travelers,
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// Reconcile verifies that a user's wallet balance equals the signed sum of
// their ledger.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}
	if err := booking.Authorize(actor, booking.ActionManageUsers, nil); err != nil {
		writeDomainError(w, err)
		return
	}

	userID := chi.URLParam(r, "userId")
	if err := h.Ledger.Reconcile(r.Context(), userID); err != nil {
		var recErr *wallet.ReconciliationError
		if errors.As(err, &recErr) {
			writeJSON(w, http.StatusOK, ReconcileDTO{
				UserID:     userID,
				Consistent: false,
				Detail:     err.Error(),
			})
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReconcileDTO{UserID: userID, Consistent: true})
}

// ListActivity returns the recent admin audit trail.
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}
	if err := booking.Authorize(actor, booking.ActionManageUsers, nil); err != nil {
		writeDomainError(w, err)
		return
	}

	entries, err := h.Store.ListActivity(r.Context(), 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list activity", err)
		return
	}
	out := make([]ActivityLogDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, activityLogDTO(e))
	}
	writeJSON(w, http.StatusOK, out)
}
