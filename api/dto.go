/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:

	Defines the JSON structures for API communication. These types decouple
	the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:

	All amounts cross the wire as strings with two decimal places
	(decimal.StringFixed(2)). Never floats.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/voyago/booking-engine/booking"
	"github.com/voyago/booking-engine/notify"
	"github.com/voyago/booking-engine/wallet"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// TokenRequest is a dev-login request: exchange a known user id for a JWT.
type TokenRequest struct {
	UserID string `json:"user_id"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// PackageDTO represents a travel package in API responses.
type PackageDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Destination string `json:"destination"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	MaxPeople   int    `json:"max_people"`
	Available   bool   `json:"available"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

// SavePackageRequest creates or updates a package.
type SavePackageRequest struct {
	Name        string `json:"name"`
	Destination string `json:"destination"`
	Description string `json:"description"`
	Price       string `json:"price"`
	MaxPeople   int    `json:"max_people"`
	Available   *bool  `json:"available,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

// CapacityDTO is the remaining-seat response.
type CapacityDTO struct {
	PackageID         string `json:"package_id"`
	TripDate          string `json:"trip_date"`
	RemainingCapacity int    `json:"remaining_capacity"`
}

// TravelerDTO is one member of the booking party.
type TravelerDTO struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DateOfBirth    string `json:"date_of_birth,omitempty"`
	PassportNumber string `json:"passport_number,omitempty"`
}

// CreateBookingRequest is the request to create a booking.
type CreateBookingRequest struct {
	PackageID      string        `json:"package_id"`
	TripDate       string        `json:"trip_date"`
	NumberOfPeople int           `json:"number_of_people"`
	Travelers      []TravelerDTO `json:"travelers"`
	RoomType       string        `json:"room_type,omitempty"`
	Insurance      bool          `json:"insurance"`
}

// BookingDTO represents a booking in API responses.
type BookingDTO struct {
	ID               string        `json:"id"`
	PackageID        string        `json:"package_id"`
	UserID           string        `json:"user_id"`
	TripDate         string        `json:"trip_date"`
	NumberOfPeople   int           `json:"number_of_people"`
	Travelers        []TravelerDTO `json:"travelers"`
	RoomType         string        `json:"room_type"`
	Insurance        bool          `json:"insurance"`
	TotalPrice       string        `json:"total_price"`
	Status           string        `json:"status"`
	RefundAmount     string        `json:"refund_amount,omitempty"`
	CancellationDate string        `json:"cancellation_date,omitempty"`
	PaymentDate      string        `json:"payment_date,omitempty"`
	CreatedAt        string        `json:"created_at"`
}

// CancelResponse reports the refund the cancellation produced.
type CancelResponse struct {
	BookingID    string `json:"booking_id"`
	Status       string `json:"status"`
	RefundAmount string `json:"refund_amount"`
}

// SetStatusRequest is the admin status override body.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// WalletDTO is the wallet view: balance plus full history.
type WalletDTO struct {
	UserID       string                 `json:"user_id"`
	Balance      string                 `json:"balance"`
	Transactions []WalletTransactionDTO `json:"transactions"`
}

// WalletTransactionDTO is one ledger row.
type WalletTransactionDTO struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	BookingID   string `json:"booking_id,omitempty"`
	Date        string `json:"date"`
}

// NotificationDTO is one in-app notification.
type NotificationDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Kind      string `json:"kind"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

// ReviewDTO is one traveler review of a package.
type ReviewDTO struct {
	ID        string `json:"id"`
	PackageID string `json:"package_id"`
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
	CreatedAt string `json:"created_at"`
}

// SaveReviewRequest submits or replaces the caller's review of a package.
type SaveReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ActivityLogDTO is one admin audit trail entry.
type ActivityLogDTO struct {
	ID         string            `json:"id"`
	ActorID    string            `json:"actor_id"`
	Action     string            `json:"action"`
	EntityKind string            `json:"entity_kind"`
	EntityID   string            `json:"entity_id"`
	Details    map[string]string `json:"details,omitempty"`
	CreatedAt  string            `json:"created_at"`
}

// UserDTO represents a user in admin responses.
type UserDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	WalletBalance string `json:"wallet_balance"`
}

// SetRoleRequest changes a user's role.
type SetRoleRequest struct {
	Role string `json:"role"`
}

// DayRowDTO is one day-wise report row.
type DayRowDTO struct {
	Date      string `json:"date"`
	Sales     string `json:"sales"`
	Bookings  int    `json:"bookings"`
	Travelers int    `json:"travelers"`
}

// PackageRowDTO is one package-wise report row.
type PackageRowDTO struct {
	PackageID   string `json:"package_id"`
	PackageName string `json:"package_name"`
	Destination string `json:"destination,omitempty"`
	Sales       string `json:"sales"`
	Bookings    int    `json:"bookings"`
	Travelers   int    `json:"travelers"`
}

// SalesReportDTO wraps both report views over the same period.
type SalesReportDTO struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Days     []DayRowDTO     `json:"days"`
	Packages []PackageRowDTO `json:"packages"`
}

// ReconcileDTO is the wallet reconciliation check result.
type ReconcileDTO struct {
	UserID     string `json:"user_id"`
	Consistent bool   `json:"consistent"`
	Detail     string `json:"detail,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error             string `json:"error"`
	Details           string `json:"details,omitempty"`
	RemainingCapacity *int   `json:"remaining_capacity,omitempty"`
}

// =============================================================================
// MAPPERS
// =============================================================================

func packageDTO(p booking.Package) PackageDTO {
	dto := PackageDTO{
		ID:          string(p.ID),
		Name:        p.Name,
		Destination: p.Destination,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		MaxPeople:   p.MaxPeople,
		Available:   p.Available,
	}
	if !p.StartDate.IsZero() {
		dto.StartDate = p.StartDate.Format("2006-01-02")
	}
	if !p.EndDate.IsZero() {
		dto.EndDate = p.EndDate.Format("2006-01-02")
	}
	return dto
}

func bookingDTO(b booking.Booking) BookingDTO {
	travelers := make([]TravelerDTO, len(b.Travelers))
	for i, t := range b.Travelers {
		travelers[i] = TravelerDTO{
			FirstName:      t.FirstName,
			LastName:       t.LastName,
			PassportNumber: t.PassportNumber,
		}
		if !t.DateOfBirth.IsZero() {
			travelers[i].DateOfBirth = t.DateOfBirth.Format("2006-01-02")
		}
	}

	dto := BookingDTO{
		ID:             string(b.ID),
		PackageID:      string(b.PackageID),
		UserID:         string(b.UserID),
		TripDate:       b.TripDate.Format("2006-01-02"),
		NumberOfPeople: b.NumberOfPeople,
		Travelers:      travelers,
		RoomType:       string(b.RoomType),
		Insurance:      b.Insurance,
		TotalPrice:     b.TotalPrice.StringFixed(2),
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt.Format(time.RFC3339),
	}
	if b.RefundAmount.IsPositive() {
		dto.RefundAmount = b.RefundAmount.StringFixed(2)
	}
	if b.CancellationDate != nil {
		dto.CancellationDate = b.CancellationDate.Format(time.RFC3339)
	}
	if b.PaymentDate != nil {
		dto.PaymentDate = b.PaymentDate.Format(time.RFC3339)
	}
	return dto
}

func userDTO(u booking.User) UserDTO {
	return UserDTO{
		ID:            string(u.ID),
		Name:          u.Name,
		Email:         u.Email,
		Role:          string(u.Role),
		WalletBalance: u.WalletBalance.StringFixed(2),
	}
}

func walletTransactionDTO(tx wallet.Transaction) WalletTransactionDTO {
	return WalletTransactionDTO{
		ID:          tx.ID,
		Amount:      tx.Amount.StringFixed(2),
		Type:        string(tx.Type),
		Description: tx.Description,
		BookingID:   tx.BookingID,
		Date:        tx.Date.Format(time.RFC3339),
	}
}

func reviewDTO(r booking.Review) ReviewDTO {
	return ReviewDTO{
		ID:        r.ID,
		PackageID: string(r.PackageID),
		UserID:    string(r.UserID),
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}

func activityLogDTO(e booking.ActivityLog) ActivityLogDTO {
	return ActivityLogDTO{
		ID:         e.ID,
		ActorID:    string(e.ActorID),
		Action:     e.Action,
		EntityKind: e.EntityKind,
		EntityID:   e.EntityID,
		Details:    e.Details,
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
	}
}

func notificationDTO(n notify.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Kind:      string(n.Kind),
		Read:      n.Read,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// JSON HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps a domain error to its HTTP status. Capacity errors
// carry the remaining seat count in the body.
func writeDomainError(w http.ResponseWriter, err error) {
	var capErr *booking.CapacityError
	if errors.As(err, &capErr) {
		remaining := capErr.Remaining
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:             "Not enough seats remaining",
			Details:           err.Error(),
			RemainingCapacity: &remaining,
		})
		return
	}

	switch {
	case errors.Is(err, booking.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid input", err)
	case errors.Is(err, booking.ErrForbidden):
		writeError(w, http.StatusForbidden, "Forbidden", err)
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, wallet.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, booking.ErrAlreadyConfirmed):
		writeError(w, http.StatusConflict, "Booking already confirmed", err)
	case errors.Is(err, booking.ErrInvalidStateTransition):
		writeError(w, http.StatusConflict, "Invalid state transition", err)
	case errors.Is(err, booking.ErrConflict), errors.Is(err, wallet.ErrDuplicateTransaction):
		writeError(w, http.StatusConflict, "Conflicting update", err)
	case errors.Is(err, booking.ErrUnavailable):
		writeError(w, http.StatusConflict, "Package unavailable", err)
	case errors.Is(err, wallet.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, "Insufficient wallet balance", err)
	case errors.Is(err, booking.ErrDependencyFailure):
		writeError(w, http.StatusBadGateway, "Dependency failure", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
