/*
Package notify delivers in-app notifications and emails for booking
lifecycle events.

PURPOSE:

	Notifications are fire-and-forget side effects. A failed send is logged
	and counted, never propagated - the booking or wallet transaction that
	triggered it has already committed and must not be rolled back by a
	flaky mail server.

COMPONENTS:

	Notifier:   In-app notification sink (store-backed in production)
	Emailer:    Outbound email sink, returns a preview URL when the backend
	            provides one (dev transports do)
	Dispatcher: Event-shaped wrapper the booking service calls; swallows and
	            logs every delivery error

SEE ALSO:
  - email.go: HTML templates and the logging Emailer
*/
package notify

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/voyago/booking-engine/metrics"
)

// =============================================================================
// NOTIFICATION - In-app message
// =============================================================================

type Kind string

const (
	KindBookingCreated Kind = "BOOKING_CONFIRMED"
	KindPaymentSuccess Kind = "PAYMENT_SUCCESS"
	KindCancellation   Kind = "CANCELLATION"
)

type Notification struct {
	ID              string
	UserID          string
	Title           string
	Message         string
	Kind            Kind
	EmailPreviewURL string
	Read            bool
	CreatedAt       time.Time
}

// =============================================================================
// SINK INTERFACES
// =============================================================================

type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

type Emailer interface {
	// Send delivers an email and returns a preview URL when available.
	Send(ctx context.Context, to, subject, html string) (string, error)
}

// NotificationStore persists in-app notifications for later listing.
type NotificationStore interface {
	SaveNotification(ctx context.Context, n Notification) error
	ListNotifications(ctx context.Context, userID string) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) error
}

// StoreNotifier persists notifications through a NotificationStore.
type StoreNotifier struct {
	Store NotificationStore
}

func (s *StoreNotifier) Send(ctx context.Context, n Notification) error {
	return s.Store.SaveNotification(ctx, n)
}

// =============================================================================
// DISPATCHER - Best-effort delivery, errors never escape
// =============================================================================

type Dispatcher struct {
	Notifier Notifier
	Emailer  Emailer
	now      func() time.Time
}

func NewDispatcher(notifier Notifier, emailer Emailer) *Dispatcher {
	return &Dispatcher{Notifier: notifier, Emailer: emailer, now: time.Now}
}

// Dispatch sends the email first (to capture a preview URL), then the
// in-app notification. Each failure is logged distinctly and swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, userID, email, title, message, html string, kind Kind) {
	var previewURL string

	if d.Emailer != nil && email != "" {
		url, err := d.Emailer.Send(ctx, email, title, html)
		if err != nil {
			metrics.IncNotificationFailure("email")
			log.Printf("email dispatch failed for user %s: %v", userID, err)
		} else {
			log.Printf("email dispatched to %s: %s", email, title)
			previewURL = url
		}
	}

	if d.Notifier == nil {
		return
	}
	n := Notification{
		ID:              uuid.NewString(),
		UserID:          userID,
		Title:           title,
		Message:         message,
		Kind:            kind,
		EmailPreviewURL: previewURL,
		CreatedAt:       d.now(),
	}
	if err := d.Notifier.Send(ctx, n); err != nil {
		metrics.IncNotificationFailure("in_app")
		log.Printf("notification dispatch failed for user %s: %v", userID, err)
	}
}
