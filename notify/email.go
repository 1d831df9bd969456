/*
email.go - Email templates and the development Emailer

PURPOSE:

	HTML bodies for the three lifecycle emails, plus LogEmailer - a dev
	transport that logs instead of sending (the production deployment plugs
	in an SMTP-backed Emailer).
*/
package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
)

// LogEmailer logs outbound mail instead of delivering it. Always succeeds.
type LogEmailer struct{}

func (LogEmailer) Send(_ context.Context, to, subject, _ string) (string, error) {
	log.Printf("email (logged, not sent) to=%s subject=%q", to, subject)
	return "", nil
}

// =============================================================================
// TEMPLATES
// =============================================================================

func BookingCreatedEmail(userName, packageName, tripDate string, total decimal.Decimal) string {
	return fmt.Sprintf(`<h2>Booking Received</h2>
<p>Hi %s,</p>
<p>Your booking for <strong>%s</strong> on %s has been received.
Total: <strong>$%s</strong>. Please complete the payment to confirm your trip.</p>`,
		userName, packageName, tripDate, total.StringFixed(2))
}

func PaymentSuccessEmail(userName, bookingID string, total decimal.Decimal) string {
	return fmt.Sprintf(`<h2>Payment Received</h2>
<p>Hi %s,</p>
<p>We have received your payment of <strong>$%s</strong> for booking #%s.
Your trip is confirmed!</p>`,
		userName, total.StringFixed(2), bookingID)
}

func CancellationEmail(userName, bookingID string, refund decimal.Decimal) string {
	if refund.IsZero() {
		return fmt.Sprintf(`<h2>Booking Cancelled</h2>
<p>Hi %s,</p>
<p>Your booking #%s has been cancelled. Per the cancellation policy no
refund applies to this booking.</p>`,
			userName, bookingID)
	}
	return fmt.Sprintf(`<h2>Booking Cancelled</h2>
<p>Hi %s,</p>
<p>Your booking #%s has been cancelled. A refund of <strong>$%s</strong>
has been credited to your wallet.</p>`,
		userName, bookingID, refund.StringFixed(2))
}
