// Package metrics exposes Prometheus instrumentation for the booking engine.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "voyago",
			Name:      "bookings_created_total",
			Help:      "Count of bookings created.",
		},
	)

	bookingsConfirmed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "voyago",
			Name:      "bookings_confirmed_total",
			Help:      "Count of bookings confirmed by payment.",
		},
	)

	bookingsCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "voyago",
			Name:      "bookings_cancelled_total",
			Help:      "Count of bookings cancelled.",
		},
	)

	capacityRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "voyago",
			Name:      "capacity_rejections_total",
			Help:      "Count of booking attempts rejected for insufficient capacity.",
		},
	)

	refundsIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "voyago",
			Name:      "refunds_issued_total",
			Help:      "Count of refunds credited to wallets.",
		},
	)

	walletTransactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voyago",
			Name:      "wallet_transactions_total",
			Help:      "Count of wallet ledger rows appended, by type.",
		},
		[]string{"type"},
	)

	notificationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voyago",
			Name:      "notification_failures_total",
			Help:      "Count of failed best-effort notification dispatches, by channel.",
		},
		[]string{"channel"},
	)
)

// Register registers all collectors (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingsCreated,
			bookingsConfirmed,
			bookingsCancelled,
			capacityRejections,
			refundsIssued,
			walletTransactions,
			notificationFailures,
		)
	})
}

func IncBookingCreated()    { bookingsCreated.Inc() }
func IncBookingConfirmed()  { bookingsConfirmed.Inc() }
func IncBookingCancelled()  { bookingsCancelled.Inc() }
func IncCapacityRejection() { capacityRejections.Inc() }
func IncRefundIssued()      { refundsIssued.Inc() }

func IncWalletTransaction(txType string) {
	walletTransactions.WithLabelValues(txType).Inc()
}

func IncNotificationFailure(channel string) {
	notificationFailures.WithLabelValues(channel).Inc()
}
