// Package store provides an in-memory booking.Store implementation, for
// tests and local development.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voyago/booking-engine/booking"
	"github.com/voyago/booking-engine/notify"
	"github.com/voyago/booking-engine/wallet"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu            sync.RWMutex
	packages      map[booking.PackageID]booking.Package
	bookings      map[booking.BookingID]booking.Booking
	users         map[booking.UserID]booking.User
	ledger        map[string][]wallet.Transaction
	idempotency   map[string]bool
	activity      []booking.ActivityLog
	notifications map[string][]notify.Notification
	reviews       map[booking.PackageID][]booking.Review
}

func NewMemory() *Memory {
	return &Memory{
		packages:      make(map[booking.PackageID]booking.Package),
		bookings:      make(map[booking.BookingID]booking.Booking),
		users:         make(map[booking.UserID]booking.User),
		ledger:        make(map[string][]wallet.Transaction),
		idempotency:   make(map[string]bool),
		notifications: make(map[string][]notify.Notification),
		reviews:       make(map[booking.PackageID][]booking.Review),
	}
}

// =============================================================================
// PACKAGES
// =============================================================================

func (m *Memory) SavePackage(_ context.Context, p booking.Package) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.packages[p.ID] = p
	return nil
}

func (m *Memory) GetPackage(_ context.Context, id booking.PackageID) (*booking.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getPackageLocked(id)
}

func (m *Memory) getPackageLocked(id booking.PackageID) (*booking.Package, error) {
	p, ok := m.packages[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) ListPackages(_ context.Context) ([]booking.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]booking.Package, 0, len(m.packages))
	for _, p := range m.packages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// =============================================================================
// BOOKINGS
// =============================================================================

func (m *Memory) InsertBooking(_ context.Context, b booking.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertBookingLocked(b)
}

func (m *Memory) insertBookingLocked(b booking.Booking) error {
	m.bookings[b.ID] = b
	return nil
}

func (m *Memory) GetBooking(_ context.Context, id booking.BookingID) (*booking.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getBookingLocked(id)
}

func (m *Memory) getBookingLocked(id booking.BookingID) (*booking.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *Memory) ListBookings(_ context.Context, f booking.BookingFilter) ([]booking.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listBookingsLocked(f)
}

func (m *Memory) listBookingsLocked(f booking.BookingFilter) ([]booking.Booking, error) {
	var out []booking.Booking
	for _, b := range m.bookings {
		if !matches(b, f) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func matches(b booking.Booking, f booking.BookingFilter) bool {
	if f.Status != nil && b.Status != *f.Status {
		return false
	}
	if f.PackageID != nil && b.PackageID != *f.PackageID {
		return false
	}
	if f.UserID != nil && b.UserID != *f.UserID {
		return false
	}
	if f.TripFrom != nil && b.TripDate.Before(*f.TripFrom) {
		return false
	}
	if f.TripTo != nil && b.TripDate.After(*f.TripTo) {
		return false
	}
	return true
}

func (m *Memory) BookedSeats(_ context.Context, packageID booking.PackageID, tripDate time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bookedSeatsLocked(packageID, tripDate)
}

func (m *Memory) bookedSeatsLocked(packageID booking.PackageID, tripDate time.Time) (int, error) {
	day := booking.NormalizeTripDate(tripDate)
	total := 0
	for _, b := range m.bookings {
		if b.PackageID == packageID && b.TripDate.Equal(day) && b.Status.ConsumesCapacity() {
			total += b.NumberOfPeople
		}
	}
	return total, nil
}

func (m *Memory) UpdateBooking(_ context.Context, b booking.Booking, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateBookingLocked(b, expectedVersion)
}

func (m *Memory) updateBookingLocked(b booking.Booking, expectedVersion int64) error {
	cur, ok := m.bookings[b.ID]
	if !ok {
		return booking.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return booking.ErrConflict
	}
	b.Version = expectedVersion + 1
	m.bookings[b.ID] = b
	return nil
}

// =============================================================================
// USERS
// =============================================================================

func (m *Memory) SaveUser(_ context.Context, u booking.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *Memory) GetUser(_ context.Context, id booking.UserID) (*booking.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getUserLocked(id)
}

func (m *Memory) getUserLocked(id booking.UserID) (*booking.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *Memory) ListUsers(_ context.Context) ([]booking.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]booking.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) UpdateUserRole(_ context.Context, id booking.UserID, role booking.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return booking.ErrNotFound
	}
	u.Role = role
	m.users[id] = u
	return nil
}

// =============================================================================
// WALLET LEDGER
// =============================================================================

func (m *Memory) Apply(_ context.Context, tx wallet.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applyLocked(tx)
}

func (m *Memory) applyLocked(tx wallet.Transaction) error {
	if tx.IdempotencyKey != "" && m.idempotency[tx.IdempotencyKey] {
		return wallet.ErrDuplicateTransaction
	}
	u, ok := m.users[booking.UserID(tx.UserID)]
	if !ok {
		return wallet.ErrUserNotFound
	}
	next := u.WalletBalance.Add(tx.Amount)
	if next.IsNegative() {
		return wallet.ErrInsufficientBalance
	}
	u.WalletBalance = next
	m.users[u.ID] = u
	m.ledger[tx.UserID] = append(m.ledger[tx.UserID], tx)
	if tx.IdempotencyKey != "" {
		m.idempotency[tx.IdempotencyKey] = true
	}
	return nil
}

func (m *Memory) Balance(_ context.Context, userID string) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[booking.UserID(userID)]
	if !ok {
		return decimal.Zero, wallet.ErrUserNotFound
	}
	return u.WalletBalance, nil
}

func (m *Memory) History(_ context.Context, userID string) ([]wallet.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	txs := m.ledger[userID]
	out := make([]wallet.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// =============================================================================
// ACTIVITY LOG
// =============================================================================

func (m *Memory) AppendActivity(_ context.Context, entry booking.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendActivityLocked(entry)
}

func (m *Memory) appendActivityLocked(entry booking.ActivityLog) error {
	m.activity = append(m.activity, entry)
	return nil
}

func (m *Memory) ListActivity(_ context.Context, limit int) ([]booking.ActivityLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]booking.ActivityLog, len(m.activity))
	copy(out, m.activity)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func (m *Memory) SaveNotification(_ context.Context, n notify.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[n.UserID] = append(m.notifications[n.UserID], n)
	return nil
}

func (m *Memory) MarkNotificationRead(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns := m.notifications[userID]
	for i := range ns {
		if ns[i].ID == id {
			ns[i].Read = true
			return nil
		}
	}
	return booking.ErrNotFound
}

func (m *Memory) ListNotifications(_ context.Context, userID string) ([]notify.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ns := m.notifications[userID]
	out := make([]notify.Notification, len(ns))
	copy(out, ns)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// =============================================================================
// REVIEWS
// =============================================================================

func (m *Memory) SaveReview(_ context.Context, r booking.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rs := m.reviews[r.PackageID]
	for i := range rs {
		if rs[i].UserID == r.UserID {
			rs[i] = r
			return nil
		}
	}
	m.reviews[r.PackageID] = append(rs, r)
	return nil
}

func (m *Memory) ListReviews(_ context.Context, packageID booking.PackageID) ([]booking.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rs := m.reviews[packageID]
	out := make([]booking.Review, len(rs))
	copy(out, rs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// =============================================================================
// TRANSACTIONS - Snapshot + rollback on error
// =============================================================================

// WithTx executes fn against a view whose writes bypass the outer mutex
// (held for the duration). On error the pre-transaction snapshot is
// restored.
func (m *Memory) WithTx(_ context.Context, fn func(booking.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(&txView{parent: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	packages      map[booking.PackageID]booking.Package
	bookings      map[booking.BookingID]booking.Booking
	users         map[booking.UserID]booking.User
	ledger        map[string][]wallet.Transaction
	idempotency   map[string]bool
	activity      []booking.ActivityLog
	notifications map[string][]notify.Notification
}

func (m *Memory) snapshot() memorySnapshot {
	s := memorySnapshot{
		packages:      make(map[booking.PackageID]booking.Package, len(m.packages)),
		bookings:      make(map[booking.BookingID]booking.Booking, len(m.bookings)),
		users:         make(map[booking.UserID]booking.User, len(m.users)),
		ledger:        make(map[string][]wallet.Transaction, len(m.ledger)),
		idempotency:   make(map[string]bool, len(m.idempotency)),
		activity:      append([]booking.ActivityLog(nil), m.activity...),
		notifications: make(map[string][]notify.Notification, len(m.notifications)),
	}
	for k, v := range m.packages {
		s.packages[k] = v
	}
	for k, v := range m.bookings {
		s.bookings[k] = v
	}
	for k, v := range m.users {
		s.users[k] = v
	}
	for k, v := range m.ledger {
		s.ledger[k] = append([]wallet.Transaction(nil), v...)
	}
	for k, v := range m.idempotency {
		s.idempotency[k] = v
	}
	for k, v := range m.notifications {
		s.notifications[k] = append([]notify.Notification(nil), v...)
	}
	return s
}

func (m *Memory) restore(s memorySnapshot) {
	m.packages = s.packages
	m.bookings = s.bookings
	m.users = s.users
	m.ledger = s.ledger
	m.idempotency = s.idempotency
	m.activity = s.activity
	m.notifications = s.notifications
}

// txView routes calls to the parent's lock-free internals. Valid only
// while the parent's mutex is held by WithTx.
type txView struct {
	parent *Memory
}

func (tv *txView) SavePackage(_ context.Context, p booking.Package) error {
	tv.parent.packages[p.ID] = p
	return nil
}

func (tv *txView) GetPackage(_ context.Context, id booking.PackageID) (*booking.Package, error) {
	return tv.parent.getPackageLocked(id)
}

func (tv *txView) ListPackages(ctx context.Context) ([]booking.Package, error) {
	out := make([]booking.Package, 0, len(tv.parent.packages))
	for _, p := range tv.parent.packages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (tv *txView) InsertBooking(_ context.Context, b booking.Booking) error {
	return tv.parent.insertBookingLocked(b)
}

func (tv *txView) GetBooking(_ context.Context, id booking.BookingID) (*booking.Booking, error) {
	return tv.parent.getBookingLocked(id)
}

func (tv *txView) ListBookings(_ context.Context, f booking.BookingFilter) ([]booking.Booking, error) {
	return tv.parent.listBookingsLocked(f)
}

func (tv *txView) BookedSeats(_ context.Context, packageID booking.PackageID, tripDate time.Time) (int, error) {
	return tv.parent.bookedSeatsLocked(packageID, tripDate)
}

func (tv *txView) UpdateBooking(_ context.Context, b booking.Booking, expectedVersion int64) error {
	return tv.parent.updateBookingLocked(b, expectedVersion)
}

func (tv *txView) SaveUser(_ context.Context, u booking.User) error {
	tv.parent.users[u.ID] = u
	return nil
}

func (tv *txView) GetUser(_ context.Context, id booking.UserID) (*booking.User, error) {
	return tv.parent.getUserLocked(id)
}

func (tv *txView) ListUsers(_ context.Context) ([]booking.User, error) {
	out := make([]booking.User, 0, len(tv.parent.users))
	for _, u := range tv.parent.users {
		out = append(out, u)
	}
	return out, nil
}

func (tv *txView) UpdateUserRole(_ context.Context, id booking.UserID, role booking.Role) error {
	u, ok := tv.parent.users[id]
	if !ok {
		return booking.ErrNotFound
	}
	u.Role = role
	tv.parent.users[id] = u
	return nil
}

func (tv *txView) Apply(_ context.Context, tx wallet.Transaction) error {
	return tv.parent.applyLocked(tx)
}

func (tv *txView) Balance(_ context.Context, userID string) (decimal.Decimal, error) {
	u, ok := tv.parent.users[booking.UserID(userID)]
	if !ok {
		return decimal.Zero, wallet.ErrUserNotFound
	}
	return u.WalletBalance, nil
}

func (tv *txView) History(_ context.Context, userID string) ([]wallet.Transaction, error) {
	return append([]wallet.Transaction(nil), tv.parent.ledger[userID]...), nil
}

func (tv *txView) AppendActivity(_ context.Context, entry booking.ActivityLog) error {
	return tv.parent.appendActivityLocked(entry)
}

func (tv *txView) ListActivity(_ context.Context, limit int) ([]booking.ActivityLog, error) {
	out := append([]booking.ActivityLog(nil), tv.parent.activity...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// WithTx on a view runs fn against the same view; the outer transaction
// already provides atomicity.
func (tv *txView) WithTx(_ context.Context, fn func(booking.Store) error) error {
	return fn(tv)
}
