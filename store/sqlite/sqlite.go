/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:

	Implements booking.Store (packages, bookings, users, activity log),
	booking.ReviewStore, wallet.Store, and notify.NotificationStore on a
	single SQLite database.
	In production the same patterns apply to PostgreSQL - only minor SQL
	dialect differences.

KEY TABLES:

	packages:            Sellable itineraries
	bookings:            Reservations; travelers stored as JSON, version
	                     column guards concurrent status transitions
	users:               Identity, role, wallet balance
	wallet_transactions: Append-only ledger; UNIQUE idempotency_key
	notifications:       In-app notification feed
	reviews:             Package reviews, one per traveler per package
	activity_logs:       Append-only admin audit trail

INDEXES:
  - idx_bookings_capacity: (package_id, trip_date, status) - the seat
    count query is the hot path on every create
  - idx_wallet_user_date:  (user_id, date DESC) - wallet history
  - idx_bookings_user:     per-user listings

MONEY:

	Amounts are stored as TEXT through decimal.Decimal.String() and parsed
	back with decimal.NewFromString. Never REAL.

CONCURRENCY:

	Uses sync.RWMutex on top of WAL mode. WithTx holds the write lock for
	the whole function so a transaction sees a stable world.

WAL MODE:

	SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
	- Multiple readers don't block
	- Single writer at a time
	- Better crash recovery

USAGE:

	store, err := sqlite.New("./data/voyago.db")
	if err != nil {
	    log.Fatal(err)
	}
	defer store.Close()

MIGRATION:

	Schema is auto-migrated on New(). For production, use a proper
	migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - booking/store.go:        Interface definitions
  - booking/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/voyago/booking-engine/booking"
	"github.com/voyago/booking-engine/notify"
	"github.com/voyago/booking-engine/wallet"
)

const dateOnly = "2006-01-02"

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection to :memory: would see its own empty
		// database; pin the pool to one connection.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Users (identity, role, wallet balance)
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL DEFAULT 'user',
		wallet_balance TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	-- Packages (soft-deactivated via available flag, never deleted)
	CREATE TABLE IF NOT EXISTS packages (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		destination TEXT NOT NULL,
		description TEXT,
		price TEXT NOT NULL,
		max_people INTEGER NOT NULL,
		available BOOLEAN NOT NULL DEFAULT TRUE,
		start_date TEXT,
		end_date TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	-- Bookings
	CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		package_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		trip_date TEXT NOT NULL,
		number_of_people INTEGER NOT NULL,
		travelers_json TEXT NOT NULL,
		room_type TEXT NOT NULL DEFAULT 'N/A',
		insurance BOOLEAN NOT NULL DEFAULT FALSE,
		total_price TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Pending',
		refund_amount TEXT NOT NULL DEFAULT '0',
		cancellation_date TEXT,
		payment_date TEXT,
		created_at TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 0
	);

	-- CRITICAL: the seat count on every create hits this
	CREATE INDEX IF NOT EXISTS idx_bookings_capacity
		ON bookings(package_id, trip_date, status);
	CREATE INDEX IF NOT EXISTS idx_bookings_user
		ON bookings(user_id);
	CREATE INDEX IF NOT EXISTS idx_bookings_status
		ON bookings(status);

	-- Wallet ledger (append-only; no UPDATE or DELETE on this table)
	CREATE TABLE IF NOT EXISTS wallet_transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		tx_type TEXT NOT NULL,
		description TEXT,
		booking_id TEXT,
		date TEXT NOT NULL,
		idempotency_key TEXT UNIQUE
	);

	CREATE INDEX IF NOT EXISTS idx_wallet_user_date
		ON wallet_transactions(user_id, date DESC);
	CREATE INDEX IF NOT EXISTS idx_wallet_booking
		ON wallet_transactions(booking_id) WHERE booking_id IS NOT NULL;

	-- Notifications
	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		kind TEXT NOT NULL,
		read BOOLEAN NOT NULL DEFAULT FALSE,
		email_preview_url TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_notifications_user
		ON notifications(user_id, created_at DESC);

	-- Package reviews (one per traveler per package)
	CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		package_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		rating INTEGER NOT NULL,
		comment TEXT,
		created_at TEXT NOT NULL,
		UNIQUE(package_id, user_id)
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_package
		ON reviews(package_id, created_at DESC);

	-- Activity log (append-only admin audit trail)
	CREATE TABLE IF NOT EXISTS activity_logs (
		id TEXT PRIMARY KEY,
		actor_id TEXT NOT NULL,
		action TEXT NOT NULL,
		entity_kind TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		details_json TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_activity_created
		ON activity_logs(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so every query helper can
// run inside or outside an explicit transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// PACKAGES
// =============================================================================

// SavePackage inserts or updates a package.
func (s *Store) SavePackage(ctx context.Context, p booking.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return savePackage(ctx, s.db, p)
}

func savePackage(ctx context.Context, db dbtx, p booking.Package) error {
	query := `
		INSERT INTO packages
		(id, name, destination, description, price, max_people, available, start_date, end_date, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			destination = excluded.destination,
			description = excluded.description,
			price = excluded.price,
			max_people = excluded.max_people,
			available = excluded.available,
			start_date = excluded.start_date,
			end_date = excluded.end_date
	`

	_, err := db.ExecContext(ctx, query,
		string(p.ID), p.Name, p.Destination, p.Description,
		p.Price.String(), p.MaxPeople, p.Available,
		p.StartDate.Format(time.RFC3339), p.EndDate.Format(time.RFC3339),
		string(p.CreatedBy), p.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save package: %w", err)
	}
	return nil
}

// GetPackage retrieves a package by ID. Returns (nil, nil) when missing.
func (s *Store) GetPackage(ctx context.Context, id booking.PackageID) (*booking.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getPackage(ctx, s.db, id)
}

func getPackage(ctx context.Context, db dbtx, id booking.PackageID) (*booking.Package, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, name, destination, description, price, max_people, available, start_date, end_date, created_by, created_at
		 FROM packages WHERE id = ?`, string(id))

	p, err := scanPackage(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPackages returns all packages, available or not.
func (s *Store) ListPackages(ctx context.Context) ([]booking.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listPackages(ctx, s.db)
}

func listPackages(ctx context.Context, db dbtx) ([]booking.Package, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, destination, description, price, max_people, available, start_date, end_date, created_by, created_at
		 FROM packages ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packages []booking.Package
	for rows.Next() {
		p, err := scanPackage(rows.Scan)
		if err != nil {
			return nil, err
		}
		packages = append(packages, *p)
	}
	return packages, rows.Err()
}

func scanPackage(scan func(...any) error) (*booking.Package, error) {
	var (
		p                  booking.Package
		id, createdBy      string
		price              string
		startDate, endDate sql.NullString
		description        sql.NullString
		createdAt          string
	)

	err := scan(&id, &p.Name, &p.Destination, &description, &price,
		&p.MaxPeople, &p.Available, &startDate, &endDate, &createdBy, &createdAt)
	if err != nil {
		return nil, err
	}

	p.ID = booking.PackageID(id)
	p.CreatedBy = booking.UserID(createdBy)
	p.Description = description.String
	p.Price = mustDecimal(price)
	if startDate.Valid {
		p.StartDate, _ = time.Parse(time.RFC3339, startDate.String)
	}
	if endDate.Valid {
		p.EndDate, _ = time.Parse(time.RFC3339, endDate.String)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &p, nil
}

// =============================================================================
// BOOKINGS
// =============================================================================

const bookingColumns = `id, package_id, user_id, trip_date, number_of_people, travelers_json,
	room_type, insurance, total_price, status, refund_amount, cancellation_date, payment_date, created_at, version`

// InsertBooking persists a new booking. Insert-only.
func (s *Store) InsertBooking(ctx context.Context, b booking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertBooking(ctx, s.db, b)
}

func insertBooking(ctx context.Context, db dbtx, b booking.Booking) error {
	travelersJSON, err := json.Marshal(b.Travelers)
	if err != nil {
		return fmt.Errorf("failed to encode travelers: %w", err)
	}

	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.ExecContext(ctx, query,
		string(b.ID), string(b.PackageID), string(b.UserID),
		b.TripDate.Format(dateOnly),
		b.NumberOfPeople, string(travelersJSON),
		string(b.RoomType), b.Insurance,
		b.TotalPrice.String(), string(b.Status), b.RefundAmount.String(),
		nullTime(b.CancellationDate), nullTime(b.PaymentDate),
		b.CreatedAt.Format(time.RFC3339), b.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// GetBooking retrieves a booking by ID. Returns (nil, nil) when missing.
func (s *Store) GetBooking(ctx context.Context, id booking.BookingID) (*booking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getBooking(ctx, s.db, id)
}

func getBooking(ctx context.Context, db dbtx, id booking.BookingID) (*booking.Booking, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, string(id))

	b, err := scanBooking(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBookings returns bookings matching the filter, newest first.
func (s *Store) ListBookings(ctx context.Context, f booking.BookingFilter) ([]booking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listBookings(ctx, s.db, f)
}

func listBookings(ctx context.Context, db dbtx, f booking.BookingFilter) ([]booking.Booking, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*f.Status))
	}
	if f.PackageID != nil {
		where = append(where, "package_id = ?")
		args = append(args, string(*f.PackageID))
	}
	if f.UserID != nil {
		where = append(where, "user_id = ?")
		args = append(args, string(*f.UserID))
	}
	if f.TripFrom != nil {
		where = append(where, "trip_date >= ?")
		args = append(args, f.TripFrom.Format(dateOnly))
	}
	if f.TripTo != nil {
		where = append(where, "trip_date <= ?")
		args = append(args, f.TripTo.Format(dateOnly))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// BookedSeats sums party sizes over seat-holding bookings for the exact
// (package, trip date) pair.
func (s *Store) BookedSeats(ctx context.Context, packageID booking.PackageID, tripDate time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bookedSeats(ctx, s.db, packageID, tripDate)
}

func bookedSeats(ctx context.Context, db dbtx, packageID booking.PackageID, tripDate time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(number_of_people), 0)
		FROM bookings
		WHERE package_id = ? AND trip_date = ? AND status IN (?, ?)
	`

	var total int
	err := db.QueryRowContext(ctx, query,
		string(packageID),
		booking.NormalizeTripDate(tripDate).Format(dateOnly),
		string(booking.StatusPending), string(booking.StatusConfirmed),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count booked seats: %w", err)
	}
	return total, nil
}

// UpdateBooking persists a status transition guarded by the optimistic
// version check.
func (s *Store) UpdateBooking(ctx context.Context, b booking.Booking, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateBooking(ctx, s.db, b, expectedVersion)
}

func updateBooking(ctx context.Context, db dbtx, b booking.Booking, expectedVersion int64) error {
	query := `
		UPDATE bookings SET
			status = ?,
			refund_amount = ?,
			cancellation_date = ?,
			payment_date = ?,
			version = version + 1
		WHERE id = ? AND version = ?
	`

	res, err := db.ExecContext(ctx, query,
		string(b.Status), b.RefundAmount.String(),
		nullTime(b.CancellationDate), nullTime(b.PaymentDate),
		string(b.ID), expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the row is gone or someone else transitioned it first.
		var exists int
		if err := db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM bookings WHERE id = ?", string(b.ID)).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return booking.ErrNotFound
		}
		return booking.ErrConflict
	}
	return nil
}

func scanBooking(scan func(...any) error) (*booking.Booking, error) {
	var (
		b                             booking.Booking
		id, packageID, userID         string
		tripDate, createdAt           string
		travelersJSON                 string
		roomType, status              string
		totalPrice, refundAmount      string
		cancellationDate, paymentDate sql.NullString
	)

	err := scan(&id, &packageID, &userID, &tripDate, &b.NumberOfPeople,
		&travelersJSON, &roomType, &b.Insurance, &totalPrice, &status,
		&refundAmount, &cancellationDate, &paymentDate, &createdAt, &b.Version)
	if err != nil {
		return nil, err
	}

	b.ID = booking.BookingID(id)
	b.PackageID = booking.PackageID(packageID)
	b.UserID = booking.UserID(userID)
	b.RoomType = booking.RoomType(roomType)
	b.Status = booking.Status(status)
	b.TotalPrice = mustDecimal(totalPrice)
	b.RefundAmount = mustDecimal(refundAmount)

	day, err := time.Parse(dateOnly, tripDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trip date %q: %w", tripDate, err)
	}
	b.TripDate = day
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	b.CancellationDate = parseNullTime(cancellationDate)
	b.PaymentDate = parseNullTime(paymentDate)

	if err := json.Unmarshal([]byte(travelersJSON), &b.Travelers); err != nil {
		return nil, fmt.Errorf("failed to decode travelers: %w", err)
	}
	return &b, nil
}

// =============================================================================
// USERS
// =============================================================================

// SaveUser inserts or updates a user. The wallet balance is written as-is
// on insert only; balance mutations go through Apply.
func (s *Store) SaveUser(ctx context.Context, u booking.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveUser(ctx, s.db, u)
}

func saveUser(ctx context.Context, db dbtx, u booking.User) error {
	query := `
		INSERT INTO users (id, name, email, role, wallet_balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role
	`

	_, err := db.ExecContext(ctx, query,
		string(u.ID), u.Name, u.Email, string(u.Role),
		u.WalletBalance.String(), u.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID. Returns (nil, nil) when missing.
func (s *Store) GetUser(ctx context.Context, id booking.UserID) (*booking.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getUser(ctx, s.db, id)
}

func getUser(ctx context.Context, db dbtx, id booking.UserID) (*booking.User, error) {
	row := db.QueryRowContext(ctx,
		"SELECT id, name, email, role, wallet_balance, created_at FROM users WHERE id = ?",
		string(id))

	u, err := scanUser(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers returns all users ordered by name.
func (s *Store) ListUsers(ctx context.Context) ([]booking.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listUsers(ctx, s.db)
}

func listUsers(ctx context.Context, db dbtx) ([]booking.User, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, name, email, role, wallet_balance, created_at FROM users ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []booking.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUserRole changes a user's role.
func (s *Store) UpdateUserRole(ctx context.Context, id booking.UserID, role booking.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateUserRole(ctx, s.db, id, role)
}

func updateUserRole(ctx context.Context, db dbtx, id booking.UserID, role booking.Role) error {
	res, err := db.ExecContext(ctx,
		"UPDATE users SET role = ? WHERE id = ?", string(role), string(id))
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrNotFound
	}
	return nil
}

func scanUser(scan func(...any) error) (*booking.User, error) {
	var (
		u         booking.User
		id, role  string
		balance   string
		createdAt string
	)

	err := scan(&id, &u.Name, &u.Email, &role, &balance, &createdAt)
	if err != nil {
		return nil, err
	}

	u.ID = booking.UserID(id)
	u.Role = booking.Role(role)
	u.WalletBalance = mustDecimal(balance)
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &u, nil
}

// =============================================================================
// WALLET LEDGER (wallet.Store interface)
// =============================================================================

// Apply appends a ledger row and moves the user's balance by the signed
// amount, atomically. Runs in its own transaction when called outside
// WithTx.
func (s *Store) Apply(ctx context.Context, tx wallet.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := applyWalletTx(ctx, sqlTx, tx); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func applyWalletTx(ctx context.Context, db dbtx, tx wallet.Transaction) error {
	if tx.IdempotencyKey != "" {
		var count int
		if err := db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM wallet_transactions WHERE idempotency_key = ?",
			tx.IdempotencyKey).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return wallet.ErrDuplicateTransaction
		}
	}

	var balanceStr string
	err := db.QueryRowContext(ctx,
		"SELECT wallet_balance FROM users WHERE id = ?", tx.UserID).Scan(&balanceStr)
	if err == sql.ErrNoRows {
		return wallet.ErrUserNotFound
	}
	if err != nil {
		return err
	}

	next := mustDecimal(balanceStr).Add(tx.Amount)
	if next.IsNegative() {
		return wallet.ErrInsufficientBalance
	}

	if _, err := db.ExecContext(ctx,
		"UPDATE users SET wallet_balance = ? WHERE id = ?",
		next.String(), tx.UserID); err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO wallet_transactions
		(id, user_id, amount, tx_type, description, booking_id, date, idempotency_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Amount.String(), string(tx.Type),
		tx.Description, nullString(tx.BookingID),
		tx.Date.Format(time.RFC3339), nullString(tx.IdempotencyKey),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return wallet.ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to append wallet transaction: %w", err)
	}
	return nil
}

// Balance returns the user's current wallet balance.
func (s *Store) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return walletBalance(ctx, s.db, userID)
}

func walletBalance(ctx context.Context, db dbtx, userID string) (decimal.Decimal, error) {
	var balanceStr string
	err := db.QueryRowContext(ctx,
		"SELECT wallet_balance FROM users WHERE id = ?", userID).Scan(&balanceStr)
	if err == sql.ErrNoRows {
		return decimal.Zero, wallet.ErrUserNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return mustDecimal(balanceStr), nil
}

// History returns the user's ledger rows, newest first.
func (s *Store) History(ctx context.Context, userID string) ([]wallet.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return walletHistory(ctx, s.db, userID)
}

func walletHistory(ctx context.Context, db dbtx, userID string) ([]wallet.Transaction, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, amount, tx_type, description, booking_id, date, idempotency_key
		FROM wallet_transactions
		WHERE user_id = ?
		ORDER BY date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet history: %w", err)
	}
	defer rows.Close()

	var txs []wallet.Transaction
	for rows.Next() {
		var (
			tx                      wallet.Transaction
			amount, txType, dateStr string
			description             sql.NullString
			bookingID, idemKey      sql.NullString
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &amount, &txType,
			&description, &bookingID, &dateStr, &idemKey); err != nil {
			return nil, err
		}
		tx.Amount = mustDecimal(amount)
		tx.Type = wallet.TxType(txType)
		tx.Description = description.String
		tx.BookingID = bookingID.String
		tx.IdempotencyKey = idemKey.String
		tx.Date, _ = time.Parse(time.RFC3339, dateStr)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// =============================================================================
// NOTIFICATIONS (notify.NotificationStore interface)
// =============================================================================

// SaveNotification persists an in-app notification.
func (s *Store) SaveNotification(ctx context.Context, n notify.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, title, message, kind, read, email_preview_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Title, n.Message, string(n.Kind),
		n.Read, nullString(n.EmailPreviewURL), n.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

// MarkNotificationRead flags a notification as read. Scoped to the owner
// so one user cannot touch another's feed.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = TRUE WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrNotFound
	}
	return nil
}

// ListNotifications returns a user's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string) ([]notify.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, message, kind, read, email_preview_url, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []notify.Notification
	for rows.Next() {
		var (
			n          notify.Notification
			kind       string
			previewURL sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message,
			&kind, &n.Read, &previewURL, &createdAt); err != nil {
			return nil, err
		}
		n.Kind = notify.Kind(kind)
		n.EmailPreviewURL = previewURL.String
		n.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// =============================================================================
// REVIEWS (booking.ReviewStore interface)
// =============================================================================

// SaveReview inserts a review, replacing the traveler's earlier review of
// the same package.
func (s *Store) SaveReview(ctx context.Context, r booking.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, package_id, user_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(package_id, user_id) DO UPDATE SET
			rating = excluded.rating,
			comment = excluded.comment,
			created_at = excluded.created_at`,
		r.ID, string(r.PackageID), string(r.UserID), r.Rating,
		nullString(r.Comment), r.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save review: %w", err)
	}
	return nil
}

// ListReviews returns a package's reviews, newest first.
func (s *Store) ListReviews(ctx context.Context, packageID booking.PackageID) ([]booking.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, package_id, user_id, rating, comment, created_at
		FROM reviews
		WHERE package_id = ?
		ORDER BY created_at DESC`, string(packageID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []booking.Review
	for rows.Next() {
		var (
			r         booking.Review
			pkgID     string
			userID    string
			comment   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&r.ID, &pkgID, &userID, &r.Rating, &comment, &createdAt); err != nil {
			return nil, err
		}
		r.PackageID = booking.PackageID(pkgID)
		r.UserID = booking.UserID(userID)
		r.Comment = comment.String
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// =============================================================================
// ACTIVITY LOG
// =============================================================================

// AppendActivity records an audit entry. Append-only.
func (s *Store) AppendActivity(ctx context.Context, entry booking.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendActivity(ctx, s.db, entry)
}

func appendActivity(ctx context.Context, db dbtx, entry booking.ActivityLog) error {
	detailsJSON, _ := json.Marshal(entry.Details)

	_, err := db.ExecContext(ctx, `
		INSERT INTO activity_logs (id, actor_id, action, entity_kind, entity_id, details_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, string(entry.ActorID), entry.Action, entry.EntityKind,
		entry.EntityID, string(detailsJSON), entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	return nil
}

// ListActivity returns recent audit entries, newest first.
func (s *Store) ListActivity(ctx context.Context, limit int) ([]booking.ActivityLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listActivity(ctx, s.db, limit)
}

func listActivity(ctx context.Context, db dbtx, limit int) ([]booking.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, actor_id, action, entity_kind, entity_id, details_json, created_at
		FROM activity_logs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []booking.ActivityLog
	for rows.Next() {
		var (
			entry       booking.ActivityLog
			actorID     string
			detailsJSON sql.NullString
			createdAt   string
		)
		if err := rows.Scan(&entry.ID, &actorID, &entry.Action,
			&entry.EntityKind, &entry.EntityID, &detailsJSON, &createdAt); err != nil {
			return nil, err
		}
		entry.ActorID = booking.UserID(actorID)
		entry.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if detailsJSON.Valid && detailsJSON.String != "" {
			if err := json.Unmarshal([]byte(detailsJSON.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("failed to decode activity details for %s: %w", entry.ID, err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// =============================================================================
// TRANSACTIONS (booking.Store WithTx)
// =============================================================================

// WithTx executes fn within a database transaction. The write lock is held
// for the whole function.
func (s *Store) WithTx(ctx context.Context, fn func(booking.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore routes every call through the open *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) SavePackage(ctx context.Context, p booking.Package) error {
	return savePackage(ctx, ts.tx, p)
}

func (ts *txStore) GetPackage(ctx context.Context, id booking.PackageID) (*booking.Package, error) {
	return getPackage(ctx, ts.tx, id)
}

func (ts *txStore) ListPackages(ctx context.Context) ([]booking.Package, error) {
	return listPackages(ctx, ts.tx)
}

func (ts *txStore) InsertBooking(ctx context.Context, b booking.Booking) error {
	return insertBooking(ctx, ts.tx, b)
}

func (ts *txStore) GetBooking(ctx context.Context, id booking.BookingID) (*booking.Booking, error) {
	return getBooking(ctx, ts.tx, id)
}

func (ts *txStore) ListBookings(ctx context.Context, f booking.BookingFilter) ([]booking.Booking, error) {
	return listBookings(ctx, ts.tx, f)
}

func (ts *txStore) BookedSeats(ctx context.Context, packageID booking.PackageID, tripDate time.Time) (int, error) {
	return bookedSeats(ctx, ts.tx, packageID, tripDate)
}

func (ts *txStore) UpdateBooking(ctx context.Context, b booking.Booking, expectedVersion int64) error {
	return updateBooking(ctx, ts.tx, b, expectedVersion)
}

func (ts *txStore) SaveUser(ctx context.Context, u booking.User) error {
	return saveUser(ctx, ts.tx, u)
}

func (ts *txStore) GetUser(ctx context.Context, id booking.UserID) (*booking.User, error) {
	return getUser(ctx, ts.tx, id)
}

func (ts *txStore) ListUsers(ctx context.Context) ([]booking.User, error) {
	return listUsers(ctx, ts.tx)
}

func (ts *txStore) UpdateUserRole(ctx context.Context, id booking.UserID, role booking.Role) error {
	return updateUserRole(ctx, ts.tx, id, role)
}

func (ts *txStore) Apply(ctx context.Context, tx wallet.Transaction) error {
	return applyWalletTx(ctx, ts.tx, tx)
}

func (ts *txStore) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	return walletBalance(ctx, ts.tx, userID)
}

func (ts *txStore) History(ctx context.Context, userID string) ([]wallet.Transaction, error) {
	return walletHistory(ctx, ts.tx, userID)
}

func (ts *txStore) AppendActivity(ctx context.Context, entry booking.ActivityLog) error {
	return appendActivity(ctx, ts.tx, entry)
}

func (ts *txStore) ListActivity(ctx context.Context, limit int) ([]booking.ActivityLog, error) {
	return listActivity(ctx, ts.tx, limit)
}

// WithTx on a txStore runs fn against the same transaction.
func (ts *txStore) WithTx(_ context.Context, fn func(booking.Store) error) error {
	return fn(ts)
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"wallet_transactions", "notifications", "activity_logs", "bookings", "packages", "users"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}

func parseNullTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return nil
	}
	return &t
}

func mustDecimal(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
