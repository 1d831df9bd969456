/*
main.go - Application entry point

PURPOSE:

	Initializes and starts the Voyago booking engine server. Handles
	configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
 1. Load .env (if present) and parse command-line flags
 2. Initialize SQLite store
 3. Register Prometheus metrics
 4. Wire ledger, notifier, lifecycle service, reporter
 5. Seed the master admin account
 6. Start server with graceful shutdown

COMMAND-LINE FLAGS:

	-port    HTTP server port (default: 8080)
	-db      SQLite database path (default: voyago.db)
	         Use ":memory:" for an in-memory database

ENVIRONMENT:

	JWT_SECRET    Token signing secret (required outside dev)
	ADMIN_EMAIL   Master admin email (default: admin@voyago.local)

GRACEFUL SHUTDOWN:

	On SIGINT/SIGTERM:
	1. Stop accepting new connections
	2. Wait for active requests to complete (30s timeout)
	3. Close database connection
	4. Exit

EXAMPLES:

	# Run with file database
	./server -db="./data/voyago.db"

	# Run with in-memory database
	./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/voyago/booking-engine/api"
	"github.com/voyago/booking-engine/booking"
	"github.com/voyago/booking-engine/metrics"
	"github.com/voyago/booking-engine/notify"
	"github.com/voyago/booking-engine/report"
	"github.com/voyago/booking-engine/store/sqlite"
	"github.com/voyago/booking-engine/wallet"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "voyago.db", "SQLite database path")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
		log.Println("Warning: JWT_SECRET not set, using development default")
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	metrics.Register()

	if err := seedAdmin(context.Background(), store); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	dispatcher := notify.NewDispatcher(&notify.StoreNotifier{Store: store}, notify.LogEmailer{})
	service := booking.NewService(store, dispatcher)
	ledger := wallet.NewLedger(store)
	reporter := report.New(store)
	tokens := api.NewTokenIssuer(secret)

	handler := api.NewHandler(store, service, ledger, reporter, store, store, tokens)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// seedAdmin ensures the single master admin account exists. Role changes
// through the API can never create another admin, so this is the only
// place the role is granted.
func seedAdmin(ctx context.Context, store *sqlite.Store) error {
	const adminID = "admin"

	existing, err := store.GetUser(ctx, adminID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@voyago.local"
	}

	log.Printf("Seeding master admin account (%s)", email)
	return store.SaveUser(ctx, booking.User{
		ID:            adminID,
		Name:          "Master Admin",
		Email:         email,
		Role:          booking.RoleAdmin,
		WalletBalance: decimal.Zero,
		CreatedAt:     time.Now(),
	})
}
