package core_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"quote-engine/internal/db"
)

var (
	containerOnce sync.Once
	containerURL  string
	containerErr  error
)

// testDatabaseURL returns TEST_DATABASE_URL or, when unset, the URL of a
// postgres container shared by every test in the package.
func testDatabaseURL(t *testing.T) string {
	t.Helper()
	_ = godotenv.Load("../../.env")

	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		return url
	}
	if testing.Short() {
		t.Skip("TEST_DATABASE_URL not set and -short given; skipping integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	containerOnce.Do(func() {
		ctx := context.Background()
		c, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("quotes_test"),
			postgres.WithUsername("quotes"),
			postgres.WithPassword("quotes"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			containerErr = err
			return
		}
		containerURL, containerErr = c.ConnectionString(ctx, "sslmode=disable")
	})
	if containerErr != nil {
		t.Skipf("postgres container unavailable: %v", containerErr)
	}
	return containerURL
}

// setupTestDB migrates the test database and empties every table.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := testDatabaseURL(t)

	if err := db.Migrate(url); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, url)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE quote_outbox, quote_audit_log, quote_items, quotes,
		               number_sequences, customers, product_pricing
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}
	return pool
}
