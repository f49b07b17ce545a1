package testsupport

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"hermes/internal/adapters/postgres"
)

// PostgresTestHelper manages a migrated, empty database for integration tests.
type PostgresTestHelper struct {
	client *postgres.Client
}

// NewTestPostgres connects using the test environment, applies the schema and
// truncates all tables so every test starts from a clean slate.
func NewTestPostgres(t *testing.T) *PostgresTestHelper {
	t.Helper()

	cfg := LoadPostgresConfigFromEnv(t)

	client, err := postgres.NewClient(cfg)
	if err != nil {
		t.Fatalf("failed to create postgres client: %v", err)
	}

	ctx := context.Background()
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("failed to migrate schema: %v", err)
	}

	helper := &PostgresTestHelper{client: client}
	helper.truncate(t)

	t.Cleanup(func() {
		helper.truncate(t)
		_ = client.Close()
	})

	return helper
}

// DB returns the underlying database handle
func (h *PostgresTestHelper) DB() *sqlx.DB {
	return h.client.DB()
}

// Close closes the connection; registered cleanups also call this path.
func (h *PostgresTestHelper) Close() {
	_ = h.client.Close()
}

func (h *PostgresTestHelper) truncate(t *testing.T) {
	t.Helper()

	// analyses cascades from articles, truncate both explicitly anyway
	_, err := h.client.DB().Exec(`TRUNCATE TABLE analyses, articles, stock_prices RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}
