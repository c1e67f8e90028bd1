// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"signage/internal/database"
	"signage/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "signage")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "signage")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testTemplate creates a template with n blocks and removes it when the
// test finishes.
func testTemplate(t *testing.T, db *sql.DB, n int) (*models.Template, []models.Block) {
	t.Helper()
	ctx := context.Background()

	tmpl, err := NewTemplateStore(db).Create(ctx, &models.Template{
		DisplayName: "Test Template " + uuid.NewString()[:8],
		BlockCount:  n,
	})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM templates WHERE id = $1", tmpl.ID) })

	blocks, err := NewBlockStore(db).ListByTemplate(ctx, tmpl.ID)
	if err != nil {
		t.Fatalf("list blocks: %v", err)
	}
	return tmpl, blocks
}

func strPtr(s string) *string { return &s }
