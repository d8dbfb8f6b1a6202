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

	"inkwell/internal/database"
	"inkwell/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
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

	t.Cleanup(func() { db.Close() })
	return db
}

// testBlog creates a throwaway blog owned by a random user. It is deleted,
// with everything it owns, when the test finishes.
func testBlog(t *testing.T, db *sql.DB) *models.Blog {
	t.Helper()

	s := NewBlogStore(db)
	b, err := s.Create(context.Background(), &models.Blog{
		OwnerID: uuid.New(),
		Slug:    "test-" + uuid.NewString()[:8],
		Name:    "Test Blog",
	})
	if err != nil {
		t.Fatalf("create test blog: %v", err)
	}
	t.Cleanup(func() { s.Delete(context.Background(), b.ID) })
	return b
}

// testPage creates a page in the given blog.
func testPage(t *testing.T, db *sql.DB, blogID uuid.UUID, slug string) *models.Page {
	t.Helper()

	p, err := NewPageStore(db).Create(context.Background(), &models.Page{BlogID: blogID, Name: slug, Slug: slug})
	if err != nil {
		t.Fatalf("create test page: %v", err)
	}
	return p
}
