// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"certdesk/internal/database"
	"certdesk/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "certdesk")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "certdesk")
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

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// createTestBackground inserts a background row and registers cleanup.
func createTestBackground(t *testing.T, db *sql.DB) *models.Background {
	t.Helper()

	bs := NewBackgroundStore(db)
	bg, err := bs.Create(&models.Background{
		Filename:     "test-bg.png",
		OriginalName: "test-bg.png",
		ContentType:  "image/png",
		SizeBytes:    1024,
		Width:        800,
		Height:       600,
		Bucket:       "test",
		FileKey:      "backgrounds/test-bg.png",
		UploadedBy:   "tester",
	})
	if err != nil {
		t.Fatalf("create test background: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM backgrounds WHERE id = $1", bg.ID)
	})
	return bg
}

// createTestTemplate inserts a template over a fresh background and
// registers cleanup for both.
func createTestTemplate(t *testing.T, db *sql.DB, title string) *models.Template {
	t.Helper()

	bg := createTestBackground(t, db)
	ts := NewTemplateStore(db)
	tpl, err := ts.Create(&models.Template{
		Title:        title,
		Description:  "integration test template",
		BackgroundID: bg.ID,
		CreatedBy:    "tester",
		Fields: []models.Field{
			{Name: "recipient_name", X: 100, Y: 300, FontSize: 24, Color: "#000000",
				FontFamily: "helvetica", FontWeight: "bold", TextAlign: "left"},
		},
	})
	if err != nil {
		t.Fatalf("create test template: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM issued_certificates WHERE template_id = $1", tpl.ID)
		db.Exec("DELETE FROM templates WHERE id = $1", tpl.ID)
	})
	return tpl
}
