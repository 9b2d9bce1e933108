// Package testdb provides a shared test database helper backed by an
// in-memory SQLite database.
package testdb

import (
	"context"
	"testing"

	"github.com/helixml/bookshelf/infrastructure/persistence"
	"github.com/helixml/bookshelf/internal/database"
)

// New creates an in-memory SQLite database with the catalog tables migrated.
// The database is closed when the test finishes.
func New(t *testing.T) database.Database {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewDatabase(ctx, "sqlite:///:memory:")
	if err != nil {
		t.Fatalf("testdb.New: open database: %v", err)
	}
	if err := persistence.AutoMigrate(ctx, db); err != nil {
		_ = db.Close()
		t.Fatalf("testdb.New: auto migrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Seeded creates a migrated database holding the sample catalog.
func Seeded(t *testing.T) database.Database {
	t.Helper()
	db := New(t)
	books, err := persistence.SampleCatalog()
	if err != nil {
		t.Fatalf("testdb.Seeded: load catalog: %v", err)
	}
	if _, err := persistence.NewBookStore(db).SaveAll(context.Background(), books); err != nil {
		t.Fatalf("testdb.Seeded: save catalog: %v", err)
	}
	return db
}
