// Package persistence provides database storage implementations.
package persistence

import (
	"context"

	"github.com/helixml/bookshelf/internal/database"
)

// AutoMigrate creates or updates the catalog tables.
func AutoMigrate(ctx context.Context, db database.Database) error {
	return db.Session(ctx).AutoMigrate(
		&BookModel{},
		&ReviewModel{},
	)
}
