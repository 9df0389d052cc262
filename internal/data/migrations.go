package data

import (
	"context"
	"database/sql"

	"github.com/target/carecircle/internal/migrate"
)

// RunMigrations sets up the care_providers schema by delegating to the migrate package.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate.Run(ctx, db)
}
