// package repositories provides SQLite persistence for client-side state.
package repositories

import (
	"database/sql"
	"fmt"

	"github.com/justmusik/jmk/internal/shared"
)

// Open opens the local database at path and applies pending migrations.
func Open(path string, maxOpenConns, maxIdleConns int) (*sql.DB, error) {
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, err
	}

	shared.ConfigureDatabase(db, maxOpenConns, maxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
