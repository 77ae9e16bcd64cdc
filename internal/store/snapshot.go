package store

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// CreateSnapshot writes a consistent copy of the database to destPath using
// VACUUM INTO. The copy is taken online; writers are not blocked.
func (db *DB) CreateSnapshot(ctx context.Context, destPath string) error {
	if db.path == ":memory:" {
		return errors.New("cannot snapshot an in-memory database")
	}

	// VACUUM INTO refuses to overwrite an existing file.
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale snapshot: %w", err)
	}

	if _, err := db.conn.ExecContext(ctx, "VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("vacuum into %q: %w", destPath, err)
	}
	return nil
}
