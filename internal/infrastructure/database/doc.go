// Package database provides SQLite connectivity for the Harbour logbook.
//
// This package manages:
//   - Opening the database file with WAL mode and a busy timeout
//   - Applying versioned schema migrations from an fs.FS
//   - Health checks and lifecycle management
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql. Migrations are additive-only.
package database
