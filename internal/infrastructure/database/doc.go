// Package database provides SQLite connectivity for the activity log.
//
// This package manages:
//   - File or in-memory (":memory:") SQLite connections
//   - WAL mode and busy timeout for file databases
//   - Schema migrations from an embedded filesystem
//
// All queries use parameterised statements. Database files are created
// with 0600 permissions.
//
// Usage:
//
//	db, err := database.Open(database.ConfigFrom(cfg.Database))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with a
// matching .down.sql, and are applied oldest first.
package database
