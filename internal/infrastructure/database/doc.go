// Package database provides the SQLite store behind the publish audit trail.
//
// It opens a single-writer connection with WAL journaling and applies
// versioned migrations registered by the migrations package:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Audit.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql. Each migration runs in its own transaction
// and is recorded in schema_migrations.
package database
