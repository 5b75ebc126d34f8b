// Package migrations embeds the SQL schema for the publish audit trail.
package migrations

import (
	"embed"

	"github.com/nerrad567/topology-publisher/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
