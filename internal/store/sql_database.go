package store

import (
	"database/sql"

	"github.com/MKhiriev/drpg-sync/internal/logger"
	"github.com/MKhiriev/drpg-sync/migrations"
)

// DB wraps the SQLite handle together with the file it was opened from.
type DB struct {
	*sql.DB
	path   string
	logger *logger.Logger
}

func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}
