package gormindex

import (
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
)

// OpenSQLite opens a sqlite-backed store. Use ":memory:" for an in-memory
// index, e.g. in tests.
func OpenSQLite(path string, logger *slog.Logger) (*Store, error) {
	return Open(sqlite.Open(path), logger)
}

// OpenPostgres opens a postgres-backed store from a DSN.
func OpenPostgres(dsn string, logger *slog.Logger) (*Store, error) {
	return Open(postgres.Open(dsn), logger)
}
