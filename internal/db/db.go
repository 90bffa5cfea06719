// Package db keeps the local lookup history. It is a record of what was
// searched, fetched and downloaded; it is never consulted to answer a lookup.
package db

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/billmal071/trackermeta/internal/config"
)

var database *sql.DB

const schema = `
CREATE TABLE IF NOT EXISTS search_history (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    query           TEXT NOT NULL,
    result_count    INTEGER NOT NULL DEFAULT 0,
    created_at      DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS lookups (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    module_id       INTEGER NOT NULL,
    filename        TEXT NOT NULL,
    title           TEXT,
    format          TEXT,
    created_at      DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_lookups_module ON lookups(module_id);

CREATE TABLE IF NOT EXISTS downloads (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    module_id       INTEGER NOT NULL,
    file_path       TEXT NOT NULL,
    file_size       INTEGER,
    verified        INTEGER NOT NULL DEFAULT 0,
    created_at      DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// Init opens the database at the configured path
func Init() error {
	return InitAt(config.GetDBPath())
}

// InitAt opens (creating if needed) the database at dbPath
func InitAt(dbPath string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return err
	}

	database = db
	return nil
}

// Enabled reports whether Init has been called
func Enabled() bool {
	return database != nil
}

// Close closes the database connection
func Close() error {
	if database != nil {
		err := database.Close()
		database = nil
		return err
	}
	return nil
}

// ClearHistory removes every recorded search, lookup and download
func ClearHistory() error {
	for _, table := range []string{"search_history", "lookups", "downloads"} {
		if _, err := database.Exec(`DELETE FROM ` + table); err != nil {
			return err
		}
	}
	return nil
}
