package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Opens (or creates) the history database in WAL mode. Returns nil nil if no path.
func NewOutput(path string) (module *OutModule, err error) {
	if path == "" {
		return
	}

	if path != ":memory:" {
		err = os.MkdirAll(filepath.Dir(path), 0750)
		if err != nil {
			err = fmt.Errorf("failed to create history directory: %w", err)
			return
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		err = fmt.Errorf("failed to open history database %s: %w", path, err)
		return
	}
	err = db.Ping()
	if err != nil {
		db.Close()
		err = fmt.Errorf("failed to open history database %s: %w", path, err)
		return
	}
	// Single writer, WAL allows concurrent readers
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{ddlDeliveries, ddlStatuses} {
		_, err = db.Exec(stmt)
		if err != nil {
			db.Close()
			err = fmt.Errorf("failed to create history schema: %w", err)
			return
		}
	}

	module = &OutModule{db: db}
	return
}

const ddlDeliveries = `
CREATE TABLE IF NOT EXISTS deliveries (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    recorded_at INTEGER NOT NULL, -- unix milliseconds
    device_id   INTEGER NOT NULL,
    receiver_id INTEGER NOT NULL,
    sequence_id INTEGER NOT NULL,
    command     TEXT    NOT NULL,
    outcome     TEXT    NOT NULL,
    latency_ms  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_deliveries_recorded_at ON deliveries (recorded_at DESC);
`

const ddlStatuses = `
CREATE TABLE IF NOT EXISTS statuses (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    recorded_at INTEGER NOT NULL, -- unix milliseconds
    device_id   INTEGER NOT NULL,
    sender_id   INTEGER NOT NULL,
    frame_rssi  INTEGER NOT NULL,
    rssi        INTEGER NOT NULL,
    battery     REAL    NOT NULL,
    status      INTEGER NOT NULL,
    inputs      TEXT    NOT NULL -- comma separated, empty for unwired
);
CREATE INDEX IF NOT EXISTS idx_statuses_sender ON statuses (sender_id, recorded_at DESC);
`
