package providers

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"wxhm/internal/structures"

	_ "github.com/mattn/go-sqlite3"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS visit_log (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		group_name   TEXT NOT NULL,
		day          TEXT NOT NULL,
		origin_id    TEXT NOT NULL,
		client_class TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_visit_group_day ON visit_log (group_name, day)`,
	`CREATE INDEX IF NOT EXISTS idx_visit_day ON visit_log (day)`,
	`CREATE TABLE IF NOT EXISTS channel_config (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		name            TEXT NOT NULL,
		app_id          TEXT NOT NULL,
		secret          TEXT NOT NULL,
		recipient       TEXT NOT NULL,
		template_id     TEXT NOT NULL,
		template_fields TEXT NOT NULL,
		redirect_url    TEXT NOT NULL DEFAULT '',
		updated_at      INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_channel_config_updated ON channel_config (updated_at DESC, id DESC)`,
}

// OpenSQLite opens (creating if needed) the SQLite file at path and applies the schema.
func OpenSQLite(path string, maxOpenConns int) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("sqlite connection failed: %w", err)
	}
	if maxOpenConns > 0 {
		conn.SetMaxOpenConns(maxOpenConns)
		conn.SetMaxIdleConns(maxOpenConns)
	}
	conn.SetConnMaxIdleTime(10 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("SQLite database ping failed: %w", err)
	}

	for _, stmt := range schema {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return conn, nil
}

func NewDatabaseProvider(conf *structures.Config, logger Logger) (*sql.DB, func(), error) {
	conn, err := OpenSQLite(conf.Database.Path, conf.Database.MaxOpenConns)
	if err != nil {
		return nil, nil, err
	}
	logger.Infof(TypeStorage, "SQLite database ready at %s", conf.Database.Path)
	cleanup := func() {
		if err := conn.Close(); err != nil {
			logger.Errorf(TypeStorage, "Closing database: %s", err)
		}
	}
	return conn, cleanup, nil
}
