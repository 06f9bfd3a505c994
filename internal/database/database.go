package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"board-assets/internal/logging"
	"board-assets/internal/metrics"
)

// Default timeout for catalog operations
const defaultTimeout = 5 * time.Second

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

// Catalog records stored assets and generated thumbnails.
type Catalog struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the catalog at dbPath. The parent directory must
// exist and be writable.
func Open(ctx context.Context, dbPath string) (*Catalog, error) {
	logging.Debug("Catalog path: %s", dbPath)

	if err := checkDirectory(dbPath); err != nil {
		return nil, err
	}

	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_temp_store=MEMORY&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close catalog after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to catalog: %w", err)
	}

	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(time.Hour)

	c := &Catalog{db: db, dbPath: dbPath}
	if err := c.migrate(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close catalog after migration failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}

	logging.Info("Catalog opened at %s", dbPath)
	return c, nil
}

func (c *Catalog) migrate(ctx context.Context) error {
	var version int
	if err := c.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	logging.Info("Migrating catalog schema from version %d to %d", version, schemaVersion)

	schema := `
	-- Content-addressed files in the temp dir or a project's assets dir
	CREATE TABLE IF NOT EXISTS assets (
		name TEXT NOT NULL,
		location TEXT NOT NULL,
		project_root TEXT NOT NULL DEFAULT '',
		size INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		PRIMARY KEY (name, location, project_root)
	);

	CREATE INDEX IF NOT EXISTS idx_assets_location ON assets(location);

	-- Generated thumbnails; file is the cache entry name
	CREATE TABLE IF NOT EXISTS thumbnails (
		file TEXT PRIMARY KEY,
		source_path TEXT NOT NULL,
		width INTEGER NOT NULL,
		size INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_thumbnails_source ON thumbnails(source_path);
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Close closes the catalog.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Path returns the database file path.
func (c *Catalog) Path() string {
	return c.dbPath
}

// recordQuery records catalog query metrics
func recordQuery(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.CatalogQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.CatalogQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// checkDirectory verifies that the directory holding dbPath is writable and
// warns about read-only WAL side files, which fail writes later.
func checkDirectory(dbPath string) error {
	dir := filepath.Dir(dbPath)

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat catalog directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("catalog directory %s is not a directory", dir)
	}

	for _, side := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if fi, err := os.Stat(side); err == nil && fi.Mode().Perm()&0o200 == 0 {
			logging.Warn("Catalog file %s is read-only (mode %v), writes will fail", side, fi.Mode())
		}
	}
	return nil
}
