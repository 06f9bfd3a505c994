package database

import (
	"context"
	"time"

	"board-assets/internal/metrics"
)

// RecordAsset upserts a stored asset.
func (c *Catalog) RecordAsset(ctx context.Context, name, location, projectRoot string, size int64) (err error) {
	start := time.Now()
	defer func() { recordQuery("record_asset", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO assets (name, location, project_root, size)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name, location, project_root) DO UPDATE SET
			size = excluded.size,
			updated_at = strftime('%s', 'now')
	`, name, location, projectRoot, size)
	return err
}

// ForgetAsset removes an asset row. Removing a row that does not exist is
// not an error.
func (c *Catalog) ForgetAsset(ctx context.Context, name, location, projectRoot string) (err error) {
	start := time.Now()
	defer func() { recordQuery("forget_asset", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = c.db.ExecContext(ctx, `
		DELETE FROM assets WHERE name = ? AND location = ? AND project_root = ?
	`, name, location, projectRoot)
	return err
}

// RecordThumbnail upserts a generated thumbnail.
func (c *Catalog) RecordThumbnail(ctx context.Context, file, sourcePath string, width int, size int64) (err error) {
	start := time.Now()
	defer func() { recordQuery("record_thumbnail", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO thumbnails (file, source_path, width, size)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(file) DO UPDATE SET
			source_path = excluded.source_path,
			width = excluded.width,
			size = excluded.size
	`, file, sourcePath, width, size)
	return err
}

// GetStats returns catalog totals.
func (c *Catalog) GetStats(ctx context.Context) (stats metrics.Stats, err error) {
	start := time.Now()
	defer func() { recordQuery("stats", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = c.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM assets WHERE location = 'temp'),
			(SELECT COUNT(*) FROM assets WHERE location = 'permanent'),
			(SELECT COUNT(*) FROM thumbnails),
			(SELECT COALESCE(SUM(size), 0) FROM thumbnails)
	`).Scan(&stats.TempAssets, &stats.PermanentAssets, &stats.Thumbnails, &stats.ThumbnailBytes)
	return stats, err
}

// ThumbnailsFor returns the cache entry names generated from sourcePath.
func (c *Catalog) ThumbnailsFor(ctx context.Context, sourcePath string) (files []string, err error) {
	start := time.Now()
	defer func() { recordQuery("thumbnails_for", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := c.db.QueryContext(ctx, `
		SELECT file FROM thumbnails WHERE source_path = ? ORDER BY width
	`, sourcePath)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
