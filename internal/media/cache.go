package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"board-assets/internal/contenthash"
	"board-assets/internal/filesystem"
	"board-assets/internal/logging"
	"board-assets/internal/mediatypes"
	"board-assets/internal/metrics"
)

// Gate holds back generation under resource pressure. WaitIfPaused returns
// false if the wait was abandoned.
type Gate interface {
	WaitIfPaused(ctx context.Context) bool
}

// ErrGenerationAborted is returned when a Gate wait is abandoned.
var ErrGenerationAborted = errors.New("thumbnail generation aborted")

// EntryRecorder is told about every thumbnail the cache writes.
type EntryRecorder interface {
	RecordThumbnail(ctx context.Context, file, sourcePath string, width int, size int64) error
}

// CacheOptions configures a Cache.
type CacheOptions struct {
	// StampSource folds the source's modification time and size into the
	// cache key so that editing a file in place invalidates its previews.
	StampSource bool
	// Recorder, if set, is notified of generated entries. Failures are logged.
	Recorder EntryRecorder
	// Gate, if set, is consulted before every decode.
	Gate Gate
	// Retry configures stat/open retries on stale NFS handles.
	Retry filesystem.RetryConfig
}

// Cache serves images at requested widths from a directory of generated PNGs.
type Cache struct {
	dir     string
	resizer Resizer
	opts    CacheOptions
}

// NewCache creates a cache storing generated thumbnails in dir.
func NewCache(dir string, resizer Resizer, opts CacheOptions) *Cache {
	if err := os.MkdirAll(dir, 0755); err != nil {
		logging.Warn("thumbnail cache: failed to create cache dir %s: %v", dir, err)
	}
	logging.Debug("thumbnail cache: dir %s, resizer %s, stamp source %v", dir, resizer.Name(), opts.StampSource)
	return &Cache{dir: dir, resizer: resizer, opts: opts}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// EntryName returns the cache file name for realPath at width. info is the
// source's FileInfo and is only consulted when StampSource is set.
func (c *Cache) EntryName(realPath string, width int, info os.FileInfo) string {
	absPath, err := filepath.Abs(realPath)
	if err != nil {
		absPath = realPath
	}

	key := absPath + "?w=" + strconv.Itoa(width)
	if c.opts.StampSource && info != nil {
		key += fmt.Sprintf("&mtime=%d&size=%d", info.ModTime().UnixNano(), info.Size())
	}
	return contenthash.Key(key) + "_" + strconv.Itoa(width) + ".png"
}

// Fetch returns realPath's image at width: the original bytes when no resize
// is needed, a cached PNG when one exists, or a newly generated PNG.
func (c *Cache) Fetch(ctx context.Context, realPath string, width int) (*Thumbnail, error) {
	thumb, outcome, err := c.fetch(ctx, realPath, width)
	if err != nil {
		outcome = "error"
	}
	metrics.ThumbnailRequestsTotal.WithLabelValues(outcome).Inc()
	return thumb, err
}

func (c *Cache) fetch(ctx context.Context, realPath string, width int) (*Thumbnail, string, error) {
	info, err := filesystem.StatWithRetry(realPath, c.opts.Retry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %s", ErrSourceNotFound, realPath)
		}
		return nil, "", fmt.Errorf("failed to access %s: %w", realPath, err)
	}
	if info.IsDir() {
		return nil, "", fmt.Errorf("%w: %s is a directory", ErrSourceNotFound, realPath)
	}

	dims, err := GetImageDimensions(realPath)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrProbeFailed, realPath, err)
	}

	if !NeedsResize(width, dims.Width) {
		data, err := filesystem.ReadFileWithRetry(realPath, c.opts.Retry)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", realPath, err)
		}
		return &Thumbnail{
			Data:     data,
			MimeType: mediatypes.FromPath(realPath),
			Width:    dims.Width,
			Height:   dims.Height,
		}, "passthrough", nil
	}

	name := c.EntryName(realPath, width, info)
	cachePath := filepath.Join(c.dir, name)

	data, err := filesystem.ReadFileWithRetry(cachePath, c.opts.Retry)
	if err == nil {
		metrics.ThumbnailCacheHits.Inc()
		logging.Debug("Thumbnail cache hit: %s (w=%d)", realPath, width)
		return &Thumbnail{
			Data:     data,
			MimeType: mediatypes.PNG,
			Width:    width,
			Height:   TargetHeight(dims.Width, dims.Height, width),
		}, "hit", nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		logging.Warn("Thumbnail cache entry %s unreadable, regenerating: %v", cachePath, err)
	}
	metrics.ThumbnailCacheMisses.Inc()

	if c.opts.Gate != nil && !c.opts.Gate.WaitIfPaused(ctx) {
		return nil, "", fmt.Errorf("%w: %s", ErrGenerationAborted, realPath)
	}

	thumb, err := c.generate(realPath, width)
	if err != nil {
		return nil, "", err
	}

	c.store(ctx, cachePath, realPath, width, thumb)
	return thumb, "generated", nil
}

func (c *Cache) generate(realPath string, width int) (*Thumbnail, error) {
	timer := timeGeneration(c.resizer.Name())
	defer timer.ObserveDuration()

	src, err := filesystem.ReadFileWithRetry(realPath, c.opts.Retry)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", realPath, err)
	}

	thumb, err := c.resizer.Resize(src, realPath, width)
	if err != nil {
		return nil, fmt.Errorf("thumbnail generation failed for %s: %w", realPath, err)
	}
	return thumb, nil
}

// store persists a generated thumbnail. A failed write only costs a
// regeneration next time, so it is logged rather than returned.
func (c *Cache) store(ctx context.Context, cachePath, realPath string, width int, thumb *Thumbnail) {
	if thumb.MimeType != mediatypes.PNG {
		// The resizer passed the source through; nothing to cache.
		return
	}

	writeStart := time.Now()
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		logging.Warn("Failed to create thumbnail cache dir %s: %v", c.dir, err)
		return
	}
	if err := filesystem.WriteFileAtomic(cachePath, thumb.Data, 0644); err != nil {
		logging.Warn("Failed to cache thumbnail %s: %v", cachePath, err)
		return
	}
	observePhase("write", writeStart)
	logging.Debug("Thumbnail cached: %s", cachePath)

	if c.opts.Recorder != nil {
		if err := c.opts.Recorder.RecordThumbnail(ctx, filepath.Base(cachePath), realPath, width, int64(len(thumb.Data))); err != nil {
			logging.Warn("Failed to record thumbnail %s in catalog: %v", cachePath, err)
		}
	}
}
