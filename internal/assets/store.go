package assets

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"board-assets/internal/contenthash"
	"board-assets/internal/filesystem"
	"board-assets/internal/logging"
	"board-assets/internal/mediatypes"
	"board-assets/internal/metrics"
	"board-assets/internal/vpath"
)

// TempExtension is the extension given to every pasted image.
const TempExtension = "png"

// ErrDecode means a base64 payload could not be decoded.
var ErrDecode = errors.New("invalid base64 image data")

// Location values recorded for stored assets.
const (
	LocationTemp      = "temp"
	LocationPermanent = "permanent"
)

// Recorder is told about every asset written to or removed from disk.
type Recorder interface {
	RecordAsset(ctx context.Context, name, location, projectRoot string, size int64) error
	ForgetAsset(ctx context.Context, name, location, projectRoot string) error
}

// Options configures a Store.
type Options struct {
	// Recorder, if set, is notified of new files. Failures are logged.
	Recorder Recorder
}

// Store implements temp ingestion and commit.
type Store struct {
	resolver *vpath.Resolver
	opts     Options
}

// NewStore creates a store whose temp files live in resolver's temp dir.
func NewStore(resolver *vpath.Resolver, opts Options) *Store {
	return &Store{resolver: resolver, opts: opts}
}

// SaveTempImage decodes a raw base64 string or a data URI and stores the
// result with SaveTemp. For a data URI only the part after the first comma is
// decoded.
func (s *Store) SaveTempImage(ctx context.Context, payload string) (string, error) {
	if _, data, ok := strings.Cut(payload, ","); ok {
		payload = data
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return s.SaveTemp(ctx, data)
}

// SaveTemp writes data to the temp directory under its content hash, unless a
// file with that name already exists, and returns the temp virtual path.
func (s *Store) SaveTemp(ctx context.Context, data []byte) (string, error) {
	start := time.Now()

	name := contenthash.Filename(data, TempExtension)
	dir := s.resolver.TempDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		metrics.AssetWritesTotal.WithLabelValues(LocationTemp, "error").Inc()
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}

	written, err := filesystem.WriteFileIfAbsent(filepath.Join(dir, name), data, 0644)
	if err != nil {
		metrics.AssetWritesTotal.WithLabelValues(LocationTemp, "error").Inc()
		return "", fmt.Errorf("failed to write temp image: %w", err)
	}

	if written {
		metrics.AssetWritesTotal.WithLabelValues(LocationTemp, "written").Inc()
		s.record(ctx, name, LocationTemp, "", int64(len(data)))
	} else {
		metrics.AssetWritesTotal.WithLabelValues(LocationTemp, "deduplicated").Inc()
	}

	logging.Debug("saved temp image %s (%d bytes, new=%v) in %v", name, len(data), written, time.Since(start))
	return vpath.Temp(name).String(), nil
}

// Commit migrates temp and external images referenced by paths into
// <projectRoot>/assets and returns the rewritten paths in input order.
//
// Temp paths are moved, absolute paths to existing files are copied under
// their content hash, and everything else passes through. An item that fails
// keeps its original path. Commit only returns an error when the assets
// directory cannot be created.
func (s *Store) Commit(ctx context.Context, projectRoot string, paths []string) ([]string, error) {
	defer logging.Since("commit", time.Now())

	assetsDir := filepath.Join(projectRoot, vpath.AssetsDir)
	if err := os.MkdirAll(assetsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create assets dir: %w", err)
	}

	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = s.commitOne(ctx, projectRoot, assetsDir, p)
	}
	return out, nil
}

func (s *Store) commitOne(ctx context.Context, projectRoot, assetsDir, p string) string {
	v := vpath.Parse(p)

	switch v.Kind {
	case vpath.KindTemp:
		result, err := s.commitTemp(ctx, projectRoot, assetsDir, v)
		if err != nil {
			logging.Warn("commit: keeping %s: %v", p, err)
			metrics.AssetCommitItemsTotal.WithLabelValues("fallback").Inc()
			return p
		}
		return result
	case vpath.KindAbsolute:
		if !filesystem.Exists(v.Name) {
			break
		}
		result, err := s.importExternal(ctx, projectRoot, assetsDir, v.Name)
		if err != nil {
			logging.Warn("commit: keeping %s: %v", p, err)
			metrics.AssetCommitItemsTotal.WithLabelValues("fallback").Inc()
			return p
		}
		return result
	}

	metrics.AssetCommitItemsTotal.WithLabelValues("passthrough").Inc()
	return p
}

// commitTemp moves a temp file into the assets dir. A missing source is not
// an error: a previous commit already moved it.
func (s *Store) commitTemp(ctx context.Context, projectRoot, assetsDir string, v vpath.VirtualPath) (string, error) {
	src, err := s.resolver.ResolvePath(v, "")
	if err != nil {
		return "", err
	}
	name := filepath.Base(src)
	dst := filepath.Join(assetsDir, name)

	info, err := os.Stat(src)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Already committed, or never existed; the output is the same either way.
	case err != nil:
		return "", err
	case filesystem.Exists(dst):
		if err := os.Remove(src); err != nil {
			logging.Warn("commit: failed to remove redundant temp file %s: %v", src, err)
		} else {
			s.forget(ctx, name, LocationTemp, "")
		}
		metrics.AssetCommitItemsTotal.WithLabelValues("deduplicated").Inc()
		s.record(ctx, name, LocationPermanent, projectRoot, info.Size())
	default:
		if err := filesystem.MoveFile(src, dst); err != nil {
			return "", err
		}
		metrics.AssetCommitItemsTotal.WithLabelValues("moved").Inc()
		metrics.AssetWritesTotal.WithLabelValues(LocationPermanent, "written").Inc()
		s.forget(ctx, name, LocationTemp, "")
		s.record(ctx, name, LocationPermanent, projectRoot, info.Size())
	}

	return vpath.Asset(name).String(), nil
}

// importExternal copies an external file into the assets dir under its
// content hash, keeping the original in place.
func (s *Store) importExternal(ctx context.Context, projectRoot, assetsDir, src string) (string, error) {
	data, err := filesystem.ReadFileWithRetry(src, filesystem.DefaultRetryConfig())
	if err != nil {
		return "", err
	}

	ext := mediatypes.Extension(src)
	if ext == "" {
		ext = "bin"
	}
	name := contenthash.Filename(data, ext)

	written, err := filesystem.WriteFileIfAbsent(filepath.Join(assetsDir, name), data, 0644)
	if err != nil {
		metrics.AssetWritesTotal.WithLabelValues(LocationPermanent, "error").Inc()
		return "", err
	}
	if written {
		metrics.AssetWritesTotal.WithLabelValues(LocationPermanent, "written").Inc()
		s.record(ctx, name, LocationPermanent, projectRoot, int64(len(data)))
	} else {
		metrics.AssetWritesTotal.WithLabelValues(LocationPermanent, "deduplicated").Inc()
	}
	metrics.AssetCommitItemsTotal.WithLabelValues("imported").Inc()

	return vpath.Asset(name).String(), nil
}

func (s *Store) record(ctx context.Context, name, location, projectRoot string, size int64) {
	if s.opts.Recorder == nil {
		return
	}
	if err := s.opts.Recorder.RecordAsset(ctx, name, location, projectRoot, size); err != nil {
		logging.Warn("failed to record asset %s in catalog: %v", name, err)
	}
}

func (s *Store) forget(ctx context.Context, name, location, projectRoot string) {
	if s.opts.Recorder == nil {
		return
	}
	if err := s.opts.Recorder.ForgetAsset(ctx, name, location, projectRoot); err != nil {
		logging.Warn("failed to remove asset %s from catalog: %v", name, err)
	}
}
