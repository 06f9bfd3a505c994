package media

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"board-assets/internal/logging"
	"board-assets/internal/mediatypes"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
	vipsAvailable   bool
)

// errVipsUnavailable is returned by VipsResizer before InitVips.
var errVipsUnavailable = errors.New("libvips not available")

// vipsLogHandler routes libvips messages into the application logger.
func vipsLogHandler(domain string, level vips.LogLevel, msg string) {
	switch level {
	case vips.LogLevelError, vips.LogLevelCritical:
		logging.Error("[%s] %s", domain, msg)
	case vips.LogLevelWarning:
		logging.Warn("[%s] %s", domain, msg)
	default:
		logging.Debug("[%s] %s", domain, msg)
	}
}

// vipsVerbosity maps the application log level to the libvips one.
func vipsVerbosity(level logging.LogLevel) vips.LogLevel {
	switch level {
	case logging.LevelDebug:
		return vips.LogLevelInfo
	case logging.LevelWarn:
		return vips.LogLevelError
	case logging.LevelError:
		return vips.LogLevelCritical
	default:
		return vips.LogLevelWarning
	}
}

// InitVips starts libvips. concurrency is the number of libvips threads per
// operation; the worker pool already parallelizes across requests, so 1 is
// the usual choice. Calling it again is a no-op.
func InitVips(concurrency int) error {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return nil
	}

	if concurrency < 1 {
		concurrency = 1
	}

	vips.LoggingSettings(vipsLogHandler, vipsVerbosity(logging.GetLevel()))

	vips.Startup(&vips.Config{
		ConcurrencyLevel: concurrency,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
		ReportLeaks:      false,
		CacheTrace:       false,
		CollectStats:     false,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("libvips initialized successfully (version: %s)", vips.Version)
	return nil
}

// ShutdownVips cleans up libvips resources
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable returns whether libvips is initialized and available
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsAvailable
}

// VipsResizer is a Resizer backed by libvips. It requires InitVips.
type VipsResizer struct{}

// NewVipsResizer returns a libvips-backed resizer.
func NewVipsResizer() *VipsResizer {
	return &VipsResizer{}
}

// Name implements Resizer.
func (*VipsResizer) Name() string {
	return "vips"
}

// Resize implements Resizer using a Lanczos3 kernel and PNG export.
func (r *VipsResizer) Resize(src []byte, name string, width int) (*Thumbnail, error) {
	if !IsVipsAvailable() {
		return nil, errVipsUnavailable
	}

	decodeStart := time.Now()
	ref, err := vips.NewImageFromBuffer(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, name, err)
	}
	defer ref.Close()
	observePhase("decode", decodeStart)

	nativeWidth, nativeHeight := ref.Width(), ref.Height()
	if !NeedsResize(width, nativeWidth) {
		return &Thumbnail{
			Data:     src,
			MimeType: mediatypes.FromPath(name),
			Width:    nativeWidth,
			Height:   nativeHeight,
		}, nil
	}

	resizeStart := time.Now()
	hscale := float64(width) / float64(nativeWidth)
	vscale := float64(TargetHeight(nativeWidth, nativeHeight, width)) / float64(nativeHeight)
	if err := ref.ResizeWithVScale(hscale, vscale, vips.KernelLanczos3); err != nil {
		return nil, fmt.Errorf("vips resize failed: %w", err)
	}
	observePhase("resize", resizeStart)

	encodeStart := time.Now()
	data, _, err := ref.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return nil, fmt.Errorf("vips export failed: %w", err)
	}
	observePhase("encode", encodeStart)

	return &Thumbnail{
		Data:     data,
		MimeType: mediatypes.PNG,
		Width:    ref.Width(),
		Height:   ref.Height(),
	}, nil
}
