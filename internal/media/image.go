package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"board-assets/internal/filesystem"
	"board-assets/internal/logging"
)

var (
	// ErrSourceNotFound means the resolved source file does not exist.
	ErrSourceNotFound = errors.New("source file not found")
	// ErrProbeFailed means the source's dimensions could not be read.
	ErrProbeFailed = errors.New("unable to read image dimensions")
	// ErrDecode means the source bytes are corrupt or in an unsupported format.
	ErrDecode = errors.New("image decode failed")
)

// ImageDimensions holds image width and height
type ImageDimensions struct {
	Width  int
	Height int
}

// GetImageDimensions returns image dimensions without fully decoding the image
func GetImageDimensions(path string) (*ImageDimensions, error) {
	file, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, err
	}

	return &ImageDimensions{
		Width:  config.Width,
		Height: config.Height,
	}, nil
}

// probeBytes is GetImageDimensions for in-memory data.
func probeBytes(data []byte) (*ImageDimensions, string, error) {
	config, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	return &ImageDimensions{Width: config.Width, Height: config.Height}, format, nil
}

// NeedsResize reports whether a request for width against an image of
// nativeWidth requires generating a derivative. Width 0 means "original",
// and images are never upscaled.
func NeedsResize(width, nativeWidth int) bool {
	return width > 0 && width < nativeWidth
}

// TargetHeight returns the height that preserves the aspect ratio of a
// nativeWidth x nativeHeight image scaled to width. It is never below 1.
func TargetHeight(nativeWidth, nativeHeight, width int) int {
	if nativeWidth <= 0 {
		return 1
	}
	h := int(math.Round(float64(nativeHeight) * float64(width) / float64(nativeWidth)))
	if h < 1 {
		h = 1
	}
	return h
}
