package media

import (
	"bytes"
	"fmt"
	"time"

	"board-assets/internal/logging"
	"board-assets/internal/mediatypes"
	"board-assets/internal/metrics"

	"github.com/disintegration/imaging"
	"github.com/prometheus/client_golang/prometheus"
)

// Thumbnail is the result of serving an image at a requested width.
type Thumbnail struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

// Resizer scales encoded image bytes to a target width.
//
// name is only used to infer the MIME type when the source is returned
// unchanged. Implementations are stateless and safe for concurrent use.
type Resizer interface {
	// Name identifies the backend in metrics and logs.
	Name() string
	// Resize returns src verbatim when width is 0 or at least the native
	// width; otherwise a PNG of the given width with the aspect ratio kept.
	Resize(src []byte, name string, width int) (*Thumbnail, error)
}

// ImagingResizer is the pure-Go Resizer.
type ImagingResizer struct{}

// NewImagingResizer returns the default resizer.
func NewImagingResizer() *ImagingResizer {
	return &ImagingResizer{}
}

// Name implements Resizer.
func (*ImagingResizer) Name() string {
	return "imaging"
}

// Resize implements Resizer.
func (r *ImagingResizer) Resize(src []byte, name string, width int) (*Thumbnail, error) {
	dims, format, err := probeBytes(src)
	if err != nil {
		return nil, err
	}

	if !NeedsResize(width, dims.Width) {
		return &Thumbnail{
			Data:     src,
			MimeType: mediatypes.FromPath(name),
			Width:    dims.Width,
			Height:   dims.Height,
		}, nil
	}

	height := TargetHeight(dims.Width, dims.Height, width)

	decodeStart := time.Now()
	img, err := imaging.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%s): %v", ErrDecode, name, format, err)
	}
	decodeTime := observePhase("decode", decodeStart)

	resizeStart := time.Now()
	resized := imaging.Resize(img, width, height, imaging.Lanczos)
	resizeTime := observePhase("resize", resizeStart)

	encodeStart := time.Now()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	encodeTime := observePhase("encode", encodeStart)

	logging.Debug("%dx%d -> %dx%d (%s): decode %v, resize %v, encode %v",
		dims.Width, dims.Height, width, height, format, decodeTime, resizeTime, encodeTime)

	return &Thumbnail{
		Data:     buf.Bytes(),
		MimeType: mediatypes.PNG,
		Width:    width,
		Height:   height,
	}, nil
}

func observePhase(phase string, start time.Time) time.Duration {
	elapsed := time.Since(start)
	metrics.ThumbnailPhaseDuration.WithLabelValues(phase).Observe(elapsed.Seconds())
	return elapsed
}

// timeGeneration starts a timer for one Resize call on backend.
func timeGeneration(backend string) *prometheus.Timer {
	return prometheus.NewTimer(metrics.ThumbnailGenerationDuration.WithLabelValues(backend))
}
