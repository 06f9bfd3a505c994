package media

import (
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// createTestImage writes a gradient test image to path.
func createTestImage(t *testing.T, path string, width, height int, format string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / width),
				G: uint8((y * 255) / height),
				B: 128,
				A: 255,
			})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image file: %v", err)
	}
	defer f.Close()

	switch format {
	case "jpeg", "jpg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	case "png":
		err = png.Encode(f, img)
	default:
		t.Fatalf("Unsupported test image format: %s", format)
	}
	if err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
}

func TestGetImageDimensions(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name   string
		width  int
		height int
		format string
	}{
		{name: "Small JPEG", width: 100, height: 100, format: "jpeg"},
		{name: "Wide PNG", width: 300, height: 50, format: "png"},
		{name: "Tall PNG", width: 40, height: 400, format: "png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.name+"."+tt.format)
			createTestImage(t, path, tt.width, tt.height, tt.format)

			dims, err := GetImageDimensions(path)
			if err != nil {
				t.Fatalf("GetImageDimensions() error = %v", err)
			}
			if dims.Width != tt.width || dims.Height != tt.height {
				t.Errorf("GetImageDimensions() = %dx%d, want %dx%d", dims.Width, dims.Height, tt.width, tt.height)
			}
		})
	}
}

func TestGetImageDimensionsErrors(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := GetImageDimensions(filepath.Join(tmpDir, "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}

	garbage := filepath.Join(tmpDir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := GetImageDimensions(garbage); err == nil {
		t.Error("expected error for non-image file")
	}
}

func TestProbeBytesWrapsErrProbeFailed(t *testing.T) {
	_, _, err := probeBytes([]byte("definitely not an image"))
	if !errors.Is(err, ErrProbeFailed) {
		t.Errorf("probeBytes() error = %v, want ErrProbeFailed", err)
	}
}

func TestNeedsResize(t *testing.T) {
	tests := []struct {
		width, native int
		want          bool
	}{
		{0, 1000, false},
		{400, 1000, true},
		{999, 1000, true},
		{1000, 1000, false},
		{2000, 1000, false},
	}

	for _, tt := range tests {
		if got := NeedsResize(tt.width, tt.native); got != tt.want {
			t.Errorf("NeedsResize(%d, %d) = %v, want %v", tt.width, tt.native, got, tt.want)
		}
	}
}

func TestTargetHeight(t *testing.T) {
	tests := []struct {
		name                string
		nw, nh, width, want int
	}{
		{"half", 1000, 500, 400, 200},
		{"rounds down", 3, 2, 2, 1},
		{"rounds to nearest", 1000, 333, 500, 167},
		{"never zero", 10000, 1, 10, 1},
		{"degenerate source", 0, 100, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TargetHeight(tt.nw, tt.nh, tt.width); got != tt.want {
				t.Errorf("TargetHeight(%d, %d, %d) = %d, want %d", tt.nw, tt.nh, tt.width, got, tt.want)
			}
		})
	}
}
