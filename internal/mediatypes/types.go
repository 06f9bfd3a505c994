package mediatypes

import (
	"path/filepath"
	"strings"
)

// OctetStream is returned for unknown extensions.
const OctetStream = "application/octet-stream"

// PNG is the MIME type of every generated thumbnail.
const PNG = "image/png"

// MimeTypes maps lowercase extensions, with leading dot, to MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  PNG,
	".apng": "image/apng",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".avif": "image/avif",
	".heic": "image/heic",
	".heif": "image/heif",
}

// GetMimeType returns the MIME type for a lowercase extension with leading
// dot, or OctetStream if it is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return OctetStream
}

// FromPath returns the MIME type for a file path, ignoring extension case.
func FromPath(path string) string {
	return GetMimeType(strings.ToLower(filepath.Ext(path)))
}

// Extension returns the extension of path without the dot, as written, or ""
// if it has none.
func Extension(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}
