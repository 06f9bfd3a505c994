// Package mediatypes maps image file extensions to MIME types.
//
// Passthrough responses carry the MIME type of the original file, derived
// from its extension. Generated thumbnails are always PNG.
package mediatypes
