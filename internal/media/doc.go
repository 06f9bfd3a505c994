// Package media turns source images into the bytes served for a requested
// preview width.
//
// A Resizer decodes, scales with a Lanczos kernel and encodes PNG. Two
// implementations exist: ImagingResizer (pure Go, always available) and
// VipsResizer (libvips, enabled with USE_VIPS=true).
//
// A Cache sits in front of a Resizer. For a resolved source path and width it
// either passes the original bytes through (width 0, or width at or beyond
// the native width: images are never upscaled), serves a previously
// generated PNG from the cache directory, or generates, stores and returns a
// new one. Cache file names are "{sha256(key)}_{width}.png", where key is
// "{absPath}?w={width}", optionally stamped with the source's modification
// time and size so in-place edits miss the cache.
//
// Two concurrent requests for the same key may both generate; the output is
// deterministic and writes go through a temp file and rename, so the last
// writer wins without corrupting readers.
package media
