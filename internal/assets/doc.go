// Package assets stores pasted images by content and promotes them into a
// project's permanent asset directory.
//
// Every stored file is named {sha256}.{ext}, so writing the same bytes twice
// is a no-op and two concurrent writers of one hash produce the same file.
// Temp files live in one process-wide directory; permanent files live in
// <project>/assets.
package assets
