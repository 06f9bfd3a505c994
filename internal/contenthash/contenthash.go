// Package contenthash maps content to stable file names.
//
// Every stored asset and every cached thumbnail is named by a lowercase hex
// SHA-256 digest, so byte-identical inputs always land on the same file.
package contenthash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the lowercase hex SHA-256 digest of data.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Filename returns "{Sum(data)}.{ext}". A leading dot on ext is ignored and an
// empty ext yields "bin".
func Filename(data []byte, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "bin"
	}
	return Sum(data) + "." + ext
}

// Key hashes an arbitrary string key, such as a thumbnail cache key.
func Key(key string) string {
	return Sum([]byte(key))
}
