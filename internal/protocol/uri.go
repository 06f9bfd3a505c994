package protocol

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultScheme is the scheme the host registers for image requests.
const DefaultScheme = "thumb"

// Request is a parsed virtual-resource URI.
type Request struct {
	// Path is the percent-decoded virtual path.
	Path string
	// RawPath is the path as it appeared in the URI.
	RawPath string
	// Width is the requested width; 0 means the original.
	Width int
	// Root is the project root used to resolve relative paths.
	Root string
}

// ParseURI parses uri. Both "scheme://localhost/path" and "scheme://path"
// forms are accepted, as is a bare "/path" as seen by an HTTP handler.
// A missing, malformed or negative w yields defaultWidth. Unknown query
// parameters are ignored.
func ParseURI(uri, scheme string, defaultWidth int) Request {
	if scheme == "" {
		scheme = DefaultScheme
	}

	rawPath, query, _ := strings.Cut(uri, "?")

	switch {
	case strings.HasPrefix(rawPath, scheme+"://localhost/"):
		rawPath = strings.TrimPrefix(rawPath, scheme+"://localhost/")
	case strings.HasPrefix(rawPath, scheme+"://"):
		rawPath = strings.TrimPrefix(rawPath, scheme+"://")
	default:
		rawPath = strings.TrimPrefix(rawPath, "/")
	}

	req := Request{RawPath: rawPath, Width: defaultWidth}

	if decoded, err := url.PathUnescape(rawPath); err == nil {
		req.Path = decoded
	} else {
		req.Path = rawPath
	}

	for _, pair := range strings.Split(query, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		switch key {
		case "w":
			if w, err := strconv.Atoi(value); err == nil && w >= 0 {
				req.Width = w
			}
		case "root":
			if root, err := url.PathUnescape(value); err == nil {
				req.Root = root
			}
		}
	}

	return req
}
