package middleware

import (
	"net/http"
	"strings"
	"time"

	"board-assets/internal/logging"
)

// LoggingConfig holds configuration for the logging middleware
type LoggingConfig struct {
	// SkipPaths are path prefixes that are never logged.
	SkipPaths []string
	// QuietPaths are path prefixes logged at debug level only; everything
	// else is logged at info.
	QuietPaths []string
}

// DefaultLoggingConfig logs control endpoints at info and everything else,
// which is image traffic, at debug.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths: []string{"/_metrics"},
	}
}

// Logger returns request logging middleware. Each line reads
//
//	method path query status bytes time-taken-ms content-type
//
// with "-" standing in for empty fields.
func Logger(config LoggingConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.EscapedPath()
			if hasAnyPrefix(path, config.SkipPaths) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			line := formatLine(r, rec, time.Since(start))
			switch {
			case rec.status >= http.StatusInternalServerError:
				logging.Warn("%s", line)
			case isControlPath(path) && !hasAnyPrefix(path, config.QuietPaths):
				logging.Info("%s", line)
			default:
				logging.Debug("%s", line)
			}
		})
	}
}

func formatLine(r *http.Request, rec *statusRecorder, d time.Duration) string {
	fields := []string{
		sanitizeLogField(r.Method),
		orDash(sanitizeLogField(r.URL.EscapedPath())),
		orDash(sanitizeLogField(r.URL.RawQuery)),
		itoa(int64(rec.status)),
		itoa(rec.bytes),
		itoa(d.Milliseconds()),
		orDash(sanitizeLogField(rec.Header().Get("Content-Type"))),
	}
	return strings.Join(fields, " ")
}

// isControlPath reports whether path is one of the router's own endpoints
// rather than an image request.
func isControlPath(path string) bool {
	return strings.HasPrefix(path, "/_")
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// sanitizeLogField strips control characters so a request cannot forge log
// lines or emit terminal escapes; spaces are replaced to keep fields
// separable.
func sanitizeLogField(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == ' ' || r == '\t':
			b.WriteByte('+')
		case r < 0x20 || r == 0x7f:
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
