// Package middleware wraps the in-process router with request logging and
// Prometheus instrumentation.
//
// Image requests are logged at debug level only: a webview scrolling a
// large board issues hundreds per second.
package middleware
