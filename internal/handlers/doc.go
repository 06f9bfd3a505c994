// Package handlers exposes the subsystem as an http.Handler for hosts that
// route their custom URI scheme through net/http (most webview bindings do).
//
// Routes:
//
//	GET  /_health          liveness and pool status
//	GET  /_version         build information
//	GET  /_stats           catalog totals
//	GET  /_metrics         Prometheus metrics (optional)
//	POST /_assets/temp     store a pasted image; body is base64, a data URI or raw image bytes
//	POST /_assets/commit   commit virtual paths into a project
//	GET  /{path}           any other path is an image request for the dispatcher
//
// The router matches on the encoded path, so a percent-encoded virtual path
// such as /_temp%2Fabc.png never collides with the control routes.
package handlers
