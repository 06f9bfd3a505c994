// Package protocol serves the virtual-resource scheme the editor's webview
// uses to load images:
//
//	thumb://localhost/<percent-encoded virtual path>?w=<width>&root=<project root>
//
// Requests are parsed on the caller's goroutine and processed on a worker
// pool; each response is delivered through its own Responder.
package protocol
