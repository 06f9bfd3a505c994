package handlers

import (
	"net/http"

	"board-assets/internal/logging"
	"board-assets/internal/protocol"
)

// ServeThumb hands the request to the dispatcher and writes its response.
// The handler goroutine only waits; all work happens on the worker pool.
func (h *Handlers) ServeThumb(w http.ResponseWriter, r *http.Request) {
	done := make(chan *protocol.Response, 1)
	h.dispatcher.Dispatch(r.URL.RequestURI(), func(resp *protocol.Response) {
		done <- resp
	})

	select {
	case resp := <-done:
		writeResponse(w, r, resp)
	case <-r.Context().Done():
		// The worker still finishes and fills the cache; nobody reads the result.
		logging.Debug("thumb: client gone before response for %s", r.URL.EscapedPath())
	}
}

func writeResponse(w http.ResponseWriter, r *http.Request, resp *protocol.Response) {
	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.Status)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(resp.Body); err != nil {
		logging.Debug("thumb: write failed: %v", err)
	}
}
