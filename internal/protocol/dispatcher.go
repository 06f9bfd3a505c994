package protocol

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"board-assets/internal/logging"
	"board-assets/internal/media"
	"board-assets/internal/metrics"
	"board-assets/internal/vpath"
	"board-assets/internal/workers"
)

// Response is the reply to one virtual-resource request.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Responder receives exactly one Response per dispatched request.
type Responder func(*Response)

// ErrPoolClosed is reported when a request arrives after shutdown.
var ErrPoolClosed = errors.New("worker pool closed")

// DefaultTimeout bounds one dispatched request, including time spent waiting
// on the memory gate.
const DefaultTimeout = 2 * time.Minute

// Options configures a Dispatcher.
type Options struct {
	// Scheme is stripped from incoming URIs. Defaults to DefaultScheme.
	Scheme string
	// DefaultWidth is used when a request has no usable w parameter.
	DefaultWidth int
	// Timeout bounds each dispatched request. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Dispatcher resolves and serves virtual-resource requests on a worker pool.
type Dispatcher struct {
	pool     *workers.Pool
	resolver *vpath.Resolver
	cache    *media.Cache
	opts     Options
}

// NewDispatcher creates a dispatcher. The pool is owned by the caller.
func NewDispatcher(pool *workers.Pool, resolver *vpath.Resolver, cache *media.Cache, opts Options) *Dispatcher {
	if opts.Scheme == "" {
		opts.Scheme = DefaultScheme
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Dispatcher{pool: pool, resolver: resolver, cache: cache, opts: opts}
}

// Dispatch queues uri for processing and returns immediately. respond is
// called once, from a worker goroutine, unless the pool is closed, in which
// case it is called with a 503 before Dispatch returns.
func (d *Dispatcher) Dispatch(uri string, respond Responder) {
	metrics.ProtocolRequestsInFlight.Inc()
	queued := time.Now()

	ok := d.pool.Submit(func() {
		defer metrics.ProtocolRequestsInFlight.Dec()
		ctx, cancel := context.WithTimeout(context.Background(), d.opts.Timeout)
		defer cancel()
		resp := d.serveRecovered(ctx, uri)
		d.observe(resp, queued)
		respond(resp)
	})
	if !ok {
		metrics.ProtocolRequestsInFlight.Dec()
		resp := textResponse(http.StatusServiceUnavailable, ErrPoolClosed.Error())
		d.observe(resp, queued)
		respond(resp)
	}
}

// Serve processes uri on the calling goroutine.
func (d *Dispatcher) Serve(ctx context.Context, uri string) *Response {
	req := ParseURI(uri, d.opts.Scheme, d.opts.DefaultWidth)

	realPath, err := d.resolver.Resolve(req.Path, req.Root)
	if err != nil {
		logging.Debug("thumb: unresolved %q (root %q)", req.Path, req.Root)
		return textResponse(http.StatusNotFound, "File not found")
	}

	thumb, err := d.cache.Fetch(ctx, realPath, req.Width)
	if err != nil {
		logging.Error("Thumb Error: %v", err)
		return textResponse(http.StatusInternalServerError, err.Error())
	}

	h := make(http.Header)
	h.Set("Content-Type", thumb.MimeType)
	h.Set("Content-Length", strconv.Itoa(len(thumb.Data)))
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Cache-Control", "public, max-age=31536000")
	return &Response{Status: http.StatusOK, Header: h, Body: thumb.Data}
}

func (d *Dispatcher) serveRecovered(ctx context.Context, uri string) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("thumb: panic serving %s: %v", uri, r)
			resp = textResponse(http.StatusInternalServerError, fmt.Sprintf("internal error: %v", r))
		}
	}()
	return d.Serve(ctx, uri)
}

func (d *Dispatcher) observe(resp *Response, start time.Time) {
	metrics.ProtocolRequestsTotal.WithLabelValues(strconv.Itoa(resp.Status)).Inc()
	metrics.ProtocolRequestDuration.Observe(time.Since(start).Seconds())
}

func textResponse(status int, msg string) *Response {
	h := make(http.Header)
	h.Set("Content-Type", "text/plain; charset=utf-8")
	return &Response{Status: status, Header: h, Body: []byte(msg)}
}
