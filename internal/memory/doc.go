// Package memory keeps large image decodes from pushing the process past its
// memory budget.
//
// [ConfigureFromEnv] sets the Go runtime soft limit (GOMEMLIMIT) from the
// environment and should run first thing in main:
//
//   - GOMEMLIMIT: standard Go variable; if set it wins and is only reported.
//   - MEMORY_LIMIT: total memory available to the process, in bytes.
//   - MEMORY_RATIO: fraction of MEMORY_LIMIT given to the Go heap
//     (default 0.85). The rest is headroom for libvips, which allocates
//     outside the Go heap.
//
// A [Monitor] samples heap usage against that limit. Once usage crosses the
// critical mark it reports paused until usage drops below the high-water
// mark; the thumbnail cache calls [Monitor.WaitIfPaused] before decoding a
// source so that a burst of requests for huge images queues up instead of
// allocating all at once. Without a limit the monitor never pauses.
package memory
