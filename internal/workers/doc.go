/*
Package workers sizes and runs the bounded pool that performs image work.

# Sizing

Count derives a worker count from GOMAXPROCS, which Go sets from container
CPU limits, rather than runtime.NumCPU, which reports host CPUs:

	n := workers.ForCPU(0) // one worker per available CPU

The THUMB_WORKERS environment variable overrides the computed value.

# Pool

A Pool is constructed explicitly and handed to whoever needs it; there is no
package-level pool.

	pool := workers.NewPool("thumb", workers.ForCPU(0))
	defer pool.Close()

	pool.Submit(func() {
	    // decode, resize, encode
	})

Submit never blocks: the queue is unbounded, so the goroutine accepting
requests only appends and returns. The number of tasks running at once is
bounded by the pool size. Tasks run to completion; there is no cancellation.
A task that panics is recovered and logged, and the worker keeps serving.

Goroutine stacks grow on demand, so deep decoder call chains need no
per-worker stack configuration.
*/
package workers
