package workers

import (
	"runtime/debug"
	"sync"

	"board-assets/internal/logging"
	"board-assets/internal/metrics"
)

// Task is a unit of work run by a Pool.
type Task func()

// Pool runs submitted tasks on a fixed number of goroutines.
type Pool struct {
	name string
	size int

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Task
	closed bool

	wg sync.WaitGroup
}

// NewPool starts a pool of size workers. A size below 1 is treated as 1.
func NewPool(name string, size int) *Pool {
	if size < 1 {
		size = 1
	}

	p := &Pool{name: name, size: size}
	p.cond = sync.NewCond(&p.mu)

	metrics.WorkerPoolSize.WithLabelValues(name).Set(float64(size))

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	logging.Debug("worker pool %q started with %d workers", name, size)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Pending returns the number of queued tasks not yet picked up.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Submit queues task and returns immediately. It returns false if the pool
// is closed, in which case the task will never run.
func (p *Pool) Submit(task Task) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.queue = append(p.queue, task)
	depth := len(p.queue)
	p.mu.Unlock()

	metrics.WorkerPoolQueueDepth.WithLabelValues(p.name).Set(float64(depth))
	p.cond.Signal()
	return true
}

// Close stops accepting tasks, lets the workers drain the queue and waits
// for them to exit.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.cond.Broadcast()
	p.wg.Wait()
	logging.Debug("worker pool %q stopped", p.name)
}

func (p *Pool) next() (Task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if len(p.queue) == 0 {
		return nil, false
	}

	task := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	metrics.WorkerPoolQueueDepth.WithLabelValues(p.name).Set(float64(len(p.queue)))
	return task, true
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	active := metrics.WorkerPoolActive.WithLabelValues(p.name)
	for {
		task, ok := p.next()
		if !ok {
			return
		}
		active.Inc()
		p.run(id, task)
		active.Dec()
	}
}

func (p *Pool) run(id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			metrics.WorkerPoolPanics.WithLabelValues(p.name).Inc()
			logging.Error("worker %s-%d recovered from panic: %v\n%s", p.name, id, r, debug.Stack())
		}
	}()
	task()
}
