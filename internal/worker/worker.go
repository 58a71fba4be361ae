package worker

import (
	"context"
	"sync"
)

// Task is a unit of work executed by the pool, typically one feed refresh.
type Task func(ctx context.Context)

// Pool runs submitted tasks on a fixed number of goroutines with a bounded
// queue, so overlapping refresh ticks cannot pile up unboundedly.
type Pool struct {
	numWorkers int
	tasks      chan Task
	wg         sync.WaitGroup
}

func NewPool(numWorkers, bufferSize int) *Pool {
	return &Pool{
		numWorkers: numWorkers,
		tasks:      make(chan Task, bufferSize),
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			task(ctx)
		}
	}
}

// Submit enqueues a task, reporting whether the queue had room. A full
// queue means a previous refresh is still draining; the caller skips the
// tick instead of blocking.
func (p *Pool) Submit(task Task) bool {
	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}

func (p *Pool) Stop() {
	close(p.tasks)
	p.wg.Wait()
}
