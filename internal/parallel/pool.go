// Package parallel runs vertex ranges on a fixed set of goroutines.
package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Range on a pool that has been closed.
var ErrClosed = errors.New("parallel: pool closed")

// minChunk is the smallest default chunk. A vertex costs one 4x4 multiply,
// so smaller chunks spend more time in the queue than in the work.
const minChunk = 256

// Pool is a set of worker goroutines that process index ranges.
//
// Each worker owns a queue. An idle worker steals from the other queues,
// which balances batches whose chunks finish at different speeds.
//
// Thread safety: Pool is safe for concurrent use. Several Range calls may
// share one pool.
type Pool struct {
	workers int

	// queues holds one job queue per worker.
	queues []chan func()

	// done signals workers to drain their queue and exit.
	done chan struct{}

	wg      sync.WaitGroup
	running atomic.Bool

	// mu is held shared while Range submits and exclusively by Close, so no
	// job is queued after the workers have drained.
	mu sync.RWMutex
}

// NewPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			drain(own)
			return
		case job := <-own:
			job()
		default:
			if job := p.steal(id); job != nil {
				job()
				continue
			}
			select {
			case <-p.done:
				drain(own)
				return
			case job := <-own:
				job()
			}
		}
	}
}

func drain(q chan func()) {
	for {
		select {
		case job := <-q:
			job()
		default:
			return
		}
	}
}

// steal takes one job from another worker's queue, or returns nil.
func (p *Pool) steal(self int) func() {
	for i := range p.workers {
		if i == self {
			continue
		}
		select {
		case job := <-p.queues[i]:
			return job
		default:
		}
	}
	return nil
}

// ChunkSize returns the default chunk for n items: about four chunks per
// worker, never below minChunk.
func (p *Pool) ChunkSize(n int) int {
	per := (n + p.workers*4 - 1) / (p.workers * 4)
	return max(per, minChunk)
}

// Range calls fn over consecutive, disjoint sub-ranges [lo, hi) that cover
// [0, n). Sub-ranges run concurrently and in no particular order. If chunk
// is 0 or negative, ChunkSize(n) is used.
//
// Range returns after every sub-range has finished or been skipped. Once
// ctx is done, sub-ranges that have not started are skipped and Range
// returns ctx.Err(); the caller must treat the whole range as incomplete.
func (p *Pool) Range(ctx context.Context, n, chunk int, fn func(lo, hi int)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	if !p.running.Load() {
		p.mu.RUnlock()
		return ErrClosed
	}
	if n <= 0 {
		p.mu.RUnlock()
		return nil
	}
	if chunk <= 0 {
		chunk = p.ChunkSize(n)
	}

	var pending sync.WaitGroup
	submit := 0
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		job := func() {
			defer pending.Done()
			if ctx.Err() != nil {
				return
			}
			fn(lo, hi)
		}

		pending.Add(1)
		select {
		case p.queues[submit%p.workers] <- job:
		case <-ctx.Done():
			pending.Done()
			p.mu.RUnlock()
			pending.Wait()
			return ctx.Err()
		}
		submit++
	}
	p.mu.RUnlock()

	pending.Wait()
	return ctx.Err()
}

// Close stops the pool after queued jobs have run. It is safe to call more
// than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	close(p.done)
	p.mu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers.
func (p *Pool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool accepts work.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}
