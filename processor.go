package vertex

import (
	"context"
	"fmt"

	"github.com/gogpu/vertex/internal/parallel"
)

// Executor runs fn over disjoint sub-ranges [lo, hi) covering [0, n),
// possibly concurrently. chunk is a size hint; zero or negative lets the
// executor choose. Once ctx is done, an executor skips what has not started
// and returns ctx.Err().
type Executor interface {
	Range(ctx context.Context, n, chunk int, fn func(lo, hi int)) error
}

// SerialExecutor runs every sub-range on the calling goroutine.
type SerialExecutor struct{}

// Range implements Executor.
func (SerialExecutor) Range(ctx context.Context, n, chunk int, fn func(lo, hi int)) error {
	if chunk <= 0 {
		chunk = max(n, 1)
	}
	for lo := 0; lo < n; lo += chunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(lo, min(lo+chunk, n))
	}
	return ctx.Err()
}

// Processor runs the stage over whole batches.
//
// Every vertex writes only its own output slot and the transform is copied
// once per batch, so no locking happens between invocations.
type Processor struct {
	exec  Executor
	chunk int

	// pool is set when the Processor created its own executor.
	pool *parallel.Pool
}

// NewProcessor creates a Processor. Without options it starts a
// work-stealing pool with GOMAXPROCS workers; call Close to stop it.
func NewProcessor(opts ...Option) *Processor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	p := &Processor{exec: o.executor, chunk: o.chunk}
	if p.exec == nil {
		p.pool = parallel.NewPool(o.workers)
		p.exec = p.pool
	}
	return p
}

// Process transforms every vertex of b and returns the outputs in vertex
// order.
//
// A batch is all or nothing: if ctx is done before every vertex has been
// transformed, Process returns a nil slice and an error wrapping ctx.Err().
// There is no per-vertex retry; resubmit the batch.
func (p *Processor) Process(ctx context.Context, b *Batch) ([]Output, error) {
	if b == nil || len(b.Vertices) == 0 {
		return nil, ctx.Err()
	}

	t := b.Transform
	vs := b.Vertices
	out := make([]Output, len(vs))

	err := p.exec.Range(ctx, len(vs), p.chunk, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = Stage(vs[i], t)
		}
	})
	if err != nil {
		Logger().Debug("vertex: batch aborted", "batch", b.ID, "vertices", len(vs), "err", err)
		return nil, fmt.Errorf("process batch %s: %w", b.ID, err)
	}

	Logger().Debug("vertex: batch processed", "batch", b.ID, "vertices", len(vs))
	return out, nil
}

// Frame is the result of processing a DrawData.
type Frame struct {
	Lists []FrameList
}

// FrameList holds one draw list's transformed vertices and the draw calls
// that reference them.
type FrameList struct {
	Batch   *Batch
	Outputs []Output
	Draws   []DrawParams
}

// Frame processes every draw list of d under d.Projection() and collects
// the draw parameters of each list. Nothing is processed when the
// framebuffer is empty.
func (p *Processor) Frame(ctx context.Context, d *DrawData) (*Frame, error) {
	f := &Frame{}
	if w, h := d.Framebuffer(); w <= 0 || h <= 0 {
		return f, nil
	}

	proj := d.Projection()
	f.Lists = make([]FrameList, len(d.Lists))
	for i := range d.Lists {
		b := NewBatch(proj, d.Lists[i].Vertices)
		out, err := p.Process(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("draw list %d: %w", i, err)
		}
		f.Lists[i].Batch = b
		f.Lists[i].Outputs = out
	}

	for li, params := range d.Params() {
		f.Lists[li].Draws = append(f.Lists[li].Draws, params)
	}
	return f, nil
}

// Close stops the Processor's own pool. A caller-provided executor is left
// alone. Close is safe to call more than once.
func (p *Processor) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}
