package vertex

// Option configures a Processor during creation.
//
// Example:
//
//	// Default: work-stealing pool with GOMAXPROCS workers
//	p := vertex.NewProcessor()
//
//	// Fixed pool size and chunk
//	p := vertex.NewProcessor(vertex.WithWorkers(4), vertex.WithChunkSize(1024))
//
//	// Run inline on the calling goroutine
//	p := vertex.NewProcessor(vertex.WithExecutor(vertex.SerialExecutor{}))
type Option func(*processorOptions)

type processorOptions struct {
	workers  int
	chunk    int
	executor Executor
}

func defaultOptions() processorOptions {
	return processorOptions{
		workers: 0, // GOMAXPROCS
		chunk:   0, // pool default
	}
}

// WithWorkers sets the number of pool workers. Zero or negative means
// GOMAXPROCS. Ignored when WithExecutor is also given.
func WithWorkers(n int) Option {
	return func(o *processorOptions) {
		o.workers = n
	}
}

// WithChunkSize sets how many vertices one job transforms. Zero or negative
// lets the executor choose.
func WithChunkSize(n int) Option {
	return func(o *processorOptions) {
		o.chunk = n
	}
}

// WithExecutor replaces the default pool. The Processor does not close a
// caller-provided executor.
func WithExecutor(e Executor) Option {
	return func(o *processorOptions) {
		o.executor = e
	}
}
