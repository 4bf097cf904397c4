package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// Pool Creation Tests
// =============================================================================

func TestPool_Create(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestPool_CreateDefaultWorkers(t *testing.T) {
	for _, n := range []int{0, -5} {
		pool := NewPool(n)
		if pool.Workers() != runtime.GOMAXPROCS(0) {
			t.Errorf("NewPool(%d).Workers() = %d, want GOMAXPROCS %d", n, pool.Workers(), runtime.GOMAXPROCS(0))
		}
		pool.Close()
	}
}

// =============================================================================
// Range Tests
// =============================================================================

func TestPool_RangeCoversEveryIndexOnce(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	tests := []struct {
		name  string
		n     int
		chunk int
	}{
		{"exact chunks", 1000, 100},
		{"ragged tail", 1001, 100},
		{"single chunk", 10, 100},
		{"chunk of one", 37, 1},
		{"default chunk", 10000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := make([]int32, tt.n)
			err := pool.Range(context.Background(), tt.n, tt.chunk, func(lo, hi int) {
				for i := lo; i < hi; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			if err != nil {
				t.Fatalf("Range() error = %v", err)
			}
			for i, h := range hits {
				if h != 1 {
					t.Fatalf("index %d visited %d times, want 1", i, h)
				}
			}
		})
	}
}

func TestPool_RangeEmpty(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	called := false
	if err := pool.Range(context.Background(), 0, 0, func(int, int) { called = true }); err != nil {
		t.Fatalf("Range(0) error = %v", err)
	}
	if called {
		t.Error("fn called for empty range")
	}
}

func TestPool_RangeCancelledBeforeStart(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int64
	err := pool.Range(ctx, 1000, 10, func(int, int) { calls.Add(1) })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Range() error = %v, want context.Canceled", err)
	}
	if calls.Load() != 0 {
		t.Errorf("fn called %d times after cancel", calls.Load())
	}
}

func TestPool_RangeCancelledMidway(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int64
	err := pool.Range(ctx, 10000, 1, func(int, int) {
		if calls.Add(1) == 10 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Range() error = %v, want context.Canceled", err)
	}
	if calls.Load() >= 10000 {
		t.Errorf("all %d chunks ran despite cancellation", calls.Load())
	}
}

func TestPool_ChunkSize(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	if got := pool.ChunkSize(10); got != minChunk {
		t.Errorf("ChunkSize(10) = %d, want %d", got, minChunk)
	}
	if got := pool.ChunkSize(1 << 20); got != (1<<20)/16 {
		t.Errorf("ChunkSize(1<<20) = %d, want %d", got, (1<<20)/16)
	}
}

// =============================================================================
// Close Tests
// =============================================================================

func TestPool_CloseIdempotent(t *testing.T) {
	pool := NewPool(4)
	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Error("Pool should not be running after Close")
	}
}

func TestPool_RangeAfterClose(t *testing.T) {
	pool := NewPool(4)
	pool.Close()

	var executed atomic.Bool
	err := pool.Range(context.Background(), 100, 10, func(int, int) { executed.Store(true) })
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Range() after Close error = %v, want ErrClosed", err)
	}

	time.Sleep(20 * time.Millisecond)
	if executed.Load() {
		t.Error("Work was executed on closed pool")
	}
}

// =============================================================================
// Concurrency Tests
// =============================================================================

func TestPool_ConcurrentRanges(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	const callers = 10
	const n = 5000

	var total atomic.Int64
	var wg sync.WaitGroup
	wg.Add(callers)
	for range callers {
		go func() {
			defer wg.Done()
			err := pool.Range(context.Background(), n, 64, func(lo, hi int) {
				total.Add(int64(hi - lo))
			})
			if err != nil {
				t.Errorf("Range() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if total.Load() != callers*n {
		t.Errorf("processed %d items, want %d", total.Load(), callers*n)
	}
}

func TestPool_UnevenChunksFinish(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	var slow, fast atomic.Int64
	err := pool.Range(context.Background(), 40, 1, func(lo, _ int) {
		if lo%10 == 0 {
			time.Sleep(5 * time.Millisecond)
			slow.Add(1)
			return
		}
		fast.Add(1)
	})
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if slow.Load() != 4 || fast.Load() != 36 {
		t.Errorf("slow=%d fast=%d, want 4 and 36", slow.Load(), fast.Load())
	}
}

func TestPool_NoGoroutineLeak(t *testing.T) {
	before := runtime.NumGoroutine()

	for range 10 {
		pool := NewPool(4)
		_ = pool.Range(context.Background(), 100, 10, func(int, int) {})
		pool.Close()
	}

	time.Sleep(50 * time.Millisecond)
	after := runtime.NumGoroutine()
	if after > before+2 {
		t.Errorf("goroutines grew from %d to %d", before, after)
	}
}

func BenchmarkPool_Range(b *testing.B) {
	pool := NewPool(0)
	defer pool.Close()

	out := make([]float32, 1<<16)
	b.ReportAllocs()
	for b.Loop() {
		_ = pool.Range(context.Background(), len(out), 0, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				out[i] = float32(i) * 2
			}
		})
	}
}
