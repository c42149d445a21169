// Package jobs runs per-index work items in parallel and hands back a
// completion [Handle] the caller must wait on before reading the results.
//
// Work is split into contiguous index batches fanned out over a bounded
// errgroup. Each index is visited exactly once, so jobs that write only their
// own slot of a shared slice need no locking.
//
// # Usage
//
//	h := jobs.Default().For(len(out), func(i int) {
//	    out[i] = evaluate(i)
//	})
//	h.Complete() // join point: out is safe to read afterwards
package jobs

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the number of consecutive indices handed to one task.
const DefaultBatchSize = 64

// Handle tracks one scheduled parallel-for. A nil Handle is complete.
type Handle struct {
	done chan struct{}
	n    int
}

// Completed returns a handle that is already finished.
func Completed(n int) *Handle {
	h := &Handle{done: make(chan struct{}), n: n}
	close(h.done)
	return h
}

// Complete blocks until every index has been processed.
func (h *Handle) Complete() {
	if h == nil {
		return
	}
	<-h.done
}

// Done reports whether the work has finished without blocking.
func (h *Handle) Done() bool {
	if h == nil {
		return true
	}
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Len returns the number of indices the handle covers.
func (h *Handle) Len() int {
	if h == nil {
		return 0
	}
	return h.n
}

// Scheduler fans index ranges out over worker goroutines. Workers <= 1 runs
// the loop synchronously on the calling goroutine.
type Scheduler struct {
	Workers   int
	BatchSize int
}

// Default returns a scheduler with one worker per available CPU.
func Default() *Scheduler {
	return &Scheduler{Workers: runtime.GOMAXPROCS(0), BatchSize: DefaultBatchSize}
}

// Serial returns a scheduler that always runs synchronously.
func Serial() *Scheduler {
	return &Scheduler{Workers: 1, BatchSize: DefaultBatchSize}
}

// For schedules fn(i) for every i in [0, n). fn must only touch state owned
// by index i. A nil scheduler behaves like [Default].
func (s *Scheduler) For(n int, fn func(i int)) *Handle {
	if n <= 0 {
		return Completed(0)
	}
	if s == nil {
		s = Default()
	}
	batch := s.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	if s.Workers <= 1 || n <= batch {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return Completed(n)
	}

	h := &Handle{done: make(chan struct{}), n: n}
	go func() {
		defer close(h.done)
		var g errgroup.Group
		g.SetLimit(s.Workers)
		for start := 0; start < n; start += batch {
			end := min(start+batch, n)
			g.Go(func() error {
				for i := start; i < end; i++ {
					fn(i)
				}
				return nil
			})
		}
		_ = g.Wait()
	}()
	return h
}
