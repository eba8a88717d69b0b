package transport

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minChunk is the smallest number of slots handed to one worker.
const minChunk = 64

// A workerPool runs per-slot work over contiguous slot ranges. Each call
// returns only after every slot in the range has been processed.
type workerPool struct {
	numWorkers int
}

func newWorkerPool(numWorkers int) *workerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	return &workerPool{numWorkers: numWorkers}
}

// forEach applies fn to every slot in slots, splitting the range into at most
// numWorkers contiguous chunks.
func (w *workerPool) forEach(slots []slot, fn func(s *slot)) {
	n := len(slots)
	if n == 0 {
		return
	}

	chunk := (n + w.numWorkers - 1) / w.numWorkers
	if chunk < minChunk {
		chunk = minChunk
	}

	if chunk >= n {
		for i := range slots {
			fn(&slots[i])
		}
		return
	}

	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		part := slots[lo:min(lo+chunk, n)]
		g.Go(func() error {
			for i := range part {
				fn(&part[i])
			}
			return nil
		})
	}

	_ = g.Wait()
}

// all runs the given phases concurrently and waits for all of them.
func (w *workerPool) all(phases ...func()) {
	var g errgroup.Group
	for _, phase := range phases {
		g.Go(func() error {
			phase()
			return nil
		})
	}

	_ = g.Wait()
}
