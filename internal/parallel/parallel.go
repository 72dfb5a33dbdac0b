// Package parallel splits per-sample batch work across goroutines.
//
// The unit of work is one sample of a batch: For calls f(i) for every
// sample index, and f must only write the memory of sample i. The image
// mixup blend runs two For passes over a batch, a gather into scratch and
// then the blend itself, and relies on For returning only after every
// index is done so the second pass never sees a partial gather.
//
// Inside the loader, batches already run on separate workers. Callers that
// run under the loader with more than one worker should pass Sequential()
// to avoid oversubscribing the CPUs.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
//
// A zero Config runs sequentially.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Upper bound on goroutines per For call.
	MinChunkSize int  // Minimum samples per goroutine; smaller batches run inline.
}

// DefaultConfig uses every CPU, handing each goroutine at least 8 samples.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 8, // Samples, not elements: each unit is a whole image.
	}
}

// Sequential returns a Config that never spawns goroutines.
// Use it when the caller already parallelizes across batches.
func Sequential() Config {
	return Config{}
}

// For executes f(i) for i in [0, n) and returns once all calls are done.
// It runs inline when cfg is disabled, has fewer than two workers, or n is
// below MinChunkSize. Otherwise [0, n) is split into contiguous chunks, one
// goroutine each. f must only touch state owned by index i.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}
