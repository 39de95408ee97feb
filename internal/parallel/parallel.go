// Package parallel splits index ranges across goroutines for the CPU kernels.
package parallel

import (
	"runtime"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// Config controls how a range is split.
type Config struct {
	Workers  int // Maximum number of goroutines; <= 1 runs sequentially.
	MinChunk int // Minimum indices per goroutine.
}

// DefaultConfig uses one worker per physical core and falls back to the
// logical CPU count when the core count cannot be detected.
func DefaultConfig() Config {
	workers := cpuid.CPU.PhysicalCores
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return Config{
		Workers:  workers,
		MinChunk: 256,
	}
}

// Sequential returns a configuration that never spawns goroutines.
func Sequential() Config {
	return Config{Workers: 1, MinChunk: 1}
}

// For calls body on disjoint [start, end) ranges covering [0, n) and waits
// for all of them. Ranges shorter than MinChunk are not split further.
func For(n int, cfg Config, body func(start, end int)) {
	if n <= 0 {
		return
	}
	minChunk := max(cfg.MinChunk, 1)
	if cfg.Workers <= 1 || n < 2*minChunk {
		body(0, n)
		return
	}

	chunk := max((n+cfg.Workers-1)/cfg.Workers, minChunk)
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Go(func() {
			body(start, end)
		})
	}
	wg.Wait()
}
