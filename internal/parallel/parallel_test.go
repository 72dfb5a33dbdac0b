package parallel

import (
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestFor_EveryIndexOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}

	seen := make([]int32, 37)
	For(len(seen), func(i int) {
		atomic.AddInt32(&seen[i], 1)
	}, cfg)

	for i, c := range seen {
		if c != 1 {
			t.Errorf("index %d visited %d times", i, c)
		}
	}
}

func TestFor_Sequential(t *testing.T) {
	var order []int
	For(5, func(i int) {
		order = append(order, i)
	}, Sequential())

	for i, v := range order {
		if v != i {
			t.Fatalf("Sequential order = %v", order)
		}
	}
}

func TestFor_SmallChunk(t *testing.T) {
	// Test that small work units fall back to sequential.
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 256

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(j int) {
				atomic.AddInt64(&sum, int64(j))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(j int) {
				atomic.AddInt64(&sum, int64(j))
			}, Sequential())
		}
	})
}

func TestFor_TwoPassGather(t *testing.T) {
	// Second pass reads neighbours written by the first; For must not
	// return before the first pass has finished every index.
	cfg := Config{Enabled: true, NumWorkers: 8, MinChunkSize: 1}
	n := 257

	src := make([]int, n)
	for i := range src {
		src[i] = i
	}
	gathered := make([]int, n)
	For(n, func(i int) {
		gathered[i] = src[(i+1)%n]
	}, cfg)

	out := make([]int, n)
	For(n, func(i int) {
		out[i] = gathered[(i+n-1)%n]
	}, cfg)

	for i, v := range out {
		if v != i {
			t.Fatalf("out[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestFor_ZeroConfigIsSequential(t *testing.T) {
	var order []int
	For(3, func(i int) {
		order = append(order, i)
	}, Config{})

	if len(order) != 3 || order[0] != 0 || order[2] != 2 {
		t.Fatalf("zero Config order = %v", order)
	}
}
