package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dataloader/internal/logger"
	"github.com/born-ml/dataloader/internal/tensor"
)

func indexedBatch(t *testing.T, index int, fields ...string) Batch {
	t.Helper()
	b := Batch{Index: index, Fields: make(map[string]*tensor.RawTensor)}
	for _, f := range fields {
		b.Fields[f] = floatBatch(t, tensor.Shape{2, 1}, float32(index), float32(index))
	}
	return b
}

func TestBatchSeedDistinct(t *testing.T) {
	seen := make(map[uint64]bool)
	for epoch := 0; epoch < 3; epoch++ {
		for index := 0; index < 100; index++ {
			s := BatchSeed(7, epoch, index)
			require.False(t, seen[s], "seed reused at epoch %d index %d", epoch, index)
			seen[s] = true
		}
	}
}

func TestLoaderFieldsShareSeed(t *testing.T) {
	recA, recB := newSeedRecorder(), newSeedRecorder()
	state := jitBatches(tensor.Shape{1}, tensor.Float32)

	loader, err := NewLoader(LoaderConfig{BatchSize: 2, Workers: 3, Seed: 1000},
		New("a", state, recA),
		New("b", state, scaleOp{factor: 1, scratch: true}, recB),
	)
	require.NoError(t, err)
	require.Len(t, loader.Plans(), 2)

	var batches []Batch
	for i := 0; i < 10; i++ {
		batches = append(batches, indexedBatch(t, i, "a", "b"))
	}

	var mu sync.Mutex
	consumed := make(map[int]uint64)
	err = loader.Run(context.Background(), 2, batches, func(b Batch) error {
		mu.Lock()
		defer mu.Unlock()
		consumed[b.Index] = b.Seed
		return nil
	})
	require.NoError(t, err)

	require.Len(t, consumed, 10)
	for i := 0; i < 10; i++ {
		want := BatchSeed(1000, 2, i)
		assert.Equal(t, want, consumed[i])
		assert.Equal(t, want, recA.seeds[i], "field a batch %d", i)
		assert.Equal(t, want, recB.seeds[i], "field b batch %d", i)
	}
}

func TestLoaderRejectsAtConstruction(t *testing.T) {
	state := State{Stage: Individual, JITMode: true, Shape: tensor.Shape{1}, DType: tensor.Float32}

	_, err := NewLoader(LoaderConfig{BatchSize: 4}, New("image", state, gatedOp{}))
	require.ErrorIs(t, err, ErrPrecondition)

	ok := jitBatches(tensor.Shape{1}, tensor.Float32)
	_, err = NewLoader(LoaderConfig{BatchSize: 4}, New("x", ok), New("x", ok))
	assert.ErrorContains(t, err, "duplicate")
}

func TestLoaderProcessPassThrough(t *testing.T) {
	loader, err := NewLoader(LoaderConfig{BatchSize: 2},
		New("image", jitBatches(tensor.Shape{1}, tensor.Float32), scaleOp{factor: 2}))
	require.NoError(t, err)

	in := indexedBatch(t, 3, "image", "meta")
	out, err := loader.Process(in, nil)
	require.NoError(t, err)

	assert.Equal(t, []float32{6, 6}, out.Fields["image"].AsFloat32())
	assert.Same(t, in.Fields["meta"], out.Fields["meta"])

	_, err = loader.Process(indexedBatch(t, 4, "meta"), nil)
	require.ErrorIs(t, err, ErrMissingField)
}

func TestLoaderRunStopsOnError(t *testing.T) {
	var buf bytes.Buffer
	loader, err := NewLoader(LoaderConfig{
		BatchSize: 2,
		Workers:   2,
		Logger:    logger.Text(&buf, slog.LevelDebug),
	}, New("image", jitBatches(tensor.Shape{1}, tensor.Float32), scaleOp{factor: 1, scratch: true}))
	require.NoError(t, err)

	bad := Batch{Index: 1, Fields: map[string]*tensor.RawTensor{
		"image": floatBatch(t, tensor.Shape{3, 1}, 1, 2, 3),
	}}
	batches := []Batch{indexedBatch(t, 0, "image"), bad}

	err = loader.Run(context.Background(), 0, batches, func(Batch) error { return nil })
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, buf.String(), "epoch aborted")
	assert.Contains(t, buf.String(), "pipeline planned")
}

func TestLoaderRunCancelled(t *testing.T) {
	loader, err := NewLoader(LoaderConfig{BatchSize: 2},
		New("image", jitBatches(tensor.Shape{1}, tensor.Float32), scaleOp{factor: 1}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err = loader.Run(ctx, 0, []Batch{indexedBatch(t, 0, "image")}, func(Batch) error {
		calls++
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}
