package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/born-ml/dataloader/internal/tensor"
)

// Alignment is the byte alignment of every arena region.
const Alignment = 64

// Slot is a scratch buffer request tied to the stage that issued it.
type Slot struct {
	ID    uuid.UUID
	Query AllocationQuery
}

// Region describes where a slot lives inside the arena buffer.
type Region struct {
	ID     uuid.UUID       `json:"id"`
	Offset int             `json:"offset"`
	Size   int             `json:"size"`
	Shape  tensor.Shape    `json:"shape"`
	DType  tensor.DataType `json:"-"`
}

// Arena holds every destination buffer a set of plans needs, laid out in one
// pre-allocated byte slice. Regions never overlap.
//
// An Arena is not safe for concurrent use; it belongs to one worker while
// that worker processes a batch.
type Arena struct {
	buffer    []byte
	batchSize int
	regions   []Region
	views     map[uuid.UUID]*tensor.RawTensor
}

// NewArena lays out slots for batchSize samples each.
//
// Example:
//
//	arena, err := NewArena(32, plan.Slots())
//	dst, _ := arena.Slot(plan.Stages[0].ID)
func NewArena(batchSize int, slots []Slot) (*Arena, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("arena batch size must be >= 1, got %d", batchSize)
	}

	regions := make([]Region, 0, len(slots))
	seen := make(map[uuid.UUID]bool, len(slots))
	offset := 0
	for _, s := range slots {
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate arena slot %s", s.ID)
		}
		seen[s.ID] = true

		shape := s.Query.BatchShape(batchSize)
		if err := shape.Validate(); err != nil {
			return nil, fmt.Errorf("slot %s: %w", s.ID, err)
		}

		size := s.Query.ByteSize(batchSize)
		regions = append(regions, Region{
			ID:     s.ID,
			Offset: offset,
			Size:   size,
			Shape:  shape,
			DType:  s.Query.DType,
		})
		offset = alignUp(offset + size)
	}

	arena := &Arena{
		buffer:    make([]byte, offset),
		batchSize: batchSize,
		regions:   regions,
		views:     make(map[uuid.UUID]*tensor.RawTensor, len(regions)),
	}

	for _, r := range regions {
		view, err := tensor.FromBytes(r.Shape, r.DType, arena.buffer[r.Offset:r.Offset+r.Size])
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", r.ID, err)
		}
		arena.views[r.ID] = view
	}

	return arena, nil
}

// Slot returns the full-batch view for the stage with the given identity.
func (a *Arena) Slot(id uuid.UUID) (*tensor.RawTensor, bool) {
	v, ok := a.views[id]
	return v, ok
}

// BatchSize returns the number of samples each slot holds.
func (a *Arena) BatchSize() int {
	return a.batchSize
}

// Size returns the total arena size in bytes.
func (a *Arena) Size() int {
	return len(a.buffer)
}

// Regions returns the arena layout in allocation order.
func (a *Arena) Regions() []Region {
	return append([]Region(nil), a.regions...)
}

func alignUp(n int) int {
	return (n + Alignment - 1) &^ (Alignment - 1)
}

// ArenaPool hands out a fixed set of arenas, one per worker.
// Acquire blocks until an arena is free.
type ArenaPool struct {
	free chan *Arena

	// Statistics
	acquired atomic.Uint64
}

// NewArenaPool builds n identical arenas.
func NewArenaPool(n, batchSize int, slots []Slot) (*ArenaPool, error) {
	if n < 1 {
		return nil, fmt.Errorf("arena pool needs at least one arena, got %d", n)
	}

	p := &ArenaPool{free: make(chan *Arena, n)}
	for i := 0; i < n; i++ {
		a, err := NewArena(batchSize, slots)
		if err != nil {
			return nil, err
		}
		p.free <- a
	}
	return p, nil
}

// Acquire takes an arena, waiting until one is released or ctx is done.
func (p *ArenaPool) Acquire(ctx context.Context) (*Arena, error) {
	select {
	case a := <-p.free:
		p.acquired.Add(1)
		return a, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns an arena to the pool.
func (p *ArenaPool) Release(a *Arena) {
	p.free <- a
}

// Acquired returns how many times an arena has been handed out.
func (p *ArenaPool) Acquired() uint64 {
	return p.acquired.Load()
}
