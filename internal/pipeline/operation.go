package pipeline

import (
	"fmt"

	"github.com/born-ml/dataloader/internal/tensor"
)

// Transform processes one batch.
//
// state is the stage's planned input State with RandomSeed set for this
// batch. dst is the stage's arena slot narrowed to the live batch size, or
// nil when the stage declared no AllocationQuery. The returned tensor is the
// stage output; it is only valid until the next call.
type Transform func(state State, batch, dst *tensor.RawTensor) (*tensor.RawTensor, error)

// Operation is the contract implemented by every pipeline stage.
type Operation interface {
	// DeclareStateAndMemory validates prev and returns the State for the next
	// stage plus an optional scratch buffer request. It must not have side
	// effects.
	DeclareStateAndMemory(prev State) (State, *AllocationQuery, error)

	// GenerateCode returns the per-batch transform.
	GenerateCode() Transform
}

// Named is implemented by operations that want a readable name in plans
// and logs.
type Named interface {
	Name() string
}

// OperationName returns op's Name if it has one, or its Go type otherwise.
func OperationName(op Operation) string {
	if n, ok := op.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", op)
}
