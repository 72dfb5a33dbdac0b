package pipeline

import (
	"errors"
	"fmt"

	"github.com/born-ml/dataloader/internal/tensor"
)

// Common errors.
var (
	ErrPrecondition     = errors.New("operation precondition not met")
	ErrShapeMismatch    = errors.New("shape mismatch")
	ErrDTypeMismatch    = errors.New("dtype mismatch")
	ErrUnsupportedDType = errors.New("unsupported dtype")
	ErrMissingField     = errors.New("batch is missing a planned field")
)

// PreconditionError reports a State that an operation cannot be planned on.
type PreconditionError struct {
	Op    string // Operation name
	Field string // State field that failed (e.g. "stage", "jit_mode")
	Want  any
	Got   any
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s must be %v, got %v", e.Op, e.Field, e.Want, e.Got)
}

// Unwrap lets errors.Is match ErrPrecondition.
func (e *PreconditionError) Unwrap() error {
	return ErrPrecondition
}

// MismatchError reports a batch or buffer that does not match what was planned.
type MismatchError struct {
	Op   string // Operation name
	What string // Tensor involved (e.g. "batch", "dst")
	Want any
	Got  any
	Kind error // ErrShapeMismatch or ErrDTypeMismatch
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s: %s: want %v, got %v", e.Op, e.What, e.Kind, e.Want, e.Got)
}

// Unwrap returns the mismatch kind.
func (e *MismatchError) Unwrap() error {
	return e.Kind
}

// RequireBatchJIT checks that s describes a compiled, per-batch pipeline
// phase.
func RequireBatchJIT(op string, s State) error {
	if !s.JITMode {
		return &PreconditionError{Op: op, Field: "jit_mode", Want: true, Got: false}
	}
	if s.Stage != Batches {
		return &PreconditionError{Op: op, Field: "stage", Want: Batches, Got: s.Stage}
	}
	return nil
}

// CheckSamples verifies that batch holds samples of the given shape and dtype.
func CheckSamples(op, what string, batch *tensor.RawTensor, shape tensor.Shape, dtype tensor.DataType) error {
	if batch == nil {
		return &MismatchError{Op: op, What: what, Want: shape, Got: "nil", Kind: ErrShapeMismatch}
	}
	if batch.DType() != dtype {
		return &MismatchError{Op: op, What: what, Want: dtype, Got: batch.DType(), Kind: ErrDTypeMismatch}
	}
	if len(batch.Shape()) == 0 || !batch.SampleShape().Equal(shape) {
		return &MismatchError{Op: op, What: what, Want: shape.WithBatch(batch.BatchSize()), Got: batch.Shape(), Kind: ErrShapeMismatch}
	}
	return nil
}
