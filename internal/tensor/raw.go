package tensor

import (
	"fmt"
	"unsafe"

	"github.com/x448/float16"
)

// RawTensor is the low-level tensor representation.
// Data is stored row-major in a byte buffer that may be owned by the tensor
// or borrowed from an arena.
type RawTensor struct {
	data   []byte   // Backing memory, exactly ByteSize() long
	shape  Shape    // Tensor dimensions
	stride []int    // Memory strides (row-major)
	dtype  DataType // Runtime type information
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is allocated but not initialized (contains zeros).
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &RawTensor{
		data:   make([]byte, shape.NumElements()*dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
	}, nil
}

// FromBytes wraps buf as a tensor without copying.
// The buffer must be at least shape.NumElements()*dtype.Size() bytes; any
// excess is ignored. Writes through the tensor are visible in buf.
func FromBytes(shape Shape, dtype DataType, buf []byte) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	size := shape.NumElements() * dtype.Size()
	if len(buf) < size {
		return nil, fmt.Errorf("buffer too small for %v %s: have %d bytes, need %d", shape, dtype, len(buf), size)
	}

	return &RawTensor{
		data:   buf[:size:size],
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
	}, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// BatchSize returns the size of the leading (batch) axis.
// A scalar tensor is treated as a batch of one.
func (r *RawTensor) BatchSize() int {
	if len(r.shape) == 0 {
		return 1
	}
	return r.shape[0]
}

// SampleShape returns the shape of a single sample, i.e. the shape without
// the leading batch axis.
func (r *RawTensor) SampleShape() Shape {
	if len(r.shape) == 0 {
		return Shape{}
	}
	return r.shape[1:]
}

// Narrow returns a view over the first n rows of the batch axis.
// The view shares memory with r.
//
// Example:
//
//	slot, _ := NewRaw(Shape{32, 3, 8, 8}, Float32)
//	last := slot.Narrow(5) // Shape{5, 3, 8, 8}, same backing memory
func (r *RawTensor) Narrow(n int) (*RawTensor, error) {
	if len(r.shape) == 0 {
		return nil, fmt.Errorf("cannot narrow a scalar tensor")
	}
	if n < 1 || n > r.shape[0] {
		return nil, fmt.Errorf("narrow to %d rows out of range [1, %d]", n, r.shape[0])
	}

	shape := r.shape.Clone()
	shape[0] = n
	return FromBytes(shape, r.dtype, r.data)
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.data
}

// AsFloat16 interprets the data as []float16.Float16.
// Panics if the tensor's dtype is not Float16.
func (r *RawTensor) AsFloat16() []float16.Float16 {
	if r.dtype != Float16 {
		panic(fmt.Sprintf("tensor dtype is %s, not float16", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*float16.Float16)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*float64)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	if r.dtype != Int32 {
		panic(fmt.Sprintf("tensor dtype is %s, not int32", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*int32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsInt64 interprets the data as []int64.
// Panics if the tensor's dtype is not Int64.
func (r *RawTensor) AsInt64() []int64 {
	if r.dtype != Int64 {
		panic(fmt.Sprintf("tensor dtype is %s, not int64", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*int64)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsUint8 interprets the data as []uint8.
// Panics if the tensor's dtype is not Uint8.
func (r *RawTensor) AsUint8() []uint8 {
	if r.dtype != Uint8 {
		panic(fmt.Sprintf("tensor dtype is %s, not uint8", r.dtype))
	}
	return r.data // Already []byte = []uint8
}

// Float32At returns element i (flat index) converted to float32.
// Panics for Bool tensors or out-of-range indices.
func (r *RawTensor) Float32At(i int) float32 {
	switch r.dtype {
	case Float16:
		return r.AsFloat16()[i].Float32()
	case Float32:
		return r.AsFloat32()[i]
	case Float64:
		return float32(r.AsFloat64()[i])
	case Int32:
		return float32(r.AsInt32()[i])
	case Int64:
		return float32(r.AsInt64()[i])
	case Uint8:
		return float32(r.AsUint8()[i])
	default:
		panic(fmt.Sprintf("tensor dtype %s has no numeric value", r.dtype))
	}
}
