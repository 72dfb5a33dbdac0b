package tensor

import "fmt"

// FromFloat32 creates a Float32 tensor holding a copy of data.
//
// Example:
//
//	t, err := tensor.FromFloat32(Shape{2, 2}, []float32{1, 2, 3, 4})
func FromFloat32(shape Shape, data []float32) (*RawTensor, error) {
	raw, err := newChecked(shape, Float32, len(data))
	if err != nil {
		return nil, err
	}
	copy(raw.AsFloat32(), data)
	return raw, nil
}

// FromFloat64 creates a Float64 tensor holding a copy of data.
func FromFloat64(shape Shape, data []float64) (*RawTensor, error) {
	raw, err := newChecked(shape, Float64, len(data))
	if err != nil {
		return nil, err
	}
	copy(raw.AsFloat64(), data)
	return raw, nil
}

// FromInt32 creates an Int32 tensor holding a copy of data.
func FromInt32(shape Shape, data []int32) (*RawTensor, error) {
	raw, err := newChecked(shape, Int32, len(data))
	if err != nil {
		return nil, err
	}
	copy(raw.AsInt32(), data)
	return raw, nil
}

func newChecked(shape Shape, dtype DataType, n int) (*RawTensor, error) {
	if shape.NumElements() != n {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)", n, shape, shape.NumElements())
	}
	return NewRaw(shape, dtype)
}
