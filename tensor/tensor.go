// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor types used by dataloader pipelines.
//
// Example:
//
//	images, err := tensor.FromFloat32(tensor.Shape{2, 3}, []float32{0, 1, 2, 3, 4, 5})
//	labels, err := tensor.FromInt32(tensor.Shape{2}, []int32{7, 1})
package tensor

import (
	"github.com/born-ml/dataloader/internal/tensor"
)

// Type aliases for public API

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float16 DataType = tensor.Float16
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// RawTensor is a shaped, typed byte buffer.
type RawTensor = tensor.RawTensor

// NewRaw allocates a zeroed tensor.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// FromFloat32 creates a Float32 tensor holding a copy of data.
func FromFloat32(shape Shape, data []float32) (*RawTensor, error) {
	return tensor.FromFloat32(shape, data)
}

// FromFloat64 creates a Float64 tensor holding a copy of data.
func FromFloat64(shape Shape, data []float64) (*RawTensor, error) {
	return tensor.FromFloat64(shape, data)
}

// FromInt32 creates an Int32 tensor holding a copy of data.
func FromInt32(shape Shape, data []int32) (*RawTensor, error) {
	return tensor.FromInt32(shape, data)
}
