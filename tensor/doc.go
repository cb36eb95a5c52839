// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense tensors that flow through materialized links.
//
// # Overview
//
// A Tensor is a row-major array with a Shape and a DataType. Values are held
// in float64 and rounded to the precision of the DataType on every write, so a
// Float16 tensor behaves like half-precision storage.
//
// # Basic Usage
//
//	x, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.Float32)
//	if err != nil {
//	    return err
//	}
//	y := x.MatMul(x.Transpose()) // [2, 2]
//
// # Persisted Form
//
// Tensors marshal to JSON and YAML as a Wire record:
//
//	{"dtype": "float32", "shape": [2, 3], "fmt": "le-base64", "data": "..."}
//
// The payload holds little-endian values of the dtype's width.
package tensor
