// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

// Coordinate-format block assembly.
//
// Composed models answer structure queries by delegating each block to a
// sub-model over a sub-slice of the caller's index buffers, then adjusting
// the written indices in place with the helpers below. Value queries fill
// the matching sub-slices of the value buffer, so values stay positionally
// aligned with the structure for the lifetime of the model. Duplicate
// (row,col) pairs across blocks are never deduplicated: coordinate format
// is additive and consumers sum repeated pairs.

// Shift adds off to every index in idx.
func Shift(idx []int, off int) {
	for i := range idx {
		idx[i] += off
	}
}

// IdentityBlock writes the pattern of an n×n identity block whose top-left
// entry sits at (rowOff, colOff): rows[i] = rowOff+i, cols[i] = colOff+i.
func IdentityBlock(rows, cols []int, rowOff, colOff int) {
	for i := range rows {
		rows[i] = rowOff + i
		cols[i] = colOff + i
	}
}

// Fill sets every entry of vals to v.
func Fill(vals []float64, v float64) {
	for i := range vals {
		vals[i] = v
	}
}

// CoordGemv accumulates y += A·x for a matrix A given in coordinate form.
// Repeated (row,col) pairs sum, consistent with the additive triplet
// convention. The slices rows, cols and vals must have equal length.
func CoordGemv(rows, cols []int, vals, x, y []float64) {
	if len(rows) != len(cols) || len(rows) != len(vals) {
		panic("coordinate slices length mismatch")
	}
	for k, v := range vals {
		y[rows[k]] += v * x[cols[k]]
	}
}

// CoordGemvT accumulates y += Aᵀ·x for a matrix A given in coordinate form.
func CoordGemvT(rows, cols []int, vals, x, y []float64) {
	if len(rows) != len(cols) || len(rows) != len(vals) {
		panic("coordinate slices length mismatch")
	}
	for k, v := range vals {
		y[cols[k]] += v * x[rows[k]]
	}
}

// CoordSymGemv accumulates y += A·x where the coordinate entries describe
// the lower triangle of a symmetric A: off-diagonal entries act twice.
func CoordSymGemv(rows, cols []int, vals, x, y []float64) {
	if len(rows) != len(cols) || len(rows) != len(vals) {
		panic("coordinate slices length mismatch")
	}
	for k, v := range vals {
		i, j := rows[k], cols[k]
		y[i] += v * x[j]
		if i != j {
			y[j] += v * x[i]
		}
	}
}
