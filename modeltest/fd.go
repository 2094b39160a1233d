// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modeltest

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

var cubeEps = math.Pow(math.Nextafter(1, 2)-1, float64(1)/3)

// GradDiff estimates the gradient of f at x by central differences.
// The step for coordinate i is 𝚑ᵢ = ∛𝛆 × 𝚖𝚊𝚡(1,|xᵢ|).
func GradDiff(f func(x []float64) float64, x, g []float64) {
	xi := make([]float64, len(x))
	copy(xi, x)
	for i := range x {
		h := cubeEps * math.Max(1, math.Abs(x[i]))
		xi[i] = x[i] + h
		fp := f(xi)
		xi[i] = x[i] - h
		fm := f(xi)
		xi[i] = x[i]
		g[i] = (fp - fm) / (2 * h)
	}
}

// JacDiff estimates the m×n Jacobian of the map c at x by central
// differences, returned as a dense matrix.
func JacDiff(c func(x, y []float64), m int, x []float64) *mat.Dense {
	n := len(x)
	jac := mat.NewDense(m, n, nil)
	xi := make([]float64, n)
	yp := make([]float64, m)
	ym := make([]float64, m)
	copy(xi, x)
	for j := range x {
		h := cubeEps * math.Max(1, math.Abs(x[j]))
		xi[j] = x[j] + h
		c(xi, yp)
		xi[j] = x[j] - h
		c(xi, ym)
		xi[j] = x[j]
		for i := 0; i < m; i++ {
			jac.Set(i, j, (yp[i]-ym[i])/(2*h))
		}
	}
	return jac
}

// DenseFromCoord scatters coordinate triplets into a dense m×n matrix,
// summing duplicate (row,col) pairs.
func DenseFromCoord(m, n int, rows, cols []int, vals []float64) *mat.Dense {
	d := mat.NewDense(m, n, nil)
	for k, v := range vals {
		d.Set(rows[k], cols[k], d.At(rows[k], cols[k])+v)
	}
	return d
}

// SymFromCoord scatters lower-triangle coordinate triplets into a dense
// symmetric n×n matrix, summing duplicate pairs and mirroring off-diagonal
// entries.
func SymFromCoord(n int, rows, cols []int, vals []float64) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for k, v := range vals {
		i, j := rows[k], cols[k]
		d.Set(i, j, d.At(i, j)+v)
		if i != j {
			d.Set(j, i, d.At(j, i)+v)
		}
	}
	return d
}
