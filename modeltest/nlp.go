// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modeltest

import (
	"math"

	"github.com/curioloop/nlpforms/model"
)

// HS14 is problem 14 of the Hock-Schittkowski collection:
//
//	minimize (x₀-2)² + (x₁-1)²
//	subject to x₀ - 2x₁ + 1 = 0
//	           -x₀²/4 - x₁² + 1 ≥ 0
//
// A small general NLP (not least-squares) with one linear equality and one
// nonlinear inequality.
type HS14 struct {
	meta  model.Meta
	count model.Counters

	CloseCalls int
}

// NewHS14 constructs the fixture.
func NewHS14() *HS14 {
	inf := math.Inf(1)
	h := &HS14{
		meta: model.Meta{
			Name: "hs14",
			NVar: 2, NCon: 2,
			X0:   []float64{2, 2},
			LVar: []float64{-inf, -inf},
			UVar: []float64{inf, inf},
			Y0:   make([]float64, 2),
			LCon: []float64{0, 0},
			UCon: []float64{0, inf},
			NnzJ: 4, NnzH: 2,
			Lin: []int{0}, Nln: []int{1},
		},
	}
	if err := h.meta.Validate(); err != nil {
		panic(err)
	}
	return h
}

func (h *HS14) Meta() *model.Meta         { return &h.meta }
func (h *HS14) Counters() *model.Counters { return &h.count }

func (h *HS14) Close() error {
	h.CloseCalls++
	return nil
}

func (h *HS14) Obj(x []float64) (float64, error) {
	if err := model.DimCheck("obj", "x", 2, len(x)); err != nil {
		return 0, err
	}
	h.count.Obj++
	return (x[0]-2)*(x[0]-2) + (x[1]-1)*(x[1]-1), nil
}

func (h *HS14) Grad(x, g []float64) error {
	switch {
	case len(x) != 2:
		return model.DimCheck("grad", "x", 2, len(x))
	case len(g) != 2:
		return model.DimCheck("grad", "g", 2, len(g))
	}
	h.count.Grad++
	g[0] = 2 * (x[0] - 2)
	g[1] = 2 * (x[1] - 1)
	return nil
}

func (h *HS14) Cons(x, c []float64) error {
	switch {
	case len(x) != 2:
		return model.DimCheck("cons", "x", 2, len(x))
	case len(c) != 2:
		return model.DimCheck("cons", "c", 2, len(c))
	}
	h.count.Cons++
	c[0] = x[0] - 2*x[1] + 1
	c[1] = -x[0]*x[0]/4 - x[1]*x[1] + 1
	return nil
}

var (
	hs14JacRows = []int{0, 0, 1, 1}
	hs14JacCols = []int{0, 1, 0, 1}

	hs14HessRows = []int{0, 1}
	hs14HessCols = []int{0, 1}
)

func (h *HS14) JacStructure(rows, cols []int) error {
	switch {
	case len(rows) != 4:
		return model.DimCheck("jac_structure", "rows", 4, len(rows))
	case len(cols) != 4:
		return model.DimCheck("jac_structure", "cols", 4, len(cols))
	}
	copy(rows, hs14JacRows)
	copy(cols, hs14JacCols)
	return nil
}

func (h *HS14) jacVals(x, vals []float64) {
	vals[0], vals[1] = 1, -2
	vals[2], vals[3] = -x[0]/2, -2*x[1]
}

func (h *HS14) JacCoord(x, vals []float64) error {
	switch {
	case len(x) != 2:
		return model.DimCheck("jac_coord", "x", 2, len(x))
	case len(vals) != 4:
		return model.DimCheck("jac_coord", "vals", 4, len(vals))
	}
	h.count.Jac++
	h.jacVals(x, vals)
	return nil
}

func (h *HS14) Jprod(x, v, jv []float64) error {
	switch {
	case len(x) != 2:
		return model.DimCheck("jprod", "x", 2, len(x))
	case len(v) != 2:
		return model.DimCheck("jprod", "v", 2, len(v))
	case len(jv) != 2:
		return model.DimCheck("jprod", "jv", 2, len(jv))
	}
	h.count.Jprod++
	vals := make([]float64, 4)
	h.jacVals(x, vals)
	jv[0], jv[1] = 0, 0
	model.CoordGemv(hs14JacRows, hs14JacCols, vals, v, jv)
	return nil
}

func (h *HS14) Jtprod(x, v, jtv []float64) error {
	switch {
	case len(x) != 2:
		return model.DimCheck("jtprod", "x", 2, len(x))
	case len(v) != 2:
		return model.DimCheck("jtprod", "v", 2, len(v))
	case len(jtv) != 2:
		return model.DimCheck("jtprod", "jtv", 2, len(jtv))
	}
	h.count.Jtprod++
	vals := make([]float64, 4)
	h.jacVals(x, vals)
	jtv[0], jtv[1] = 0, 0
	model.CoordGemvT(hs14JacRows, hs14JacCols, vals, v, jtv)
	return nil
}

func (h *HS14) HessStructure(rows, cols []int) error {
	switch {
	case len(rows) != 2:
		return model.DimCheck("hess_structure", "rows", 2, len(rows))
	case len(cols) != 2:
		return model.DimCheck("hess_structure", "cols", 2, len(cols))
	}
	copy(rows, hs14HessRows)
	copy(cols, hs14HessCols)
	return nil
}

func (h *HS14) hessVals(y []float64, objWeight float64, vals []float64) {
	vals[0] = 2*objWeight - y[1]/2
	vals[1] = 2*objWeight - 2*y[1]
}

func (h *HS14) HessCoord(x, y []float64, objWeight float64, vals []float64) error {
	switch {
	case len(x) != 2:
		return model.DimCheck("hess_coord", "x", 2, len(x))
	case len(y) != 2:
		return model.DimCheck("hess_coord", "y", 2, len(y))
	case len(vals) != 2:
		return model.DimCheck("hess_coord", "vals", 2, len(vals))
	}
	h.count.Hess++
	h.hessVals(y, objWeight, vals)
	return nil
}

func (h *HS14) Hprod(x, y, v []float64, objWeight float64, hv []float64) error {
	switch {
	case len(x) != 2:
		return model.DimCheck("hprod", "x", 2, len(x))
	case len(y) != 2:
		return model.DimCheck("hprod", "y", 2, len(y))
	case len(v) != 2:
		return model.DimCheck("hprod", "v", 2, len(v))
	case len(hv) != 2:
		return model.DimCheck("hprod", "hv", 2, len(hv))
	}
	h.count.Hprod++
	vals := make([]float64, 2)
	h.hessVals(y, objWeight, vals)
	hv[0], hv[1] = 0, 0
	model.CoordSymGemv(hs14HessRows, hs14HessCols, vals, v, hv)
	return nil
}
