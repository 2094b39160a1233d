// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package modeltest provides small analytic models with hand-coded
// derivatives and known sparsity, used to exercise the composed models
// against exact references.
package modeltest

import (
	"math"

	"github.com/curioloop/nlpforms/model"
)

// SampleNLS is a 4-variable least-squares model with 2 residual components
// and 5 constraints mixing every bound kind:
//
//	𝐅(𝐱) = [ x₀ + x₂ - 1 ; 10(x₁ - x₀²) ]
//
//	c₀ = x₀ + 2x₁            ≥ 0        (linear)
//	c₁ = x₂² + x₃            = 1
//	c₂ = x₀x₃           -1 ≤ · ≤ 1      (ranged)
//	c₃ = x₁ + x₂             ≤ 2        (linear)
//	c₄ = x₀²+x₁²+x₂²+x₃²     ≤ 4
//
// Derivatives are analytic and every sparse query is positionally aligned
// with the declared structure.
type SampleNLS struct {
	meta    model.Meta
	nlsMeta model.NLSMeta
	count   model.Counters

	// CloseCalls counts Close invocations, for teardown propagation tests.
	CloseCalls int
}

// NewSampleNLS constructs the fixture.
func NewSampleNLS() *SampleNLS {
	inf := math.Inf(1)
	s := &SampleNLS{
		meta: model.Meta{
			Name: "sample-nls",
			NVar: 4, NCon: 5,
			X0:   []float64{0.5, 0.5, 0.5, 0.5},
			LVar: []float64{-inf, -inf, -inf, -inf},
			UVar: []float64{inf, inf, inf, inf},
			Y0:   make([]float64, 5),
			LCon: []float64{0, 1, -1, -inf, -inf},
			UCon: []float64{inf, 1, 1, 2, 4},
			NnzJ: 12, NnzH: 7,
			Lin: []int{0, 3}, Nln: []int{1, 2, 4},
		},
		nlsMeta: model.NLSMeta{
			NEqu: 2, NnzJ: 4, NnzH: 1,
			Lin: []int{0}, Nln: []int{1},
		},
	}
	if err := s.meta.Validate(); err != nil {
		panic(err)
	}
	if err := s.nlsMeta.Validate(); err != nil {
		panic(err)
	}
	return s
}

func (s *SampleNLS) Meta() *model.Meta         { return &s.meta }
func (s *SampleNLS) NLSMeta() *model.NLSMeta   { return &s.nlsMeta }
func (s *SampleNLS) Counters() *model.Counters { return &s.count }

func (s *SampleNLS) Close() error {
	s.CloseCalls++
	return nil
}

func (s *SampleNLS) Obj(x []float64) (float64, error) {
	if err := model.DimCheck("obj", "x", 4, len(x)); err != nil {
		return 0, err
	}
	s.count.Obj++
	f0 := x[0] + x[2] - 1
	f1 := 10 * (x[1] - x[0]*x[0])
	return 0.5 * (f0*f0 + f1*f1), nil
}

func (s *SampleNLS) Grad(x, g []float64) error {
	switch {
	case len(x) != 4:
		return model.DimCheck("grad", "x", 4, len(x))
	case len(g) != 4:
		return model.DimCheck("grad", "g", 4, len(g))
	}
	s.count.Grad++
	f0 := x[0] + x[2] - 1
	f1 := 10 * (x[1] - x[0]*x[0])
	g[0] = f0 - 20*x[0]*f1
	g[1] = 10 * f1
	g[2] = f0
	g[3] = 0
	return nil
}

func (s *SampleNLS) Cons(x, c []float64) error {
	switch {
	case len(x) != 4:
		return model.DimCheck("cons", "x", 4, len(x))
	case len(c) != 5:
		return model.DimCheck("cons", "c", 5, len(c))
	}
	s.count.Cons++
	c[0] = x[0] + 2*x[1]
	c[1] = x[2]*x[2] + x[3]
	c[2] = x[0] * x[3]
	c[3] = x[1] + x[2]
	c[4] = x[0]*x[0] + x[1]*x[1] + x[2]*x[2] + x[3]*x[3]
	return nil
}

var (
	sampleJacRows = []int{0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 4, 4}
	sampleJacCols = []int{0, 1, 2, 3, 0, 3, 1, 2, 0, 1, 2, 3}

	sampleHessRows = []int{0, 1, 1, 2, 2, 3, 3}
	sampleHessCols = []int{0, 0, 1, 0, 2, 0, 3}

	sampleResJacRows = []int{0, 0, 1, 1}
	sampleResJacCols = []int{0, 2, 0, 1}
)

func (s *SampleNLS) JacStructure(rows, cols []int) error {
	switch {
	case len(rows) != 12:
		return model.DimCheck("jac_structure", "rows", 12, len(rows))
	case len(cols) != 12:
		return model.DimCheck("jac_structure", "cols", 12, len(cols))
	}
	copy(rows, sampleJacRows)
	copy(cols, sampleJacCols)
	return nil
}

func (s *SampleNLS) JacCoord(x, vals []float64) error {
	switch {
	case len(x) != 4:
		return model.DimCheck("jac_coord", "x", 4, len(x))
	case len(vals) != 12:
		return model.DimCheck("jac_coord", "vals", 12, len(vals))
	}
	s.count.Jac++
	s.jacVals(x, vals)
	return nil
}

func (s *SampleNLS) jacVals(x, vals []float64) {
	vals[0], vals[1] = 1, 2
	vals[2], vals[3] = 2*x[2], 1
	vals[4], vals[5] = x[3], x[0]
	vals[6], vals[7] = 1, 1
	vals[8], vals[9], vals[10], vals[11] = 2*x[0], 2*x[1], 2*x[2], 2*x[3]
}

func (s *SampleNLS) Jprod(x, v, jv []float64) error {
	switch {
	case len(x) != 4:
		return model.DimCheck("jprod", "x", 4, len(x))
	case len(v) != 4:
		return model.DimCheck("jprod", "v", 4, len(v))
	case len(jv) != 5:
		return model.DimCheck("jprod", "jv", 5, len(jv))
	}
	s.count.Jprod++
	vals := make([]float64, 12)
	s.jacVals(x, vals)
	for i := range jv {
		jv[i] = 0
	}
	model.CoordGemv(sampleJacRows, sampleJacCols, vals, v, jv)
	return nil
}

func (s *SampleNLS) Jtprod(x, v, jtv []float64) error {
	switch {
	case len(x) != 4:
		return model.DimCheck("jtprod", "x", 4, len(x))
	case len(v) != 5:
		return model.DimCheck("jtprod", "v", 5, len(v))
	case len(jtv) != 4:
		return model.DimCheck("jtprod", "jtv", 4, len(jtv))
	}
	s.count.Jtprod++
	vals := make([]float64, 12)
	s.jacVals(x, vals)
	for i := range jtv {
		jtv[i] = 0
	}
	model.CoordGemvT(sampleJacRows, sampleJacCols, vals, v, jtv)
	return nil
}

func (s *SampleNLS) HessStructure(rows, cols []int) error {
	switch {
	case len(rows) != 7:
		return model.DimCheck("hess_structure", "rows", 7, len(rows))
	case len(cols) != 7:
		return model.DimCheck("hess_structure", "cols", 7, len(cols))
	}
	copy(rows, sampleHessRows)
	copy(cols, sampleHessCols)
	return nil
}

func (s *SampleNLS) HessCoord(x, y []float64, objWeight float64, vals []float64) error {
	switch {
	case len(x) != 4:
		return model.DimCheck("hess_coord", "x", 4, len(x))
	case len(y) != 5:
		return model.DimCheck("hess_coord", "y", 5, len(y))
	case len(vals) != 7:
		return model.DimCheck("hess_coord", "vals", 7, len(vals))
	}
	s.count.Hess++
	s.hessVals(x, y, objWeight, vals)
	return nil
}

func (s *SampleNLS) hessVals(x, y []float64, objWeight float64, vals []float64) {
	f1 := 10 * (x[1] - x[0]*x[0])
	vals[0] = objWeight*(1+400*x[0]*x[0]-20*f1) + 2*y[4] // (0,0)
	vals[1] = objWeight * (-200 * x[0])                  // (1,0)
	vals[2] = objWeight*100 + 2*y[4]                     // (1,1)
	vals[3] = objWeight                                  // (2,0)
	vals[4] = objWeight + 2*y[1] + 2*y[4]                // (2,2)
	vals[5] = y[2]                                       // (3,0)
	vals[6] = 2 * y[4] // (3,3)
}

func (s *SampleNLS) Hprod(x, y, v []float64, objWeight float64, hv []float64) error {
	switch {
	case len(x) != 4:
		return model.DimCheck("hprod", "x", 4, len(x))
	case len(y) != 5:
		return model.DimCheck("hprod", "y", 5, len(y))
	case len(v) != 4:
		return model.DimCheck("hprod", "v", 4, len(v))
	case len(hv) != 4:
		return model.DimCheck("hprod", "hv", 4, len(hv))
	}
	s.count.Hprod++
	vals := make([]float64, 7)
	s.hessVals(x, y, objWeight, vals)
	for i := range hv {
		hv[i] = 0
	}
	model.CoordSymGemv(sampleHessRows, sampleHessCols, vals, v, hv)
	return nil
}

func (s *SampleNLS) Residual(x, fx []float64) error {
	switch {
	case len(x) != 4:
		return model.DimCheck("residual", "x", 4, len(x))
	case len(fx) != 2:
		return model.DimCheck("residual", "fx", 2, len(fx))
	}
	s.count.Residual++
	fx[0] = x[0] + x[2] - 1
	fx[1] = 10 * (x[1] - x[0]*x[0])
	return nil
}

func (s *SampleNLS) ResJacStructure(rows, cols []int) error {
	switch {
	case len(rows) != 4:
		return model.DimCheck("res_jac_structure", "rows", 4, len(rows))
	case len(cols) != 4:
		return model.DimCheck("res_jac_structure", "cols", 4, len(cols))
	}
	copy(rows, sampleResJacRows)
	copy(cols, sampleResJacCols)
	return nil
}

func (s *SampleNLS) ResJacCoord(x, vals []float64) error {
	switch {
	case len(x) != 4:
		return model.DimCheck("res_jac_coord", "x", 4, len(x))
	case len(vals) != 4:
		return model.DimCheck("res_jac_coord", "vals", 4, len(vals))
	}
	s.count.ResJac++
	vals[0], vals[1] = 1, 1
	vals[2], vals[3] = -20*x[0], 10
	return nil
}

func (s *SampleNLS) ResJprod(x, v, jv []float64) error {
	switch {
	case len(x) != 4:
		return model.DimCheck("res_jprod", "x", 4, len(x))
	case len(v) != 4:
		return model.DimCheck("res_jprod", "v", 4, len(v))
	case len(jv) != 2:
		return model.DimCheck("res_jprod", "jv", 2, len(jv))
	}
	s.count.ResJprod++
	jv[0] = v[0] + v[2]
	jv[1] = -20*x[0]*v[0] + 10*v[1]
	return nil
}

func (s *SampleNLS) ResJtprod(x, v, jtv []float64) error {
	switch {
	case len(x) != 4:
		return model.DimCheck("res_jtprod", "x", 4, len(x))
	case len(v) != 2:
		return model.DimCheck("res_jtprod", "v", 2, len(v))
	case len(jtv) != 4:
		return model.DimCheck("res_jtprod", "jtv", 4, len(jtv))
	}
	s.count.ResJtprod++
	jtv[0] = v[0] - 20*x[0]*v[1]
	jtv[1] = 10 * v[1]
	jtv[2] = v[0]
	jtv[3] = 0
	return nil
}

func (s *SampleNLS) ResHessStructure(rows, cols []int) error {
	switch {
	case len(rows) != 1:
		return model.DimCheck("res_hess_structure", "rows", 1, len(rows))
	case len(cols) != 1:
		return model.DimCheck("res_hess_structure", "cols", 1, len(cols))
	}
	rows[0], cols[0] = 0, 0
	return nil
}

func (s *SampleNLS) ResHessCoord(x, w, vals []float64) error {
	switch {
	case len(x) != 4:
		return model.DimCheck("res_hess_coord", "x", 4, len(x))
	case len(w) != 2:
		return model.DimCheck("res_hess_coord", "w", 2, len(w))
	case len(vals) != 1:
		return model.DimCheck("res_hess_coord", "vals", 1, len(vals))
	}
	s.count.ResHess++
	vals[0] = -20 * w[1]
	return nil
}

func (s *SampleNLS) ResHprod(x, w, v, hv []float64) error {
	switch {
	case len(x) != 4:
		return model.DimCheck("res_hprod", "x", 4, len(x))
	case len(w) != 2:
		return model.DimCheck("res_hprod", "w", 2, len(w))
	case len(v) != 4:
		return model.DimCheck("res_hprod", "v", 4, len(v))
	case len(hv) != 4:
		return model.DimCheck("res_hprod", "hv", 4, len(hv))
	}
	s.count.ResHprod++
	hv[0] = -20 * w[1] * v[0]
	hv[1], hv[2], hv[3] = 0, 0, 0
	return nil
}
