// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feasform

import (
	"math"

	"github.com/curioloop/nlpforms/model"
	"github.com/curioloop/nlpforms/slack"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Residual turns the constraint violation of a model into the residual of a
// bound-constrained least-squares problem: given equality constraints
// 𝒄(𝐱) = 𝒄ₗ, the residual is 𝐅(𝐱) = 𝒄(𝐱) - 𝒄ₗ and the objective becomes
// ½‖𝐅(𝐱)‖². A base model with inequality rows is first converted through the
// slack transformation, so the wrapped model is always equality-only.
//
// The objective Hessian 𝐉ᵀ𝐉 + ∑𝐅ᵢ𝜵²𝒄ᵢ is generally dense, so the model
// declares a full lower triangle.
type Residual struct {
	meta    model.Meta
	nlsMeta model.NLSMeta
	count   model.Counters
	inner   model.Model

	n, ne int
	lcon  []float64
}

// NewResidual builds the feasibility residual of nlp. The wrapped model
// (including an implicit slack wrapper, when one is introduced) is owned and
// released by Close. An unconstrained nlp, like one with free constraint
// rows, has no violation to measure and is rejected. If name is empty the
// base name gets a "-feasres" suffix.
func NewResidual(nlp model.Model, name string) (*Residual, error) {
	bm := nlp.Meta()
	if bm.NCon == 0 {
		return nil, model.Unsupported("feasibility residual", bm.Name)
	}
	if name == "" {
		name = bm.Name + "-feasres"
	}

	needSlack := false
	for j := 0; j < bm.NCon; j++ {
		l, u := bm.LCon[j], bm.UCon[j]
		if math.IsInf(l, -1) && math.IsInf(u, 1) {
			// a free row has no violation to measure
			return nil, model.Unsupported("feasibility residual", bm.Name)
		}
		if l < u {
			needSlack = true
		}
	}
	if needSlack {
		sm, err := slack.New(nlp, "")
		if err != nil {
			return nil, err
		}
		nlp, bm = sm, sm.Meta()
	}

	n, ne := bm.NVar, bm.NCon
	meta := model.Meta{
		Name: name,
		NVar: n,
		NCon: 0,
		X0:   append([]float64(nil), bm.X0...),
		LVar: append([]float64(nil), bm.LVar...),
		UVar: append([]float64(nil), bm.UVar...),
		Y0:   []float64{},
		LCon: []float64{},
		UCon: []float64{},
		NnzJ: 0,
		NnzH: n * (n + 1) / 2,
	}
	nlsMeta := model.NLSMeta{
		NEqu: ne,
		NnzJ: bm.NnzJ,
		NnzH: bm.NnzH,
		Lin:  append([]int(nil), bm.Lin...),
		Nln:  append([]int(nil), bm.Nln...),
	}

	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if err := nlsMeta.Validate(); err != nil {
		return nil, err
	}

	return &Residual{
		meta:    meta,
		nlsMeta: nlsMeta,
		inner:   nlp,
		n:       n, ne: ne,
		lcon: append([]float64(nil), bm.LCon...),
	}, nil
}

func (r *Residual) Meta() *model.Meta         { return &r.meta }
func (r *Residual) NLSMeta() *model.NLSMeta   { return &r.nlsMeta }
func (r *Residual) Counters() *model.Counters { return &r.count }

// Inner returns the wrapped equality-only model.
func (r *Residual) Inner() model.Model { return r.inner }

// Close releases the wrapped model.
func (r *Residual) Close() error { return r.inner.Close() }

// residual evaluates 𝐅(𝐱) = 𝒄(𝐱) - 𝒄ₗ without counting.
func (r *Residual) residual(x, fx []float64) error {
	if err := r.inner.Cons(x, fx); err != nil {
		return err
	}
	floats.Sub(fx, r.lcon)
	return nil
}

func (r *Residual) Obj(x []float64) (float64, error) {
	if err := model.DimCheck("obj", "x", r.n, len(x)); err != nil {
		return 0, err
	}
	r.count.Obj++
	fx := make([]float64, r.ne)
	if err := r.residual(x, fx); err != nil {
		return 0, err
	}
	return 0.5 * floats.Dot(fx, fx), nil
}

// Grad evaluates 𝜵(½‖𝐅‖²) = 𝐉(𝐱)ᵀ𝐅(𝐱).
func (r *Residual) Grad(x, g []float64) error {
	switch {
	case len(x) != r.n:
		return model.DimCheck("grad", "x", r.n, len(x))
	case len(g) != r.n:
		return model.DimCheck("grad", "g", r.n, len(g))
	}
	r.count.Grad++
	fx := make([]float64, r.ne)
	if err := r.residual(x, fx); err != nil {
		return err
	}
	return r.inner.Jtprod(x, fx, g)
}

func (r *Residual) Cons(x, c []float64) error {
	switch {
	case len(x) != r.n:
		return model.DimCheck("cons", "x", r.n, len(x))
	case len(c) != 0:
		return model.DimCheck("cons", "c", 0, len(c))
	}
	r.count.Cons++
	return nil
}

func (r *Residual) JacStructure(rows, cols []int) error {
	switch {
	case len(rows) != 0:
		return model.DimCheck("jac_structure", "rows", 0, len(rows))
	case len(cols) != 0:
		return model.DimCheck("jac_structure", "cols", 0, len(cols))
	}
	return nil
}

func (r *Residual) JacCoord(x, vals []float64) error {
	switch {
	case len(x) != r.n:
		return model.DimCheck("jac_coord", "x", r.n, len(x))
	case len(vals) != 0:
		return model.DimCheck("jac_coord", "vals", 0, len(vals))
	}
	r.count.Jac++
	return nil
}

func (r *Residual) Jprod(x, v, jv []float64) error {
	switch {
	case len(x) != r.n:
		return model.DimCheck("jprod", "x", r.n, len(x))
	case len(v) != r.n:
		return model.DimCheck("jprod", "v", r.n, len(v))
	case len(jv) != 0:
		return model.DimCheck("jprod", "jv", 0, len(jv))
	}
	r.count.Jprod++
	return nil
}

func (r *Residual) Jtprod(x, v, jtv []float64) error {
	switch {
	case len(x) != r.n:
		return model.DimCheck("jtprod", "x", r.n, len(x))
	case len(v) != 0:
		return model.DimCheck("jtprod", "v", 0, len(v))
	case len(jtv) != r.n:
		return model.DimCheck("jtprod", "jtv", r.n, len(jtv))
	}
	r.count.Jtprod++
	model.Fill(jtv, 0)
	return nil
}

func (r *Residual) HessStructure(rows, cols []int) error {
	switch {
	case len(rows) != r.meta.NnzH:
		return model.DimCheck("hess_structure", "rows", r.meta.NnzH, len(rows))
	case len(cols) != r.meta.NnzH:
		return model.DimCheck("hess_structure", "cols", r.meta.NnzH, len(cols))
	}
	k := 0
	for i := 0; i < r.n; i++ {
		for j := 0; j <= i; j++ {
			rows[k], cols[k] = i, j
			k++
		}
	}
	return nil
}

// HessCoord evaluates the dense lower triangle of
// objWeight·(𝐉ᵀ𝐉 + ∑𝐅ᵢ𝜵²𝒄ᵢ).
func (r *Residual) HessCoord(x, y []float64, objWeight float64, vals []float64) error {
	switch {
	case len(x) != r.n:
		return model.DimCheck("hess_coord", "x", r.n, len(x))
	case len(y) != 0:
		return model.DimCheck("hess_coord", "y", 0, len(y))
	case len(vals) != r.meta.NnzH:
		return model.DimCheck("hess_coord", "vals", r.meta.NnzH, len(vals))
	}
	r.count.Hess++

	bm := r.inner.Meta()
	jRows := make([]int, bm.NnzJ)
	jCols := make([]int, bm.NnzJ)
	jVals := make([]float64, bm.NnzJ)
	if err := r.inner.JacStructure(jRows, jCols); err != nil {
		return err
	}
	if err := r.inner.JacCoord(x, jVals); err != nil {
		return err
	}
	jac := mat.NewDense(r.ne, r.n, nil)
	for k, v := range jVals {
		jac.Set(jRows[k], jCols[k], jac.At(jRows[k], jCols[k])+v)
	}
	gram := mat.NewDense(r.n, r.n, nil)
	gram.Mul(jac.T(), jac)

	fx := make([]float64, r.ne)
	if err := r.residual(x, fx); err != nil {
		return err
	}
	hRows := make([]int, bm.NnzH)
	hCols := make([]int, bm.NnzH)
	hVals := make([]float64, bm.NnzH)
	if err := r.inner.HessStructure(hRows, hCols); err != nil {
		return err
	}
	if err := r.inner.HessCoord(x, fx, 0, hVals); err != nil {
		return err
	}
	for k, v := range hVals {
		gram.Set(hRows[k], hCols[k], gram.At(hRows[k], hCols[k])+v)
	}

	k := 0
	for i := 0; i < r.n; i++ {
		for j := 0; j <= i; j++ {
			vals[k] = objWeight * gram.At(i, j)
			k++
		}
	}
	return nil
}

func (r *Residual) Hprod(x, y, v []float64, objWeight float64, hv []float64) error {
	switch {
	case len(x) != r.n:
		return model.DimCheck("hprod", "x", r.n, len(x))
	case len(y) != 0:
		return model.DimCheck("hprod", "y", 0, len(y))
	case len(v) != r.n:
		return model.DimCheck("hprod", "v", r.n, len(v))
	case len(hv) != r.n:
		return model.DimCheck("hprod", "hv", r.n, len(hv))
	}
	r.count.Hprod++

	jv := make([]float64, r.ne)
	if err := r.inner.Jprod(x, v, jv); err != nil {
		return err
	}
	if err := r.inner.Jtprod(x, jv, hv); err != nil {
		return err
	}

	fx := make([]float64, r.ne)
	if err := r.residual(x, fx); err != nil {
		return err
	}
	tmp := make([]float64, r.n)
	if err := r.inner.Hprod(x, fx, v, 0, tmp); err != nil {
		return err
	}
	floats.Add(hv, tmp)
	floats.Scale(objWeight, hv)
	return nil
}

func (r *Residual) Residual(x, fx []float64) error {
	switch {
	case len(x) != r.n:
		return model.DimCheck("residual", "x", r.n, len(x))
	case len(fx) != r.ne:
		return model.DimCheck("residual", "fx", r.ne, len(fx))
	}
	r.count.Residual++
	return r.residual(x, fx)
}

func (r *Residual) ResJacStructure(rows, cols []int) error {
	switch {
	case len(rows) != r.nlsMeta.NnzJ:
		return model.DimCheck("res_jac_structure", "rows", r.nlsMeta.NnzJ, len(rows))
	case len(cols) != r.nlsMeta.NnzJ:
		return model.DimCheck("res_jac_structure", "cols", r.nlsMeta.NnzJ, len(cols))
	}
	return r.inner.JacStructure(rows, cols)
}

func (r *Residual) ResJacCoord(x, vals []float64) error {
	switch {
	case len(x) != r.n:
		return model.DimCheck("res_jac_coord", "x", r.n, len(x))
	case len(vals) != r.nlsMeta.NnzJ:
		return model.DimCheck("res_jac_coord", "vals", r.nlsMeta.NnzJ, len(vals))
	}
	r.count.ResJac++
	return r.inner.JacCoord(x, vals)
}

func (r *Residual) ResJprod(x, v, jv []float64) error {
	switch {
	case len(x) != r.n:
		return model.DimCheck("res_jprod", "x", r.n, len(x))
	case len(v) != r.n:
		return model.DimCheck("res_jprod", "v", r.n, len(v))
	case len(jv) != r.ne:
		return model.DimCheck("res_jprod", "jv", r.ne, len(jv))
	}
	r.count.ResJprod++
	return r.inner.Jprod(x, v, jv)
}

func (r *Residual) ResJtprod(x, v, jtv []float64) error {
	switch {
	case len(x) != r.n:
		return model.DimCheck("res_jtprod", "x", r.n, len(x))
	case len(v) != r.ne:
		return model.DimCheck("res_jtprod", "v", r.ne, len(v))
	case len(jtv) != r.n:
		return model.DimCheck("res_jtprod", "jtv", r.n, len(jtv))
	}
	r.count.ResJtprod++
	return r.inner.Jtprod(x, v, jtv)
}

func (r *Residual) ResHessStructure(rows, cols []int) error {
	switch {
	case len(rows) != r.nlsMeta.NnzH:
		return model.DimCheck("res_hess_structure", "rows", r.nlsMeta.NnzH, len(rows))
	case len(cols) != r.nlsMeta.NnzH:
		return model.DimCheck("res_hess_structure", "cols", r.nlsMeta.NnzH, len(cols))
	}
	return r.inner.HessStructure(rows, cols)
}

func (r *Residual) ResHessCoord(x, w, vals []float64) error {
	switch {
	case len(x) != r.n:
		return model.DimCheck("res_hess_coord", "x", r.n, len(x))
	case len(w) != r.ne:
		return model.DimCheck("res_hess_coord", "w", r.ne, len(w))
	case len(vals) != r.nlsMeta.NnzH:
		return model.DimCheck("res_hess_coord", "vals", r.nlsMeta.NnzH, len(vals))
	}
	r.count.ResHess++
	return r.inner.HessCoord(x, w, 0, vals)
}

func (r *Residual) ResHprod(x, w, v, hv []float64) error {
	switch {
	case len(x) != r.n:
		return model.DimCheck("res_hprod", "x", r.n, len(x))
	case len(w) != r.ne:
		return model.DimCheck("res_hprod", "w", r.ne, len(w))
	case len(v) != r.n:
		return model.DimCheck("res_hprod", "v", r.n, len(v))
	case len(hv) != r.n:
		return model.DimCheck("res_hprod", "hv", r.n, len(hv))
	}
	r.count.ResHprod++
	return r.inner.Hprod(x, w, v, 0, hv)
}
