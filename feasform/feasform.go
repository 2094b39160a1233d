// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package feasform reformulates least-squares problems into feasibility
// forms.
//
// Model moves the residual of an NLS problem into equality constraints:
//
//	minimize ½‖𝐅(𝐱)‖²  s.t.  𝒄ₗ ≤ 𝒄(𝐱) ≤ 𝒄ᵤ
//
// becomes, over the extended vector (𝐱,𝐫),
//
//	minimize ½‖𝐫‖²  s.t.  𝐅(𝐱) - 𝐫 = 0 , 𝒄ₗ ≤ 𝒄(𝐱) ≤ 𝒄ᵤ
//
// Residual introduces the converse transformation: the constraint violation
// of an arbitrary model becomes the residual of a bound-constrained
// least-squares problem.
//
// Jacobian and Hessian queries are answered in coordinate format by
// assembling sub-model blocks at fixed offsets; index pairs may repeat
// across blocks and sum, per the additive triplet convention.
package feasform

import (
	"math"

	"github.com/curioloop/nlpforms/model"
	"gonum.org/v1/gonum/floats"
)

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)

// Model is the feasibility form of a least-squares model.
//
// Layouts are fixed for the model's lifetime: variables are the base
// variables followed by one auxiliary variable per residual component;
// constraint rows are 𝐅(𝐱)-𝐫 = 0 followed by the base constraints; the
// multiplier vector splits the same way. The Jacobian pattern is the base
// residual-Jacobian block, the base constraint block shifted down by nequ
// rows, then the -𝐈 auxiliary block. The Hessian pattern is the weighted
// residual-Hessian block, the base Hessian block taken at zero objective
// weight, then the objWeight·𝐈 auxiliary diagonal.
type Model struct {
	meta    model.Meta
	nlsMeta model.NLSMeta
	count   model.Counters
	inner   model.NLSModel

	n, m, ne int // base nvar, base ncon, base nequ
}

// New reformulates nls into its feasibility form.
// If name is empty the base name gets a "-ffnls" suffix.
func New(nls model.NLSModel, name string) (*Model, error) {
	bm, bn := nls.Meta(), nls.NLSMeta()
	n, m, ne := bm.NVar, bm.NCon, bn.NEqu

	if name == "" {
		name = bm.Name + "-ffnls"
	}

	nvar, ncon := n+ne, ne+m
	meta := model.Meta{
		Name: name,
		NVar: nvar,
		NCon: ncon,
		X0:   make([]float64, nvar),
		LVar: make([]float64, nvar),
		UVar: make([]float64, nvar),
		Y0:   make([]float64, ncon),
		LCon: make([]float64, ncon),
		UCon: make([]float64, ncon),
		NnzJ: bn.NnzJ + ne,
		NnzH: bn.NnzH + ne,
		Lin:  append([]int(nil), bn.Lin...),
		Nln:  append([]int(nil), bn.Nln...),
	}
	if m > 0 {
		meta.NnzJ += bm.NnzJ
		meta.NnzH += bm.NnzH
	}

	copy(meta.X0, bm.X0) // auxiliary start values stay zero
	copy(meta.LVar, bm.LVar)
	copy(meta.UVar, bm.UVar)
	for i := n; i < nvar; i++ {
		meta.LVar[i] = negInf
		meta.UVar[i] = posInf
	}
	copy(meta.Y0[ne:], bm.Y0)
	copy(meta.LCon[ne:], bm.LCon)
	copy(meta.UCon[ne:], bm.UCon)

	for _, j := range bm.Lin {
		meta.Lin = append(meta.Lin, j+ne)
	}
	for _, j := range bm.Nln {
		meta.Nln = append(meta.Nln, j+ne)
	}

	nlsMeta := model.NLSMeta{
		NEqu: ne,
		NnzJ: ne,
		NnzH: 0,
		Lin:  make([]int, ne), // the residual of this model is the linear map 𝐫
	}
	for i := range nlsMeta.Lin {
		nlsMeta.Lin[i] = i
	}

	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if err := nlsMeta.Validate(); err != nil {
		return nil, err
	}

	return &Model{
		meta:    meta,
		nlsMeta: nlsMeta,
		inner:   nls,
		n:       n, m: m, ne: ne,
	}, nil
}

func (f *Model) Meta() *model.Meta         { return &f.meta }
func (f *Model) NLSMeta() *model.NLSMeta   { return &f.nlsMeta }
func (f *Model) Counters() *model.Counters { return &f.count }

// Inner returns the wrapped least-squares model.
func (f *Model) Inner() model.NLSModel { return f.inner }

// Close releases the wrapped model.
func (f *Model) Close() error { return f.inner.Close() }

// Obj evaluates ½‖𝐫‖², independent of the original variables.
func (f *Model) Obj(x []float64) (float64, error) {
	if err := model.DimCheck("obj", "x", f.meta.NVar, len(x)); err != nil {
		return 0, err
	}
	f.count.Obj++
	r := x[f.n:]
	return 0.5 * floats.Dot(r, r), nil
}

func (f *Model) Grad(x, g []float64) error {
	switch {
	case len(x) != f.meta.NVar:
		return model.DimCheck("grad", "x", f.meta.NVar, len(x))
	case len(g) != f.meta.NVar:
		return model.DimCheck("grad", "g", f.meta.NVar, len(g))
	}
	f.count.Grad++
	model.Fill(g[:f.n], 0)
	copy(g[f.n:], x[f.n:])
	return nil
}

func (f *Model) Cons(x, c []float64) error {
	switch {
	case len(x) != f.meta.NVar:
		return model.DimCheck("cons", "x", f.meta.NVar, len(x))
	case len(c) != f.meta.NCon:
		return model.DimCheck("cons", "c", f.meta.NCon, len(c))
	}
	f.count.Cons++
	if err := f.inner.Residual(x[:f.n], c[:f.ne]); err != nil {
		return err
	}
	floats.Sub(c[:f.ne], x[f.n:])
	if f.m > 0 {
		return f.inner.Cons(x[:f.n], c[f.ne:])
	}
	return nil
}

func (f *Model) JacStructure(rows, cols []int) error {
	switch {
	case len(rows) != f.meta.NnzJ:
		return model.DimCheck("jac_structure", "rows", f.meta.NnzJ, len(rows))
	case len(cols) != f.meta.NnzJ:
		return model.DimCheck("jac_structure", "cols", f.meta.NnzJ, len(cols))
	}
	rj := f.inner.NLSMeta().NnzJ
	if err := f.inner.ResJacStructure(rows[:rj], cols[:rj]); err != nil {
		return err
	}
	off := rj
	if f.m > 0 {
		cj := f.inner.Meta().NnzJ
		if err := f.inner.JacStructure(rows[off:off+cj], cols[off:off+cj]); err != nil {
			return err
		}
		model.Shift(rows[off:off+cj], f.ne)
		off += cj
	}
	model.IdentityBlock(rows[off:], cols[off:], 0, f.n)
	return nil
}

func (f *Model) JacCoord(x, vals []float64) error {
	switch {
	case len(x) != f.meta.NVar:
		return model.DimCheck("jac_coord", "x", f.meta.NVar, len(x))
	case len(vals) != f.meta.NnzJ:
		return model.DimCheck("jac_coord", "vals", f.meta.NnzJ, len(vals))
	}
	f.count.Jac++
	rj := f.inner.NLSMeta().NnzJ
	if err := f.inner.ResJacCoord(x[:f.n], vals[:rj]); err != nil {
		return err
	}
	off := rj
	if f.m > 0 {
		cj := f.inner.Meta().NnzJ
		if err := f.inner.JacCoord(x[:f.n], vals[off:off+cj]); err != nil {
			return err
		}
		off += cj
	}
	model.Fill(vals[off:], -1)
	return nil
}

func (f *Model) Jprod(x, v, jv []float64) error {
	switch {
	case len(x) != f.meta.NVar:
		return model.DimCheck("jprod", "x", f.meta.NVar, len(x))
	case len(v) != f.meta.NVar:
		return model.DimCheck("jprod", "v", f.meta.NVar, len(v))
	case len(jv) != f.meta.NCon:
		return model.DimCheck("jprod", "jv", f.meta.NCon, len(jv))
	}
	f.count.Jprod++
	if err := f.inner.ResJprod(x[:f.n], v[:f.n], jv[:f.ne]); err != nil {
		return err
	}
	floats.Sub(jv[:f.ne], v[f.n:])
	if f.m > 0 {
		return f.inner.Jprod(x[:f.n], v[:f.n], jv[f.ne:])
	}
	return nil
}

func (f *Model) Jtprod(x, v, jtv []float64) error {
	switch {
	case len(x) != f.meta.NVar:
		return model.DimCheck("jtprod", "x", f.meta.NVar, len(x))
	case len(v) != f.meta.NCon:
		return model.DimCheck("jtprod", "v", f.meta.NCon, len(v))
	case len(jtv) != f.meta.NVar:
		return model.DimCheck("jtprod", "jtv", f.meta.NVar, len(jtv))
	}
	f.count.Jtprod++
	if err := f.inner.ResJtprod(x[:f.n], v[:f.ne], jtv[:f.n]); err != nil {
		return err
	}
	if f.m > 0 {
		tmp := make([]float64, f.n)
		if err := f.inner.Jtprod(x[:f.n], v[f.ne:], tmp); err != nil {
			return err
		}
		floats.Add(jtv[:f.n], tmp)
	}
	for i, vi := range v[:f.ne] {
		jtv[f.n+i] = -vi
	}
	return nil
}

func (f *Model) HessStructure(rows, cols []int) error {
	switch {
	case len(rows) != f.meta.NnzH:
		return model.DimCheck("hess_structure", "rows", f.meta.NnzH, len(rows))
	case len(cols) != f.meta.NnzH:
		return model.DimCheck("hess_structure", "cols", f.meta.NnzH, len(cols))
	}
	rh := f.inner.NLSMeta().NnzH
	if err := f.inner.ResHessStructure(rows[:rh], cols[:rh]); err != nil {
		return err
	}
	off := rh
	if f.m > 0 {
		ch := f.inner.Meta().NnzH
		if err := f.inner.HessStructure(rows[off:off+ch], cols[off:off+ch]); err != nil {
			return err
		}
		off += ch
	}
	model.IdentityBlock(rows[off:], cols[off:], f.n, f.n)
	return nil
}

func (f *Model) HessCoord(x, y []float64, objWeight float64, vals []float64) error {
	switch {
	case len(x) != f.meta.NVar:
		return model.DimCheck("hess_coord", "x", f.meta.NVar, len(x))
	case len(y) != f.meta.NCon:
		return model.DimCheck("hess_coord", "y", f.meta.NCon, len(y))
	case len(vals) != f.meta.NnzH:
		return model.DimCheck("hess_coord", "vals", f.meta.NnzH, len(vals))
	}
	f.count.Hess++
	rh := f.inner.NLSMeta().NnzH
	if err := f.inner.ResHessCoord(x[:f.n], y[:f.ne], vals[:rh]); err != nil {
		return err
	}
	off := rh
	if f.m > 0 {
		ch := f.inner.Meta().NnzH
		// base objective curvature is forced out: only constraint terms remain
		if err := f.inner.HessCoord(x[:f.n], y[f.ne:], 0, vals[off:off+ch]); err != nil {
			return err
		}
		off += ch
	}
	model.Fill(vals[off:], objWeight)
	return nil
}

func (f *Model) Hprod(x, y, v []float64, objWeight float64, hv []float64) error {
	switch {
	case len(x) != f.meta.NVar:
		return model.DimCheck("hprod", "x", f.meta.NVar, len(x))
	case len(y) != f.meta.NCon:
		return model.DimCheck("hprod", "y", f.meta.NCon, len(y))
	case len(v) != f.meta.NVar:
		return model.DimCheck("hprod", "v", f.meta.NVar, len(v))
	case len(hv) != f.meta.NVar:
		return model.DimCheck("hprod", "hv", f.meta.NVar, len(hv))
	}
	f.count.Hprod++
	if err := f.inner.ResHprod(x[:f.n], y[:f.ne], v[:f.n], hv[:f.n]); err != nil {
		return err
	}
	if f.m > 0 {
		tmp := make([]float64, f.n)
		if err := f.inner.Hprod(x[:f.n], y[f.ne:], v[:f.n], 0, tmp); err != nil {
			return err
		}
		floats.Add(hv[:f.n], tmp)
	}
	for i, vi := range v[f.n:] {
		hv[f.n+i] = objWeight * vi
	}
	return nil
}

// Residual of the feasibility form is the identity map on the auxiliary
// segment: 𝐅(𝐱,𝐫) = 𝐫.
func (f *Model) Residual(x, fx []float64) error {
	switch {
	case len(x) != f.meta.NVar:
		return model.DimCheck("residual", "x", f.meta.NVar, len(x))
	case len(fx) != f.ne:
		return model.DimCheck("residual", "fx", f.ne, len(fx))
	}
	f.count.Residual++
	copy(fx, x[f.n:])
	return nil
}

func (f *Model) ResJacStructure(rows, cols []int) error {
	switch {
	case len(rows) != f.ne:
		return model.DimCheck("res_jac_structure", "rows", f.ne, len(rows))
	case len(cols) != f.ne:
		return model.DimCheck("res_jac_structure", "cols", f.ne, len(cols))
	}
	model.IdentityBlock(rows, cols, 0, f.n)
	return nil
}

func (f *Model) ResJacCoord(x, vals []float64) error {
	switch {
	case len(x) != f.meta.NVar:
		return model.DimCheck("res_jac_coord", "x", f.meta.NVar, len(x))
	case len(vals) != f.ne:
		return model.DimCheck("res_jac_coord", "vals", f.ne, len(vals))
	}
	f.count.ResJac++
	model.Fill(vals, 1)
	return nil
}

func (f *Model) ResJprod(x, v, jv []float64) error {
	switch {
	case len(x) != f.meta.NVar:
		return model.DimCheck("res_jprod", "x", f.meta.NVar, len(x))
	case len(v) != f.meta.NVar:
		return model.DimCheck("res_jprod", "v", f.meta.NVar, len(v))
	case len(jv) != f.ne:
		return model.DimCheck("res_jprod", "jv", f.ne, len(jv))
	}
	f.count.ResJprod++
	copy(jv, v[f.n:])
	return nil
}

func (f *Model) ResJtprod(x, v, jtv []float64) error {
	switch {
	case len(x) != f.meta.NVar:
		return model.DimCheck("res_jtprod", "x", f.meta.NVar, len(x))
	case len(v) != f.ne:
		return model.DimCheck("res_jtprod", "v", f.ne, len(v))
	case len(jtv) != f.meta.NVar:
		return model.DimCheck("res_jtprod", "jtv", f.meta.NVar, len(jtv))
	}
	f.count.ResJtprod++
	model.Fill(jtv[:f.n], 0)
	copy(jtv[f.n:], v)
	return nil
}

// ResHessStructure reports nothing: a linear residual has zero curvature.
// The caller-supplied buffers must be empty and are not touched.
func (f *Model) ResHessStructure(rows, cols []int) error {
	switch {
	case len(rows) != 0:
		return model.DimCheck("res_hess_structure", "rows", 0, len(rows))
	case len(cols) != 0:
		return model.DimCheck("res_hess_structure", "cols", 0, len(cols))
	}
	return nil
}

func (f *Model) ResHessCoord(x, w, vals []float64) error {
	switch {
	case len(x) != f.meta.NVar:
		return model.DimCheck("res_hess_coord", "x", f.meta.NVar, len(x))
	case len(w) != f.ne:
		return model.DimCheck("res_hess_coord", "w", f.ne, len(w))
	case len(vals) != 0:
		return model.DimCheck("res_hess_coord", "vals", 0, len(vals))
	}
	f.count.ResHess++
	return nil
}

func (f *Model) ResHprod(x, w, v, hv []float64) error {
	switch {
	case len(x) != f.meta.NVar:
		return model.DimCheck("res_hprod", "x", f.meta.NVar, len(x))
	case len(w) != f.ne:
		return model.DimCheck("res_hprod", "w", f.ne, len(w))
	case len(v) != f.meta.NVar:
		return model.DimCheck("res_hprod", "v", f.meta.NVar, len(v))
	case len(hv) != f.meta.NVar:
		return model.DimCheck("res_hprod", "hv", f.meta.NVar, len(hv))
	}
	f.count.ResHprod++
	model.Fill(hv, 0)
	return nil
}
