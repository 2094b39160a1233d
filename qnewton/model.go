// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qnewton

import (
	"github.com/curioloop/nlpforms/model"
)

// Model wraps a base model and answers Hessian-vector products from a
// limited-memory secant operator instead of the true Hessian. Every other
// query forwards to the wrapped model with identical arguments and results.
//
// The delegation table is the contract:
//
//	forwarded : Obj, Grad, Cons, JacStructure, JacCoord, Jprod, Jtprod
//	overridden: Hprod (secant operator; y and objWeight are ignored, the
//	            operator models the Lagrangian curvature as observed
//	            through pushed gradient differences)
//	rejected  : HessStructure, HessCoord (the approximation exists only in
//	            operator form, there is no sparse coordinate structure)
//
// Push and Reset are the only mutation path; the model never inspects the
// operator's state beyond calling them.
type Model struct {
	meta  model.Meta
	count model.Counters
	inner model.Model
	op    Operator
}

// New wraps nlp with the secant operator op, whose dimension must match
// the model. If name is empty the base name gets a "-qn" suffix.
func New(nlp model.Model, op Operator, name string) (*Model, error) {
	bm := nlp.Meta()
	if err := model.DimCheck("quasi-newton model", "operator", bm.NVar, op.Dim()); err != nil {
		return nil, err
	}
	if name == "" {
		name = bm.Name + "-qn"
	}
	meta := *bm
	meta.Name = name
	// no sparse Hessian structure exists on this model
	meta.NnzH = 0
	return &Model{meta: meta, inner: nlp, op: op}, nil
}

func (q *Model) Meta() *model.Meta         { return &q.meta }
func (q *Model) Counters() *model.Counters { return &q.count }

// Inner returns the wrapped model.
func (q *Model) Inner() model.Model { return q.inner }

// Operator returns the held secant operator.
func (q *Model) Operator() Operator { return q.op }

// Close releases the wrapped model.
func (q *Model) Close() error { return q.inner.Close() }

// Push records the curvature pair (𝐬,𝐲) on the operator and reports
// whether it was accepted.
func (q *Model) Push(s, y []float64) (bool, error) {
	switch {
	case len(s) != q.meta.NVar:
		return false, model.DimCheck("push", "s", q.meta.NVar, len(s))
	case len(y) != q.meta.NVar:
		return false, model.DimCheck("push", "y", q.meta.NVar, len(y))
	}
	return q.op.Push(s, y), nil
}

// Reset clears the secant memory back to its initial scaled-identity state.
func (q *Model) Reset() { q.op.Reset() }

func (q *Model) Obj(x []float64) (float64, error) {
	if err := model.DimCheck("obj", "x", q.meta.NVar, len(x)); err != nil {
		return 0, err
	}
	q.count.Obj++
	return q.inner.Obj(x)
}

func (q *Model) Grad(x, g []float64) error {
	switch {
	case len(x) != q.meta.NVar:
		return model.DimCheck("grad", "x", q.meta.NVar, len(x))
	case len(g) != q.meta.NVar:
		return model.DimCheck("grad", "g", q.meta.NVar, len(g))
	}
	q.count.Grad++
	return q.inner.Grad(x, g)
}

func (q *Model) Cons(x, c []float64) error {
	switch {
	case len(x) != q.meta.NVar:
		return model.DimCheck("cons", "x", q.meta.NVar, len(x))
	case len(c) != q.meta.NCon:
		return model.DimCheck("cons", "c", q.meta.NCon, len(c))
	}
	q.count.Cons++
	return q.inner.Cons(x, c)
}

func (q *Model) JacStructure(rows, cols []int) error {
	return q.inner.JacStructure(rows, cols)
}

func (q *Model) JacCoord(x, vals []float64) error {
	switch {
	case len(x) != q.meta.NVar:
		return model.DimCheck("jac_coord", "x", q.meta.NVar, len(x))
	case len(vals) != q.meta.NnzJ:
		return model.DimCheck("jac_coord", "vals", q.meta.NnzJ, len(vals))
	}
	q.count.Jac++
	return q.inner.JacCoord(x, vals)
}

func (q *Model) Jprod(x, v, jv []float64) error {
	switch {
	case len(x) != q.meta.NVar:
		return model.DimCheck("jprod", "x", q.meta.NVar, len(x))
	case len(v) != q.meta.NVar:
		return model.DimCheck("jprod", "v", q.meta.NVar, len(v))
	case len(jv) != q.meta.NCon:
		return model.DimCheck("jprod", "jv", q.meta.NCon, len(jv))
	}
	q.count.Jprod++
	return q.inner.Jprod(x, v, jv)
}

func (q *Model) Jtprod(x, v, jtv []float64) error {
	switch {
	case len(x) != q.meta.NVar:
		return model.DimCheck("jtprod", "x", q.meta.NVar, len(x))
	case len(v) != q.meta.NCon:
		return model.DimCheck("jtprod", "v", q.meta.NCon, len(v))
	case len(jtv) != q.meta.NVar:
		return model.DimCheck("jtprod", "jtv", q.meta.NVar, len(jtv))
	}
	q.count.Jtprod++
	return q.inner.Jtprod(x, v, jtv)
}

func (q *Model) HessStructure(rows, cols []int) error {
	return model.Unsupported("hess_structure", q.meta.Name)
}

func (q *Model) HessCoord(x, y []float64, objWeight float64, vals []float64) error {
	return model.Unsupported("hess_coord", q.meta.Name)
}

func (q *Model) Hprod(x, y, v []float64, objWeight float64, hv []float64) error {
	switch {
	case len(x) != q.meta.NVar:
		return model.DimCheck("hprod", "x", q.meta.NVar, len(x))
	case len(y) != q.meta.NCon:
		return model.DimCheck("hprod", "y", q.meta.NCon, len(y))
	case len(v) != q.meta.NVar:
		return model.DimCheck("hprod", "v", q.meta.NVar, len(v))
	case len(hv) != q.meta.NVar:
		return model.DimCheck("hprod", "hv", q.meta.NVar, len(hv))
	}
	q.count.Hprod++
	return q.op.Apply(v, hv)
}
