// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package slack converts the inequality constraints of a model into
// equalities by introducing one bounded slack variable per inequality row:
//
//	𝒄ₗ ≤ 𝒄ⱼ(𝐱) ≤ 𝒄ᵤ  becomes  𝒄ⱼ(𝐱) - 𝐬ⱼ = 0 with 𝒄ₗ ≤ 𝐬ⱼ ≤ 𝒄ᵤ
//
// Slack variables are appended after the original variables in ascending
// constraint row order, and constraint rows keep their original positions.
// The same indexing is used by every structure and value query for the
// lifetime of the model. Equality rows and free rows are left untouched.
package slack

import (
	"math"

	"github.com/curioloop/nlpforms/model"
)

// Model wraps a base model with slack variables for its inequality rows.
// Slacks never enter the objective or the Hessian: the objective, gradient
// and Hessian blocks of the base model are reused verbatim over the leading
// variables, and each slack contributes a single -1 Jacobian entry on its
// row.
type Model struct {
	meta  model.Meta
	count model.Counters
	inner model.Model

	n, m  int   // base dimensions
	rowOf []int // slack k -> constraint row, ascending
}

// New wraps nlp. If name is empty the base name gets a "-slack" suffix.
// A base model without inequality rows yields a zero-slack wrapper with
// unchanged shape.
func New(nlp model.Model, name string) (*Model, error) {
	bm := nlp.Meta()

	var rowOf []int
	for j := 0; j < bm.NCon; j++ {
		l, u := bm.LCon[j], bm.UCon[j]
		// a free row has no finite bound to move onto a slack
		if l < u && !(math.IsInf(l, -1) && math.IsInf(u, 1)) {
			rowOf = append(rowOf, j)
		}
	}
	ns := len(rowOf)

	if name == "" {
		name = bm.Name + "-slack"
	}

	nvar := bm.NVar + ns
	meta := model.Meta{
		Name: name,
		NVar: nvar,
		NCon: bm.NCon,
		X0:   make([]float64, nvar),
		LVar: make([]float64, nvar),
		UVar: make([]float64, nvar),
		Y0:   append([]float64(nil), bm.Y0...),
		LCon: append([]float64(nil), bm.LCon...),
		UCon: append([]float64(nil), bm.UCon...),
		NnzJ: bm.NnzJ + ns,
		NnzH: bm.NnzH,
		Lin:  append([]int(nil), bm.Lin...),
		Nln:  append([]int(nil), bm.Nln...),
	}
	copy(meta.X0, bm.X0)
	copy(meta.LVar, bm.LVar)
	copy(meta.UVar, bm.UVar)
	for k, j := range rowOf {
		meta.LVar[bm.NVar+k] = bm.LCon[j]
		meta.UVar[bm.NVar+k] = bm.UCon[j]
		meta.X0[bm.NVar+k] = clampZero(bm.LCon[j], bm.UCon[j])
		meta.LCon[j], meta.UCon[j] = 0, 0
	}

	if err := meta.Validate(); err != nil {
		return nil, err
	}

	return &Model{
		meta:  meta,
		inner: nlp,
		n:     bm.NVar,
		m:     bm.NCon,
		rowOf: rowOf,
	}, nil
}

// clampZero projects 0 into [l,u], the start value of a slack variable.
func clampZero(l, u float64) float64 {
	switch {
	case !math.IsInf(l, -1) && l > 0:
		return l
	case !math.IsInf(u, 1) && u < 0:
		return u
	}
	return 0
}

func (s *Model) Meta() *model.Meta         { return &s.meta }
func (s *Model) Counters() *model.Counters { return &s.count }

// Inner returns the wrapped model.
func (s *Model) Inner() model.Model { return s.inner }

// Close releases the wrapped model.
func (s *Model) Close() error { return s.inner.Close() }

func (s *Model) Obj(x []float64) (float64, error) {
	if err := model.DimCheck("obj", "x", s.meta.NVar, len(x)); err != nil {
		return 0, err
	}
	s.count.Obj++
	return s.inner.Obj(x[:s.n])
}

func (s *Model) Grad(x, g []float64) error {
	switch {
	case len(x) != s.meta.NVar:
		return model.DimCheck("grad", "x", s.meta.NVar, len(x))
	case len(g) != s.meta.NVar:
		return model.DimCheck("grad", "g", s.meta.NVar, len(g))
	}
	s.count.Grad++
	if err := s.inner.Grad(x[:s.n], g[:s.n]); err != nil {
		return err
	}
	model.Fill(g[s.n:], 0)
	return nil
}

func (s *Model) Cons(x, c []float64) error {
	switch {
	case len(x) != s.meta.NVar:
		return model.DimCheck("cons", "x", s.meta.NVar, len(x))
	case len(c) != s.m:
		return model.DimCheck("cons", "c", s.m, len(c))
	}
	s.count.Cons++
	if err := s.inner.Cons(x[:s.n], c); err != nil {
		return err
	}
	for k, j := range s.rowOf {
		c[j] -= x[s.n+k]
	}
	return nil
}

func (s *Model) JacStructure(rows, cols []int) error {
	switch {
	case len(rows) != s.meta.NnzJ:
		return model.DimCheck("jac_structure", "rows", s.meta.NnzJ, len(rows))
	case len(cols) != s.meta.NnzJ:
		return model.DimCheck("jac_structure", "cols", s.meta.NnzJ, len(cols))
	}
	bn := s.inner.Meta().NnzJ
	if err := s.inner.JacStructure(rows[:bn], cols[:bn]); err != nil {
		return err
	}
	for k, j := range s.rowOf {
		rows[bn+k] = j
		cols[bn+k] = s.n + k
	}
	return nil
}

func (s *Model) JacCoord(x, vals []float64) error {
	switch {
	case len(x) != s.meta.NVar:
		return model.DimCheck("jac_coord", "x", s.meta.NVar, len(x))
	case len(vals) != s.meta.NnzJ:
		return model.DimCheck("jac_coord", "vals", s.meta.NnzJ, len(vals))
	}
	s.count.Jac++
	bn := s.inner.Meta().NnzJ
	if err := s.inner.JacCoord(x[:s.n], vals[:bn]); err != nil {
		return err
	}
	model.Fill(vals[bn:], -1)
	return nil
}

func (s *Model) Jprod(x, v, jv []float64) error {
	switch {
	case len(x) != s.meta.NVar:
		return model.DimCheck("jprod", "x", s.meta.NVar, len(x))
	case len(v) != s.meta.NVar:
		return model.DimCheck("jprod", "v", s.meta.NVar, len(v))
	case len(jv) != s.m:
		return model.DimCheck("jprod", "jv", s.m, len(jv))
	}
	s.count.Jprod++
	if err := s.inner.Jprod(x[:s.n], v[:s.n], jv); err != nil {
		return err
	}
	for k, j := range s.rowOf {
		jv[j] -= v[s.n+k]
	}
	return nil
}

func (s *Model) Jtprod(x, v, jtv []float64) error {
	switch {
	case len(x) != s.meta.NVar:
		return model.DimCheck("jtprod", "x", s.meta.NVar, len(x))
	case len(v) != s.m:
		return model.DimCheck("jtprod", "v", s.m, len(v))
	case len(jtv) != s.meta.NVar:
		return model.DimCheck("jtprod", "jtv", s.meta.NVar, len(jtv))
	}
	s.count.Jtprod++
	if err := s.inner.Jtprod(x[:s.n], v, jtv[:s.n]); err != nil {
		return err
	}
	for k, j := range s.rowOf {
		jtv[s.n+k] = -v[j]
	}
	return nil
}

func (s *Model) HessStructure(rows, cols []int) error {
	switch {
	case len(rows) != s.meta.NnzH:
		return model.DimCheck("hess_structure", "rows", s.meta.NnzH, len(rows))
	case len(cols) != s.meta.NnzH:
		return model.DimCheck("hess_structure", "cols", s.meta.NnzH, len(cols))
	}
	return s.inner.HessStructure(rows, cols)
}

func (s *Model) HessCoord(x, y []float64, objWeight float64, vals []float64) error {
	switch {
	case len(x) != s.meta.NVar:
		return model.DimCheck("hess_coord", "x", s.meta.NVar, len(x))
	case len(y) != s.m:
		return model.DimCheck("hess_coord", "y", s.m, len(y))
	case len(vals) != s.meta.NnzH:
		return model.DimCheck("hess_coord", "vals", s.meta.NnzH, len(vals))
	}
	s.count.Hess++
	return s.inner.HessCoord(x[:s.n], y, objWeight, vals)
}

func (s *Model) Hprod(x, y, v []float64, objWeight float64, hv []float64) error {
	switch {
	case len(x) != s.meta.NVar:
		return model.DimCheck("hprod", "x", s.meta.NVar, len(x))
	case len(y) != s.m:
		return model.DimCheck("hprod", "y", s.m, len(y))
	case len(v) != s.meta.NVar:
		return model.DimCheck("hprod", "v", s.meta.NVar, len(v))
	case len(hv) != s.meta.NVar:
		return model.DimCheck("hprod", "hv", s.meta.NVar, len(hv))
	}
	s.count.Hprod++
	if err := s.inner.Hprod(x[:s.n], y, v[:s.n], objWeight, hv[:s.n]); err != nil {
		return err
	}
	model.Fill(hv[s.n:], 0)
	return nil
}
