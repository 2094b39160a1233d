// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slack

import (
	"github.com/curioloop/nlpforms/model"
)

// NLS is the slack transformation of a least-squares model. Slacks only
// affect the constraint set, so every residual query forwards to the base
// model over the leading variables; the residual map and its sparsity are
// untouched.
type NLS struct {
	Model
	nlsInner model.NLSModel
	nlsMeta  model.NLSMeta
}

// NewNLS wraps the least-squares model nls.
// If name is empty the base name gets a "-slack" suffix.
func NewNLS(nls model.NLSModel, name string) (*NLS, error) {
	base, err := New(nls, name)
	if err != nil {
		return nil, err
	}
	bm := nls.NLSMeta()
	nlsMeta := model.NLSMeta{
		NEqu: bm.NEqu,
		NnzJ: bm.NnzJ,
		NnzH: bm.NnzH,
		Lin:  append([]int(nil), bm.Lin...),
		Nln:  append([]int(nil), bm.Nln...),
	}
	return &NLS{Model: *base, nlsInner: nls, nlsMeta: nlsMeta}, nil
}

func (s *NLS) NLSMeta() *model.NLSMeta { return &s.nlsMeta }

func (s *NLS) Residual(x, fx []float64) error {
	switch {
	case len(x) != s.meta.NVar:
		return model.DimCheck("residual", "x", s.meta.NVar, len(x))
	case len(fx) != s.nlsMeta.NEqu:
		return model.DimCheck("residual", "fx", s.nlsMeta.NEqu, len(fx))
	}
	s.count.Residual++
	return s.nlsInner.Residual(x[:s.n], fx)
}

func (s *NLS) ResJacStructure(rows, cols []int) error {
	switch {
	case len(rows) != s.nlsMeta.NnzJ:
		return model.DimCheck("res_jac_structure", "rows", s.nlsMeta.NnzJ, len(rows))
	case len(cols) != s.nlsMeta.NnzJ:
		return model.DimCheck("res_jac_structure", "cols", s.nlsMeta.NnzJ, len(cols))
	}
	return s.nlsInner.ResJacStructure(rows, cols)
}

func (s *NLS) ResJacCoord(x, vals []float64) error {
	switch {
	case len(x) != s.meta.NVar:
		return model.DimCheck("res_jac_coord", "x", s.meta.NVar, len(x))
	case len(vals) != s.nlsMeta.NnzJ:
		return model.DimCheck("res_jac_coord", "vals", s.nlsMeta.NnzJ, len(vals))
	}
	s.count.ResJac++
	return s.nlsInner.ResJacCoord(x[:s.n], vals)
}

func (s *NLS) ResJprod(x, v, jv []float64) error {
	switch {
	case len(x) != s.meta.NVar:
		return model.DimCheck("res_jprod", "x", s.meta.NVar, len(x))
	case len(v) != s.meta.NVar:
		return model.DimCheck("res_jprod", "v", s.meta.NVar, len(v))
	case len(jv) != s.nlsMeta.NEqu:
		return model.DimCheck("res_jprod", "jv", s.nlsMeta.NEqu, len(jv))
	}
	s.count.ResJprod++
	return s.nlsInner.ResJprod(x[:s.n], v[:s.n], jv)
}

func (s *NLS) ResJtprod(x, v, jtv []float64) error {
	switch {
	case len(x) != s.meta.NVar:
		return model.DimCheck("res_jtprod", "x", s.meta.NVar, len(x))
	case len(v) != s.nlsMeta.NEqu:
		return model.DimCheck("res_jtprod", "v", s.nlsMeta.NEqu, len(v))
	case len(jtv) != s.meta.NVar:
		return model.DimCheck("res_jtprod", "jtv", s.meta.NVar, len(jtv))
	}
	s.count.ResJtprod++
	if err := s.nlsInner.ResJtprod(x[:s.n], v, jtv[:s.n]); err != nil {
		return err
	}
	model.Fill(jtv[s.n:], 0)
	return nil
}

func (s *NLS) ResHessStructure(rows, cols []int) error {
	switch {
	case len(rows) != s.nlsMeta.NnzH:
		return model.DimCheck("res_hess_structure", "rows", s.nlsMeta.NnzH, len(rows))
	case len(cols) != s.nlsMeta.NnzH:
		return model.DimCheck("res_hess_structure", "cols", s.nlsMeta.NnzH, len(cols))
	}
	return s.nlsInner.ResHessStructure(rows, cols)
}

func (s *NLS) ResHessCoord(x, w, vals []float64) error {
	switch {
	case len(x) != s.meta.NVar:
		return model.DimCheck("res_hess_coord", "x", s.meta.NVar, len(x))
	case len(w) != s.nlsMeta.NEqu:
		return model.DimCheck("res_hess_coord", "w", s.nlsMeta.NEqu, len(w))
	case len(vals) != s.nlsMeta.NnzH:
		return model.DimCheck("res_hess_coord", "vals", s.nlsMeta.NnzH, len(vals))
	}
	s.count.ResHess++
	return s.nlsInner.ResHessCoord(x[:s.n], w, vals)
}

func (s *NLS) ResHprod(x, w, v, hv []float64) error {
	switch {
	case len(x) != s.meta.NVar:
		return model.DimCheck("res_hprod", "x", s.meta.NVar, len(x))
	case len(w) != s.nlsMeta.NEqu:
		return model.DimCheck("res_hprod", "w", s.nlsMeta.NEqu, len(w))
	case len(v) != s.meta.NVar:
		return model.DimCheck("res_hprod", "v", s.meta.NVar, len(v))
	case len(hv) != s.meta.NVar:
		return model.DimCheck("res_hprod", "hv", s.meta.NVar, len(hv))
	}
	s.count.ResHprod++
	if err := s.nlsInner.ResHprod(x[:s.n], w, v[:s.n], hv[:s.n]); err != nil {
		return err
	}
	model.Fill(hv[s.n:], 0)
	return nil
}
