// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slack

import (
	"errors"
	"math"
	"testing"

	"github.com/curioloop/nlpforms/model"
	"github.com/curioloop/nlpforms/modeltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSlackMeta(t *testing.T) {
	base := modeltest.NewHS14()
	sm, err := New(base, "")
	require.NoError(t, err)
	meta := sm.Meta()

	// hs14 has one equality and one inequality row
	assert.Equal(t, "hs14-slack", meta.Name)
	assert.Equal(t, 3, meta.NVar)
	assert.Equal(t, 2, meta.NCon)
	assert.Equal(t, base.Meta().NnzJ+1, meta.NnzJ)
	assert.Equal(t, base.Meta().NnzH, meta.NnzH)

	// slack bounds equal the original constraint bounds
	assert.Equal(t, 0.0, meta.LVar[2])
	assert.True(t, math.IsInf(meta.UVar[2], 1))
	// every row is an equality now
	assert.Equal(t, []float64{0, 0}, meta.LCon)
	assert.Equal(t, []float64{0, 0}, meta.UCon)
	// linearity is untouched by slack substitution
	assert.Equal(t, base.Meta().Lin, meta.Lin)
	assert.Equal(t, base.Meta().Nln, meta.Nln)
}

func TestSlackNoInequality(t *testing.T) {
	base := modeltest.NewHS14()
	sm, err := New(base, "eq-only")
	require.NoError(t, err)

	// re-wrap the already-equality model: no new slack appears
	inner := sm.Meta()
	sm2, err := New(sm, "")
	require.NoError(t, err)
	assert.Equal(t, inner.NVar, sm2.Meta().NVar)
	assert.Equal(t, inner.NnzJ, sm2.Meta().NnzJ)
}

func TestSlackFreeRow(t *testing.T) {
	sm, err := New(freeRow{modeltest.NewHS14()}, "")
	require.NoError(t, err)
	meta := sm.Meta()

	// a free row gets no slack and keeps its infinite bounds
	assert.Equal(t, 2, meta.NVar)
	assert.Equal(t, 4, meta.NnzJ)
	assert.True(t, math.IsInf(meta.LCon[1], -1))
	assert.True(t, math.IsInf(meta.UCon[1], 1))
}

// freeRow lifts both bounds off the nonlinear row of the wrapped fixture.
type freeRow struct{ *modeltest.HS14 }

func (f freeRow) Meta() *model.Meta {
	m := *f.HS14.Meta()
	m.LCon = []float64{0, math.Inf(-1)}
	m.UCon = []float64{0, math.Inf(1)}
	return &m
}

func TestSlackQueries(t *testing.T) {
	base := modeltest.NewHS14()
	sm, err := New(base, "")
	require.NoError(t, err)
	meta := sm.Meta()
	n, m := meta.NVar, meta.NCon

	xb := []float64{1.2, 0.7}
	cb := make([]float64, 2)
	require.NoError(t, base.Cons(xb, cb))

	// with s = c(x) the converted rows vanish exactly
	x := []float64{xb[0], xb[1], cb[1]}
	c := make([]float64, m)
	require.NoError(t, sm.Cons(x, c))
	assert.Equal(t, cb[0], c[0]) // equality row untouched
	assert.Equal(t, 0.0, c[1])

	// objective and gradient ignore the slack segment
	fb, err := base.Obj(xb)
	require.NoError(t, err)
	f, err := sm.Obj(x)
	require.NoError(t, err)
	assert.Equal(t, fb, f)

	g := make([]float64, n)
	require.NoError(t, sm.Grad(x, g))
	gb := make([]float64, 2)
	require.NoError(t, base.Grad(xb, gb))
	assert.Equal(t, gb, g[:2])
	assert.Equal(t, 0.0, g[2])

	// structure is idempotent and value queries stay aligned with it
	rows := make([]int, meta.NnzJ)
	cols := make([]int, meta.NnzJ)
	require.NoError(t, sm.JacStructure(rows, cols))
	rows2 := make([]int, meta.NnzJ)
	cols2 := make([]int, meta.NnzJ)
	require.NoError(t, sm.JacStructure(rows2, cols2))
	assert.Equal(t, rows, rows2)
	assert.Equal(t, cols, cols2)

	vals := make([]float64, meta.NnzJ)
	require.NoError(t, sm.JacCoord(x, vals))
	jac := modeltest.DenseFromCoord(m, n, rows, cols, vals)

	v := []float64{0.5, -1, 2}
	jv := make([]float64, m)
	require.NoError(t, sm.Jprod(x, v, jv))
	var want mat.VecDense
	want.MulVec(jac, mat.NewVecDense(n, v))
	assert.InDeltaSlice(t, want.RawVector().Data, jv, 1e-14)

	w := []float64{1.5, -0.5}
	jtv := make([]float64, n)
	require.NoError(t, sm.Jtprod(x, w, jtv))
	want.Reset() // the product lengths differ
	want.MulVec(jac.T(), mat.NewVecDense(m, w))
	assert.InDeltaSlice(t, want.RawVector().Data, jtv, 1e-14)

	// Hessian block is the base block, slack rows carry no curvature
	hrows := make([]int, meta.NnzH)
	hcols := make([]int, meta.NnzH)
	hvals := make([]float64, meta.NnzH)
	require.NoError(t, sm.HessStructure(hrows, hcols))
	require.NoError(t, sm.HessCoord(x, w, 1.0, hvals))
	bvals := make([]float64, meta.NnzH)
	require.NoError(t, base.HessCoord(xb, w, 1.0, bvals))
	assert.Equal(t, bvals, hvals)

	hv := make([]float64, n)
	require.NoError(t, sm.Hprod(x, w, v, 1.0, hv))
	hess := modeltest.SymFromCoord(n, hrows, hcols, hvals)
	want.Reset()
	want.MulVec(hess, mat.NewVecDense(n, v))
	assert.InDeltaSlice(t, want.RawVector().Data, hv, 1e-14)
	assert.Equal(t, 0.0, hv[2])
}

func TestSlackDimension(t *testing.T) {
	sm, err := New(modeltest.NewHS14(), "")
	require.NoError(t, err)

	_, err = sm.Obj([]float64{1, 2}) // base length, not the extended one
	assert.True(t, errors.Is(err, model.ErrDimension))
	err = sm.JacStructure(make([]int, 4), make([]int, 5))
	assert.True(t, errors.Is(err, model.ErrDimension))
	err = sm.Cons(make([]float64, 3), make([]float64, 3))
	assert.True(t, errors.Is(err, model.ErrDimension))
}

func TestSlackNLS(t *testing.T) {
	base := modeltest.NewSampleNLS()
	sm, err := NewNLS(base, "")
	require.NoError(t, err)
	meta := sm.Meta()

	// rows 0, 2, 3, 4 are inequalities
	assert.Equal(t, 8, meta.NVar)
	assert.Equal(t, 5, meta.NCon)
	assert.Equal(t, 16, meta.NnzJ)
	assert.Equal(t, base.Meta().NnzH, meta.NnzH)

	// the residual map never sees the slack segment
	nm := sm.NLSMeta()
	assert.Equal(t, base.NLSMeta().NEqu, nm.NEqu)
	assert.Equal(t, base.NLSMeta().NnzJ, nm.NnzJ)
	assert.Equal(t, base.NLSMeta().NnzH, nm.NnzH)

	x := []float64{0.3, -0.7, 1.1, 0.4, 1, 2, 3, 4}
	fx := make([]float64, nm.NEqu)
	require.NoError(t, sm.Residual(x, fx))
	fb := make([]float64, nm.NEqu)
	require.NoError(t, base.Residual(x[:4], fb))
	assert.Equal(t, fb, fx)

	vals := make([]float64, nm.NnzJ)
	require.NoError(t, sm.ResJacCoord(x, vals))
	bvals := make([]float64, nm.NnzJ)
	require.NoError(t, base.ResJacCoord(x[:4], bvals))
	assert.Equal(t, bvals, vals)

	w := []float64{0.5, -2}
	jtv := make([]float64, meta.NVar)
	require.NoError(t, sm.ResJtprod(x, w, jtv))
	bjtv := make([]float64, 4)
	require.NoError(t, base.ResJtprod(x[:4], w, bjtv))
	assert.Equal(t, bjtv, jtv[:4])
	assert.Equal(t, []float64{0, 0, 0, 0}, jtv[4:])

	hv := make([]float64, meta.NVar)
	v := []float64{1, -1, 2, -2, 3, -3, 4, -4}
	require.NoError(t, sm.ResHprod(x, w, v, hv))
	bhv := make([]float64, 4)
	require.NoError(t, base.ResHprod(x[:4], w, v[:4], bhv))
	assert.Equal(t, bhv, hv[:4])
	assert.Equal(t, []float64{0, 0, 0, 0}, hv[4:])
}

func TestSlackClose(t *testing.T) {
	base := modeltest.NewHS14()
	sm, err := New(base, "")
	require.NoError(t, err)
	require.NoError(t, sm.Close())
	assert.Equal(t, 1, base.CloseCalls)
}
