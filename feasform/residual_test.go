// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feasform

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

func TestResidualMeta(t *testing.T) {
	fr, err := NewResidual(modeltest.NewHS14(), "")
	require.NoError(t, err)
	meta := fr.Meta()

	// hs14 has an inequality row, so a slack wrapper is introduced
	assert.Equal(t, "hs14-feasres", meta.Name)
	assert.Equal(t, 3, meta.NVar)
	assert.Equal(t, 0, meta.NCon)
	assert.Equal(t, 0, meta.NnzJ)
	assert.Equal(t, 6, meta.NnzH) // dense lower triangle

	nm := fr.NLSMeta()
	assert.Equal(t, 2, nm.NEqu)
	assert.Equal(t, 5, nm.NnzJ)
	assert.Equal(t, 2, nm.NnzH)
}

func TestResidualUnconstrained(t *testing.T) {
	_, err := NewResidual(boxOnly{modeltest.NewHS14()}, "")
	assert.True(t, errors.Is(err, model.ErrUnsupported))
}

func TestResidualFreeRow(t *testing.T) {
	_, err := NewResidual(freeRow{modeltest.NewHS14()}, "")
	assert.True(t, errors.Is(err, model.ErrUnsupported))
}

// freeRow lifts both bounds off the nonlinear row of the wrapped fixture.
type freeRow struct{ *modeltest.HS14 }

func (f freeRow) Meta() *model.Meta {
	m := *f.HS14.Meta()
	m.LCon = []float64{0, math.Inf(-1)}
	m.UCon = []float64{0, math.Inf(1)}
	return &m
}

// boxOnly hides the constraint rows of the wrapped fixture.
type boxOnly struct{ *modeltest.HS14 }

func (b boxOnly) Meta() *model.Meta {
	m := *b.HS14.Meta()
	m.NCon = 0
	m.Y0, m.LCon, m.UCon = []float64{}, []float64{}, []float64{}
	m.Lin, m.Nln = nil, nil
	m.NnzJ = 0
	return &m
}

func TestResidualValues(t *testing.T) {
	fr, err := NewResidual(modeltest.NewHS14(), "")
	require.NoError(t, err)

	x := []float64{1.2, 0.7, 0.5}
	fx := make([]float64, 2)
	require.NoError(t, fr.Residual(x, fx))
	// F₀ = x₀ - 2x₁ + 1, F₁ = -x₀²/4 - x₁² + 1 - s
	assert.InDelta(t, 0.8, fx[0], 1e-15)
	assert.InDelta(t, -0.35, fx[1], 1e-15)

	f, err := fr.Obj(x)
	require.NoError(t, err)
	assert.InDelta(t, 0.5*(fx[0]*fx[0]+fx[1]*fx[1]), f, 1e-15)

	// the constraint surface is empty
	require.NoError(t, fr.Cons(x, nil))
	require.NoError(t, fr.JacStructure(nil, nil))
	jtv := []float64{9, 9, 9}
	require.NoError(t, fr.Jtprod(x, nil, jtv))
	assert.Equal(t, []float64{0, 0, 0}, jtv)
}

func TestResidualDerivatives(t *testing.T) {
	fr, err := NewResidual(modeltest.NewHS14(), "")
	require.NoError(t, err)
	n := fr.Meta().NVar
	x := []float64{1.2, 0.7, 0.5}

	obj := func(z []float64) float64 {
		f, err := fr.Obj(z)
		require.NoError(t, err)
		return f
	}
	grad := func(z, g []float64) {
		require.NoError(t, fr.Grad(z, g))
	}

	g := make([]float64, n)
	require.NoError(t, fr.Grad(x, g))
	gd := make([]float64, n)
	modeltest.GradDiff(obj, x, gd)
	assert.InDeltaSlice(t, gd, g, 1e-6)

	rows := make([]int, fr.Meta().NnzH)
	cols := make([]int, fr.Meta().NnzH)
	vals := make([]float64, fr.Meta().NnzH)
	require.NoError(t, fr.HessStructure(rows, cols))
	require.NoError(t, fr.HessCoord(x, nil, 1.0, vals))
	hess := modeltest.SymFromCoord(n, rows, cols, vals)

	// 𝜵²(½‖𝐅‖²) = 𝐉ᵀ𝐉 + ∑𝐅ᵢ𝜵²𝒄ᵢ, checked against differentiated gradients
	hd := modeltest.JacDiff(grad, n, x)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			assert.InDelta(t, hd.At(i, j), hess.At(i, j), 1e-6)
		}
	}

	v := []float64{0.5, -1, 2}
	hv := make([]float64, n)
	ow := 0.75
	require.NoError(t, fr.Hprod(x, nil, v, ow, hv))
	require.NoError(t, fr.HessCoord(x, nil, ow, vals))
	scaled := modeltest.SymFromCoord(n, rows, cols, vals)
	var want mat.VecDense
	want.MulVec(scaled, mat.NewVecDense(n, v))
	assert.InDeltaSlice(t, want.RawVector().Data, hv, 1e-12)
}

func TestResidualResQueries(t *testing.T) {
	base := modeltest.NewHS14()
	fr, err := NewResidual(base, "")
	require.NoError(t, err)
	nm := fr.NLSMeta()
	n := fr.Meta().NVar

	rows := make([]int, nm.NnzJ)
	cols := make([]int, nm.NnzJ)
	vals := make([]float64, nm.NnzJ)
	require.NoError(t, fr.ResJacStructure(rows, cols))
	x := []float64{1.2, 0.7, 0.5}
	require.NoError(t, fr.ResJacCoord(x, vals))
	jac := modeltest.DenseFromCoord(nm.NEqu, n, rows, cols, vals)

	v := []float64{0.5, -1, 2}
	jv := make([]float64, nm.NEqu)
	require.NoError(t, fr.ResJprod(x, v, jv))
	var want mat.VecDense
	want.MulVec(jac, mat.NewVecDense(n, v))
	assert.InDeltaSlice(t, want.RawVector().Data, jv, 1e-14)

	w := []float64{1.5, -0.5}
	jtv := make([]float64, n)
	require.NoError(t, fr.ResJtprod(x, w, jtv))
	want.Reset() // the product lengths differ
	want.MulVec(jac.T(), mat.NewVecDense(nm.NEqu, w))
	assert.InDeltaSlice(t, want.RawVector().Data, jtv, 1e-14)

	// residual Hessian is the base constraint curvature at weights w
	hvals := make([]float64, nm.NnzH)
	require.NoError(t, fr.ResHessCoord(x, w, hvals))
	assert.Equal(t, []float64{-w[1] / 2, -2 * w[1]}, hvals)
}

func TestResidualRewrap(t *testing.T) {
	base := modeltest.NewSampleNLS()
	fr, err := NewResidual(base, "")
	require.NoError(t, err)
	ff, err := New(fr, "")
	require.NoError(t, err)
	meta := ff.Meta()

	// four slacks, five auxiliary variables; no base constraint block
	assert.Equal(t, 13, meta.NVar)
	assert.Equal(t, 5, meta.NCon)
	assert.Equal(t, 21, meta.NnzJ)
	assert.Equal(t, 12, meta.NnzH)

	rows := make([]int, meta.NnzJ)
	cols := make([]int, meta.NnzJ)
	vals := make([]float64, meta.NnzJ)
	require.NoError(t, ff.JacStructure(rows, cols))
	x := make([]float64, meta.NVar)
	copy(x, meta.X0)
	require.NoError(t, ff.JacCoord(x, vals))
	jac := modeltest.DenseFromCoord(meta.NCon, meta.NVar, rows, cols, vals)

	v := make([]float64, meta.NVar)
	for i := range v {
		v[i] = float64(i%3) - 1
	}
	jv := make([]float64, meta.NCon)
	require.NoError(t, ff.Jprod(x, v, jv))
	var want mat.VecDense
	want.MulVec(jac, mat.NewVecDense(meta.NVar, v))
	assert.InDeltaSlice(t, want.RawVector().Data, jv, 1e-13)

	require.NoError(t, ff.Close())
	assert.Equal(t, 1, base.CloseCalls)
}

func TestResidualClose(t *testing.T) {
	base := modeltest.NewHS14()
	fr, err := NewResidual(base, "")
	require.NoError(t, err)
	require.NoError(t, fr.Close())
	assert.Equal(t, 1, base.CloseCalls)
}
