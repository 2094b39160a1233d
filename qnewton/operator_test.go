// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qnewton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestNewOperatorErrors(t *testing.T) {
	_, err := NewLBFGS(0, 5)
	assert.Error(t, err)
	_, err = NewLBFGS(3, 0)
	assert.Error(t, err)
	_, err = NewLSR1(-1, 5)
	assert.Error(t, err)
	_, err = NewLSR1(3, 0)
	assert.Error(t, err)
}

func TestLBFGSEmptyIdentity(t *testing.T) {
	op, err := NewLBFGS(3, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, op.Dim())

	v := []float64{1, -2, 0.5}
	bv := make([]float64, 3)
	require.NoError(t, op.Apply(v, bv))
	assert.Equal(t, v, bv)
}

func TestLBFGSSecant(t *testing.T) {
	op, err := NewLBFGS(3, 5)
	require.NoError(t, err)

	s := []float64{1, 0.5, -0.25}
	y := []float64{2, 1, 0.5}
	require.True(t, op.Push(s, y))

	// the newest accepted pair satisfies 𝐁𝐬 = 𝐲
	bs := make([]float64, 3)
	require.NoError(t, op.Apply(s, bs))
	assert.InDeltaSlice(t, y, bs, 1e-12)

	s2 := []float64{-0.5, 1, 0.75}
	y2 := []float64{0.25, 2, 1}
	require.True(t, op.Push(s2, y2))
	require.NoError(t, op.Apply(s2, bs))
	assert.InDeltaSlice(t, y2, bs, 1e-12)
}

func TestLBFGSSymmetricPositive(t *testing.T) {
	op, err := NewLBFGS(3, 5)
	require.NoError(t, err)
	require.True(t, op.Push([]float64{1, 0.5, -0.25}, []float64{2, 1, 0.5}))
	require.True(t, op.Push([]float64{-0.5, 1, 0.75}, []float64{0.25, 2, 1}))

	u := []float64{0.3, -1.1, 0.7}
	v := []float64{-0.6, 0.2, 1.4}
	bu := make([]float64, 3)
	bv := make([]float64, 3)
	require.NoError(t, op.Apply(u, bu))
	require.NoError(t, op.Apply(v, bv))
	assert.InDelta(t, floats.Dot(v, bu), floats.Dot(u, bv), 1e-12)

	// BFGS with the curvature guard keeps 𝐁 positive definite
	for _, w := range [][]float64{u, v, {1, 0, 0}, {0, 0, 1}} {
		bw := make([]float64, 3)
		require.NoError(t, op.Apply(w, bw))
		assert.Greater(t, floats.Dot(w, bw), 0.0)
	}
}

func TestLBFGSRejectsNegativeCurvature(t *testing.T) {
	op, err := NewLBFGS(3, 5)
	require.NoError(t, err)

	s := []float64{1, 1, 1}
	y := []float64{-1, -1, -1}
	assert.False(t, op.Push(s, y))

	// a rejected pair leaves the operator untouched
	v := []float64{1, -2, 0.5}
	bv := make([]float64, 3)
	require.NoError(t, op.Apply(v, bv))
	assert.Equal(t, v, bv)
}

func TestLBFGSRingTrim(t *testing.T) {
	op, err := NewLBFGS(2, 1)
	require.NoError(t, err)

	require.True(t, op.Push([]float64{1, 0}, []float64{3, 0}))
	s2 := []float64{0, 1}
	y2 := []float64{0, 2}
	require.True(t, op.Push(s2, y2))

	// only the newest pair survives: the first direction relaxed back to σ
	bs := make([]float64, 2)
	require.NoError(t, op.Apply(s2, bs))
	assert.InDeltaSlice(t, y2, bs, 1e-12)
	require.NoError(t, op.Apply([]float64{1, 0}, bs))
	assert.InDeltaSlice(t, []float64{1, 0}, bs, 1e-12)
}

func TestLBFGSReset(t *testing.T) {
	op, err := NewLBFGS(3, 5)
	require.NoError(t, err)
	require.True(t, op.Push([]float64{1, 0.5, -0.25}, []float64{2, 1, 0.5}))

	op.Reset()
	v := []float64{1, -2, 0.5}
	bv := make([]float64, 3)
	require.NoError(t, op.Apply(v, bv))
	assert.Equal(t, v, bv)
}

func TestLSR1Secant(t *testing.T) {
	op, err := NewLSR1(3, 5)
	require.NoError(t, err)

	v := []float64{1, -2, 0.5}
	bv := make([]float64, 3)
	require.NoError(t, op.Apply(v, bv))
	assert.Equal(t, v, bv)

	s := []float64{1, 0.5, -0.25}
	y := []float64{2, 1, 0.5}
	require.True(t, op.Push(s, y))
	bs := make([]float64, 3)
	require.NoError(t, op.Apply(s, bs))
	assert.InDeltaSlice(t, y, bs, 1e-12)
}

func TestLSR1IndefiniteCurvature(t *testing.T) {
	op, err := NewLSR1(2, 5)
	require.NoError(t, err)

	// 𝐲ᵀ𝐬 < 0 is acceptable for SR1, unlike BFGS
	s := []float64{1, 0}
	y := []float64{-2, 1}
	require.True(t, op.Push(s, y))
	bs := make([]float64, 2)
	require.NoError(t, op.Apply(s, bs))
	assert.InDeltaSlice(t, y, bs, 1e-12)
	assert.Less(t, floats.Dot(s, bs), 0.0)
}

func TestLSR1RejectsDegeneratePair(t *testing.T) {
	op, err := NewLSR1(2, 5)
	require.NoError(t, err)

	// 𝐲 = 𝐁𝐬 makes 𝐮 vanish: nothing new to record
	s := []float64{1, 2}
	assert.False(t, op.Push(s, s))

	v := []float64{1, -2}
	bv := make([]float64, 2)
	require.NoError(t, op.Apply(v, bv))
	assert.Equal(t, v, bv)
}

func TestLSR1Reset(t *testing.T) {
	op, err := NewLSR1(3, 5)
	require.NoError(t, err)
	require.True(t, op.Push([]float64{1, 0.5, -0.25}, []float64{2, 1, 0.5}))

	op.Reset()
	v := []float64{1, -2, 0.5}
	bv := make([]float64, 3)
	require.NoError(t, op.Apply(v, bv))
	assert.Equal(t, v, bv)
}
