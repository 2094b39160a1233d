// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package qnewton substitutes a limited-memory secant approximation for the
// true Hessian of a model while forwarding every other query to the wrapped
// model unchanged.
package qnewton

import (
	"errors"
	"math"

	"github.com/curioloop/nlpforms/model"
	"gonum.org/v1/gonum/floats"
)

var sqrtEps = math.Sqrt(math.Nextafter(1, 2) - 1)

// Operator is a mutable limited-memory approximation of a Hessian. It has
// two logical states: empty, where it acts as the scaled identity σ𝐈, and
// populated, after at least one accepted curvature pair. Reset returns it
// to empty.
type Operator interface {
	// Dim returns the operand dimension.
	Dim() int
	// Apply computes bv = 𝐁·v for the current approximation 𝐁.
	Apply(v, bv []float64) error
	// Push records the curvature pair (𝐬,𝐲) = (𝐱ₖ₊₁-𝐱ₖ, 𝜵ℒₖ₊₁-𝜵ℒₖ) and
	// reports whether the pair was accepted.
	Push(s, y []float64) bool
	// Reset discards the secant memory.
	Reset()
}

// secantPair is one recorded (𝐬,𝐲) observation.
type secantPair struct {
	s, y []float64
}

// LBFGS is a forward limited-memory BFGS approximation
//
//	𝐁 = σ𝐈 + ∑ 𝐛ᵢ𝐛ᵢᵀ - 𝐚ᵢ𝐚ᵢᵀ
//
// where 𝐛ᵢ = 𝐲ᵢ/(𝐲ᵢᵀ𝐬ᵢ)¹ᐟ² and 𝐚ᵢ = 𝐁ᵢ𝐬ᵢ/(𝐬ᵢᵀ𝐁ᵢ𝐬ᵢ)¹ᐟ² with 𝐁ᵢ the
// approximation built from the pairs preceding i. Pairs are kept in a ring
// of size mem and must satisfy the curvature condition 𝐲ᵀ𝐬 > 𝛆‖𝐲‖‖𝐬‖; the
// rank-update vectors are rebuilt from the ring on every push, mirroring
// the reset-and-recompose discipline of damped BFGS updates.
type LBFGS struct {
	n, mem int
	scale  float64
	pairs  []secantPair
	a, b   [][]float64
}

// NewLBFGS creates an empty operator of dimension n holding at most mem
// pairs. The empty state acts as the identity.
func NewLBFGS(n, mem int) (*LBFGS, error) {
	switch {
	case n <= 0:
		return nil, errors.New("operator dimension must greater than 0")
	case mem <= 0:
		return nil, errors.New("correction number must greater than 0")
	}
	return &LBFGS{n: n, mem: mem, scale: 1}, nil
}

func (op *LBFGS) Dim() int { return op.n }

func (op *LBFGS) Reset() {
	op.pairs, op.a, op.b = nil, nil, nil
}

func (op *LBFGS) Apply(v, bv []float64) error {
	switch {
	case len(v) != op.n:
		return model.DimCheck("secant apply", "v", op.n, len(v))
	case len(bv) != op.n:
		return model.DimCheck("secant apply", "bv", op.n, len(bv))
	}
	op.applyTo(v, bv)
	return nil
}

func (op *LBFGS) applyTo(v, bv []float64) {
	for i := range bv {
		bv[i] = op.scale * v[i]
	}
	for i, a := range op.a {
		b := op.b[i]
		floats.AddScaled(bv, floats.Dot(b, v), b)
		floats.AddScaled(bv, -floats.Dot(a, v), a)
	}
}

func (op *LBFGS) Push(s, y []float64) bool {
	if len(s) != op.n || len(y) != op.n {
		panic("curvature pair dimension not match operator")
	}
	ys := floats.Dot(y, s)
	if ys <= sqrtEps*floats.Norm(y, 2)*floats.Norm(s, 2) {
		return false
	}
	pair := secantPair{
		s: append([]float64(nil), s...),
		y: append([]float64(nil), y...),
	}
	op.pairs = append(op.pairs, pair)
	if len(op.pairs) > op.mem {
		op.pairs = op.pairs[1:]
	}
	op.rebuild()
	return true
}

// rebuild recomputes the rank-update vectors from the pair ring. A pair
// whose curvature is lost against the partial approximation is dropped,
// which keeps 𝐁 positive definite.
func (op *LBFGS) rebuild() {
	op.a, op.b = op.a[:0], op.b[:0]
	kept := op.pairs[:0]
	for _, p := range op.pairs {
		u := make([]float64, op.n)
		op.applyTo(p.s, u)
		su := floats.Dot(p.s, u)
		if su <= 0 {
			continue
		}
		a := u
		floats.Scale(1/math.Sqrt(su), a)
		b := append([]float64(nil), p.y...)
		floats.Scale(1/math.Sqrt(floats.Dot(p.y, p.s)), b)
		kept = append(kept, p)
		op.a = append(op.a, a)
		op.b = append(op.b, b)
	}
	op.pairs = kept
}

// LSR1 is a limited-memory symmetric rank-one approximation
//
//	𝐁 = σ𝐈 + ∑ 𝐮ᵢ𝐮ᵢᵀ/(𝐮ᵢᵀ𝐬ᵢ)  with  𝐮ᵢ = 𝐲ᵢ - 𝐁ᵢ𝐬ᵢ
//
// SR1 does not preserve definiteness but can capture indefinite curvature;
// a pair is kept only under the standard guard |𝐮ᵀ𝐬| > 𝛆‖𝐮‖‖𝐬‖.
type LSR1 struct {
	n, mem int
	scale  float64
	pairs  []secantPair
	u      [][]float64
	d      []float64
}

// NewLSR1 creates an empty operator of dimension n holding at most mem
// pairs. The empty state acts as the identity.
func NewLSR1(n, mem int) (*LSR1, error) {
	switch {
	case n <= 0:
		return nil, errors.New("operator dimension must greater than 0")
	case mem <= 0:
		return nil, errors.New("correction number must greater than 0")
	}
	return &LSR1{n: n, mem: mem, scale: 1}, nil
}

func (op *LSR1) Dim() int { return op.n }

func (op *LSR1) Reset() {
	op.pairs, op.u, op.d = nil, nil, nil
}

func (op *LSR1) Apply(v, bv []float64) error {
	switch {
	case len(v) != op.n:
		return model.DimCheck("secant apply", "v", op.n, len(v))
	case len(bv) != op.n:
		return model.DimCheck("secant apply", "bv", op.n, len(bv))
	}
	op.applyTo(v, bv)
	return nil
}

func (op *LSR1) applyTo(v, bv []float64) {
	for i := range bv {
		bv[i] = op.scale * v[i]
	}
	for i, u := range op.u {
		floats.AddScaled(bv, floats.Dot(u, v)/op.d[i], u)
	}
}

func (op *LSR1) Push(s, y []float64) bool {
	if len(s) != op.n || len(y) != op.n {
		panic("curvature pair dimension not match operator")
	}
	op.pairs = append(op.pairs, secantPair{
		s: append([]float64(nil), s...),
		y: append([]float64(nil), y...),
	})
	if len(op.pairs) > op.mem {
		op.pairs = op.pairs[1:]
	}
	return op.rebuild()
}

// rebuild recomputes the update vectors from the pair ring and reports
// whether the newest pair passed the SR1 acceptance guard.
func (op *LSR1) rebuild() bool {
	op.u, op.d = op.u[:0], op.d[:0]
	kept := op.pairs[:0]
	last := false
	for i, p := range op.pairs {
		u := make([]float64, op.n)
		op.applyTo(p.s, u)
		floats.Scale(-1, u)
		floats.Add(u, p.y) // 𝐮 = 𝐲 - 𝐁ᵢ𝐬
		ds := floats.Dot(u, p.s)
		if math.Abs(ds) <= sqrtEps*floats.Norm(u, 2)*floats.Norm(p.s, 2) {
			continue
		}
		kept = append(kept, p)
		op.u = append(op.u, u)
		op.d = append(op.d, ds)
		last = i == len(op.pairs)-1
	}
	op.pairs = kept
	return last
}
