// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package model defines the query contract shared by nonlinear optimization
// models and the coordinate-format bookkeeping used to compose them.
//
// A Model answers first and second order queries about a problem
//
//	minimize 𝒇(𝐱) subject to 𝒄ₗ ≤ 𝒄(𝐱) ≤ 𝒄ᵤ and 𝒍 ≤ 𝐱 ≤ 𝒖
//
// and an NLSModel additionally exposes the residual map 𝐅(𝐱) of a
// least-squares objective 𝒇(𝐱) = ½‖𝐅(𝐱)‖².
//
// Sparse matrices use coordinate (triplet) format: a structure query reports
// parallel row/column index slices whose pattern is fixed for the lifetime of
// the model instance, and a coordinate query fills a value slice positionally
// aligned with that pattern. Duplicate (row,col) pairs are legal and sum.
// Hessians report the lower triangle only.
package model

// Model is the capability contract every base or composed optimization model
// satisfies. All slices are caller-owned; implementations never retain them.
// Every query checks its argument lengths against the model's Meta before
// computing and reports ErrDimension on mismatch.
type Model interface {
	// Meta returns the shape descriptor of the model.
	// The returned value is shared and must not be mutated by callers.
	Meta() *Meta
	// Counters returns the mutable per-query diagnostic record of this
	// model instance.
	Counters() *Counters

	// Obj evaluates the objective 𝒇(𝐱).
	Obj(x []float64) (float64, error)
	// Grad evaluates the objective gradient 𝜵𝒇(𝐱) into g.
	Grad(x, g []float64) error
	// Cons evaluates the constraint body 𝒄(𝐱) into c.
	Cons(x, c []float64) error

	// JacStructure writes the fixed sparsity pattern of the constraint
	// Jacobian into rows and cols (each of length Meta().NnzJ).
	JacStructure(rows, cols []int) error
	// JacCoord evaluates the constraint Jacobian values at x, positionally
	// aligned with JacStructure.
	JacCoord(x, vals []float64) error
	// Jprod computes jv = 𝜵𝒄(𝐱)·v.
	Jprod(x, v, jv []float64) error
	// Jtprod computes jtv = 𝜵𝒄(𝐱)ᵀ·v.
	Jtprod(x, v, jtv []float64) error

	// HessStructure writes the fixed lower-triangle sparsity pattern of the
	// Lagrangian Hessian into rows and cols (each of length Meta().NnzH).
	HessStructure(rows, cols []int) error
	// HessCoord evaluates the lower triangle of
	// objWeight·𝜵²𝒇(𝐱) + ∑yⱼ𝜵²𝒄ⱼ(𝐱), positionally aligned with HessStructure.
	// y has length NCon.
	HessCoord(x, y []float64, objWeight float64, vals []float64) error
	// Hprod computes hv = (objWeight·𝜵²𝒇(𝐱) + ∑yⱼ𝜵²𝒄ⱼ(𝐱))·v.
	Hprod(x, y, v []float64, objWeight float64, hv []float64) error

	// Close releases any resource held by the model. Composed models close
	// their wrapped model exactly once.
	Close() error
}

// NLSModel is a Model whose objective is a least-squares functional.
// The residual queries are scoped by NLSMeta: the residual has NEqu
// components and its own Jacobian/Hessian sparsity.
type NLSModel interface {
	Model

	// NLSMeta returns the residual-map shape descriptor.
	NLSMeta() *NLSMeta

	// Residual evaluates 𝐅(𝐱) into fx (length NEqu).
	Residual(x, fx []float64) error
	// ResJacStructure writes the fixed sparsity pattern of 𝜵𝐅(𝐱)
	// (NLSMeta().NnzJ entries).
	ResJacStructure(rows, cols []int) error
	// ResJacCoord evaluates the residual Jacobian values at x.
	ResJacCoord(x, vals []float64) error
	// ResJprod computes jv = 𝜵𝐅(𝐱)·v.
	ResJprod(x, v, jv []float64) error
	// ResJtprod computes jtv = 𝜵𝐅(𝐱)ᵀ·v.
	ResJtprod(x, v, jtv []float64) error

	// ResHessStructure writes the fixed lower-triangle pattern of
	// ∑wᵢ𝜵²𝐅ᵢ(𝐱) (NLSMeta().NnzH entries).
	ResHessStructure(rows, cols []int) error
	// ResHessCoord evaluates the lower triangle of ∑wᵢ𝜵²𝐅ᵢ(𝐱) where w has
	// length NEqu.
	ResHessCoord(x, w, vals []float64) error
	// ResHprod computes hv = (∑wᵢ𝜵²𝐅ᵢ(𝐱))·v.
	ResHprod(x, w, v, hv []float64) error
}
