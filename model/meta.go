// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"errors"
	"fmt"
)

// Meta is the immutable shape descriptor of an optimization model:
// dimensions, bounds, start point and the structural non-zero counts of the
// constraint Jacobian and the Lagrangian Hessian lower triangle.
//
// NnzJ and NnzH must equal the exact number of entries reported by the
// corresponding structure query and stay fixed for the model's lifetime:
// structure is queried once and reused, and value slices always align
// positionally with the structure previously returned.
//
// Lin and Nln hold the 0-based indices of the linear and nonlinear
// constraint rows and together partition 0..NCon-1.
type Meta struct {
	Name string

	NVar int
	NCon int

	X0   []float64 // NVar
	LVar []float64 // NVar
	UVar []float64 // NVar

	Y0   []float64 // NCon
	LCon []float64 // NCon
	UCon []float64 // NCon

	NnzJ int
	NnzH int

	Lin []int
	Nln []int
}

// Validate checks the internal consistency of the descriptor.
func (m *Meta) Validate() (err error) {
	switch {
	case m.NVar <= 0:
		err = errors.New("number of variables must greater than 0")
	case m.NCon < 0:
		err = errors.New("number of constraints must not less than 0")
	case m.NnzJ < 0 || m.NnzH < 0:
		err = errors.New("non-zero counts must not less than 0")
	case len(m.X0) != m.NVar || len(m.LVar) != m.NVar || len(m.UVar) != m.NVar:
		err = errors.New("variable vectors size must equal to nvar")
	case len(m.Y0) != m.NCon || len(m.LCon) != m.NCon || len(m.UCon) != m.NCon:
		err = errors.New("constraint vectors size must equal to ncon")
	case len(m.Lin)+len(m.Nln) != m.NCon:
		err = errors.New("linear and nonlinear rows must partition constraints")
	}
	if err != nil {
		return
	}
	for i, l := range m.LVar {
		if l > m.UVar[i] {
			return fmt.Errorf("bound range at %d has no feasible solution", i)
		}
	}
	seen := make([]bool, m.NCon)
	for _, rows := range [][]int{m.Lin, m.Nln} {
		for _, j := range rows {
			if j < 0 || j >= m.NCon || seen[j] {
				return errors.New("linear and nonlinear rows must partition constraints")
			}
			seen[j] = true
		}
	}
	for j, l := range m.LCon {
		if l > m.UCon[j] {
			return fmt.Errorf("constraint range at %d has no feasible solution", j)
		}
	}
	return nil
}

// NLSMeta is the shape descriptor of the residual map of a least-squares
// model, with the same invariants as Meta scoped to the residual: NnzJ and
// NnzH count the structural non-zeros of the residual Jacobian and of the
// weighted-residual Hessian lower triangle, and Lin/Nln partition the
// residual components 0..NEqu-1.
type NLSMeta struct {
	NEqu int
	NnzJ int
	NnzH int
	Lin  []int
	Nln  []int
}

// Validate checks the internal consistency of the descriptor.
func (m *NLSMeta) Validate() error {
	switch {
	case m.NEqu <= 0:
		return errors.New("number of residual components must greater than 0")
	case m.NnzJ < 0 || m.NnzH < 0:
		return errors.New("non-zero counts must not less than 0")
	case len(m.Lin)+len(m.Nln) != m.NEqu:
		return errors.New("linear and nonlinear components must partition residual")
	}
	seen := make([]bool, m.NEqu)
	for _, rows := range [][]int{m.Lin, m.Nln} {
		for _, i := range rows {
			if i < 0 || i >= m.NEqu || seen[i] {
				return errors.New("linear and nonlinear components must partition residual")
			}
			seen[i] = true
		}
	}
	return nil
}
