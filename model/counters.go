// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

// Counters records how many times each query kind was issued against one
// model instance. Each logical query increments its counter exactly once,
// regardless of how many sub-queries a composed model issues internally.
// Counters are diagnostics only and never affect query results.
type Counters struct {
	Obj    int
	Grad   int
	Cons   int
	Jac    int
	Jprod  int
	Jtprod int
	Hess   int
	Hprod  int

	Residual  int
	ResJac    int
	ResJprod  int
	ResJtprod int
	ResHess   int
	ResHprod  int
}

// Reset zeroes every counter.
func (c *Counters) Reset() { *c = Counters{} }
