// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"errors"
	"fmt"
)

var (
	// ErrDimension reports an input or output slice whose length does not
	// match the dimension declared by the model's metadata. It is detected
	// at the top of every query, before any computation.
	ErrDimension = errors.New("dimension mismatch")
	// ErrUnsupported reports a query that is structurally meaningless for a
	// given composition, such as a sparse Hessian structure query on a
	// quasi-Newton model whose Hessian exists only in operator form.
	ErrUnsupported = errors.New("unsupported operation")
)

// DimCheck verifies that the slice argument arg of operation op has the
// declared length. The returned error wraps ErrDimension.
func DimCheck(op, arg string, want, got int) error {
	if want != got {
		return fmt.Errorf("%w: %s expects len(%s) = %d, got %d", ErrDimension, op, arg, want, got)
	}
	return nil
}

// Unsupported reports that operation op has no meaning on the named model.
// The returned error wraps ErrUnsupported.
func Unsupported(op, name string) error {
	return fmt.Errorf("%w: %s on model %q", ErrUnsupported, op, name)
}
