// Package calculator holds the arithmetic served by calcapi.
package calculator

import "golang.org/x/exp/constraints"

// Number is any built-in integer or floating point type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Sum returns a + b. Overflow follows Go's rules for T: fixed-width integers wrap.
func Sum[T Number](a, b T) T {
	return a + b
}
