// Package cplx implements the small complex-number value type used by the
// escape-time iteration.
package cplx

import (
	"fmt"
	"math"
)

// Complex is an immutable complex number. Every operation returns a new value.
type Complex struct {
	R float64
	I float64
}

// Zero is the origin of the complex plane.
var Zero = Complex{}

func New(r, i float64) Complex {
	return Complex{R: r, I: i}
}

func (a Complex) Add(b Complex) Complex {
	return Complex{R: a.R + b.R, I: a.I + b.I}
}

// Multiply computes (a.R+a.I i)(b.R+b.I i).
func (a Complex) Multiply(b Complex) Complex {
	return Complex{
		R: a.R*b.R - a.I*b.I,
		I: a.R*b.I + a.I*b.R,
	}
}

// Modulus is the Euclidean distance of a from the origin.
func (a Complex) Modulus() float64 {
	return math.Sqrt(a.R*a.R + a.I*a.I)
}

// Pow raises a to the integer power e by multiplying a copy of a by a, e-1 times.
//
// For e <= 1 the loop never runs, so Pow(0) returns a rather than 1.
func (a Complex) Pow(e int) Complex {
	result := a
	for n := 0; n < e-1; n++ {
		result = result.Multiply(a)
	}

	return result
}

func (a Complex) String() string {
	return fmt.Sprintf("%v+%vi", a.R, a.I)
}
