package transforms

import "github.com/willbeason/multibrot/pkg/cplx"

// Multibrot is the step z -> z^Exponent + C shared by the Mandelbrot family
// (C varies per pixel) and the Julia family (C is fixed).
type Multibrot struct {
	Exponent int
	C        cplx.Complex
}

func (m Multibrot) Next(z cplx.Complex) cplx.Complex {
	return z.Pow(m.Exponent).Add(m.C)
}

var _ Transform = Multibrot{}
