package transforms

import "github.com/willbeason/multibrot/pkg/cplx"

// A Transform iterates a passed point.
type Transform interface {
	Next(cplx.Complex) cplx.Complex
}

// Orbit applies t to z0 n times and returns every intermediate point.
func Orbit(t Transform, z0 cplx.Complex, n int) []cplx.Complex {
	path := make([]cplx.Complex, 0, max(n, 0))

	z := z0
	for i := 0; i < n; i++ {
		z = t.Next(z)
		path = append(path, z)
	}

	return path
}
