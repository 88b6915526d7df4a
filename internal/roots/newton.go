// Package roots provides the scalar root finder used to match the
// linearized saturation rate to the generalized Bloch solution.
package roots

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoConvergence indicates the iteration did not reach the requested
// tolerance. Callers must treat it as fatal; a silently wrong rate
// would corrupt the precomputed table.
var ErrNoConvergence = errors.New("roots: no convergence")

// Newton finds a root of f inside [lo, hi] using the derivative df,
// with bisection as a safeguard whenever a Newton step leaves the
// bracket or stalls. f(lo) and f(hi) must have opposite signs.
func Newton(f, df func(float64) float64, lo, hi, tol float64, maxIter int) (float64, error) {
	flo, fhi := f(lo), f(hi)
	if flo == 0 {
		return lo, nil
	}
	if fhi == 0 {
		return hi, nil
	}
	if math.Signbit(flo) == math.Signbit(fhi) {
		return 0, fmt.Errorf("%w: no sign change on [%g, %g]", ErrNoConvergence, lo, hi)
	}

	x := 0.5 * (lo + hi)
	for i := 0; i < maxIter; i++ {
		fx := f(x)
		if math.Abs(fx) <= tol {
			return x, nil
		}
		if math.Signbit(fx) == math.Signbit(flo) {
			lo, flo = x, fx
		} else {
			hi = x
		}

		d := df(x)
		var next float64
		if d != 0 {
			next = x - fx/d
		}
		if d == 0 || next <= math.Min(lo, hi) || next >= math.Max(lo, hi) || math.IsNaN(next) {
			next = 0.5 * (lo + hi)
		}
		if math.Abs(next-x) <= tol*math.Max(1, math.Abs(x)) && math.Abs(fx) <= math.Sqrt(tol) {
			return next, nil
		}
		x = next
	}
	return 0, fmt.Errorf("%w: %d iterations on [%g, %g]", ErrNoConvergence, maxIter, lo, hi)
}
