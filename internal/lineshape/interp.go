package lineshape

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// DefaultSamples is the number of knots used by Tabulate when n <= 0.
const DefaultSamples = 2048

// Interp is a sampled surrogate of a Green's function, valid only on
// the lag range [0, κmax] it was fitted over. The super-Lorentzian has
// no closed form and a quadrature per evaluation is far too expensive
// inside an integrator loop; tabulating it once amortizes the cost.
// The fit is cubic-Hermite with sampled slopes: a natural spline would
// force zero curvature at κ=0, where the Green's functions curve the
// most.
type Interp struct {
	kmax   float64
	g      interp.PiecewiseCubic
	dt2s   interp.PiecewiseCubic
	source Greens
}

// Tabulate samples g at n knots over [0, kmax] and fits cubic-Hermite
// surrogates of G and its T2s derivative. n <= 0 selects
// DefaultSamples.
func Tabulate(g Greens, kmax float64, n int) (*Interp, error) {
	if kmax <= 0 {
		return nil, fmt.Errorf("lineshape: non-positive interpolation range %g", kmax)
	}
	if n <= 0 {
		n = DefaultSamples
	}
	xs := make([]float64, n)
	floats.Span(xs, 0, kmax)
	ys := make([]float64, n)
	dys := make([]float64, n)
	ds := make([]float64, n)
	dds := make([]float64, n)
	// The Green's functions extend smoothly across κ=0, so the central
	// difference is valid at the first knot too.
	const h = 1e-5
	for i, x := range xs {
		ys[i] = g.At(x)
		dys[i] = (g.At(x+h) - g.At(x-h)) / (2 * h)
		ds[i] = g.DT2sAt(x)
		dds[i] = (g.DT2sAt(x+h) - g.DT2sAt(x-h)) / (2 * h)
	}
	it := &Interp{kmax: kmax, source: g}
	it.g.FitWithDerivatives(xs, ys, dys)
	it.dt2s.FitWithDerivatives(xs, ds, dds)
	return it, nil
}

// At returns the interpolated G(κ). Querying outside [0, κmax] is a
// caller contract violation and panics.
func (it *Interp) At(k float64) float64 {
	it.check(k)
	return it.g.Predict(k)
}

// DT2sAt returns the interpolated T2s·∂G/∂T2s.
func (it *Interp) DT2sAt(k float64) float64 {
	it.check(k)
	return it.dt2s.Predict(k)
}

// Support returns the fitted lag range.
func (it *Interp) Support() float64 { return it.kmax }

// Source returns the exact Green's function the surrogate was built
// from.
func (it *Interp) Source() Greens { return it.source }

func (it *Interp) check(k float64) {
	if k < -1e-12 || k > it.kmax*(1+1e-12) {
		panic(fmt.Sprintf("lineshape: lag %g outside interpolated support [0, %g]", k, it.kmax))
	}
}
