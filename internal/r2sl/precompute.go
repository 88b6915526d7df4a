// Package r2sl precomputes the linearized saturation rate of the
// generalized Bloch model. A grid of reduced isolated-pool solves is
// matched, point by point, against a single-compartment
// exponential-rotation model; the resulting table is fitted with a
// bicubic spline so that pulse-train simulations and their parameter
// gradients can evaluate the rate algebraically instead of solving an
// integro-differential equation per pulse.
package r2sl

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/akarls/mtsim/internal/hamiltonian"
	"github.com/akarls/mtsim/internal/integrators"
	"github.com/akarls/mtsim/internal/interp2"
	"github.com/akarls/mtsim/internal/lineshape"
	"github.com/akarls/mtsim/internal/magnet"
	"github.com/akarls/mtsim/internal/roots"
)

// Bounds is the bounding box the table is valid for. Queries outside
// it panic in the spline layer.
type Bounds struct {
	TRFMin, TRFMax float64 // pulse duration, s
	T2sMin, T2sMax float64 // semi-solid T2, s
	AlphaMax       float64 // flip angle, rad
	B1Max          float64
}

// Options tune the table build. Zero values select the defaults.
type Options struct {
	GridTau   int // grid points along TRF/T2s, default 64
	GridAlpha int // grid points along B1·α, default 64
	MinSteps  int // lower bound on integration steps per grid solve
}

const (
	defaultGrid = 64
	// alphaFloor keeps the root solve away from the degenerate
	// zero-saturation corner.
	alphaFloor = 1e-3
)

// Precompute builds the saturation-rate table for the given Green's
// function over the bounding box. A super-Lorentzian Green's function
// is tabulated once over the needed lag range before the grid solves;
// closed-form Green's functions are used directly.
func Precompute(g lineshape.Greens, b Bounds, opt Options) (*Table, error) {
	if b.TRFMin <= 0 || b.TRFMax < b.TRFMin || b.T2sMin <= 0 || b.T2sMax < b.T2sMin {
		return nil, fmt.Errorf("r2sl: invalid bounding box %+v", b)
	}
	if b.AlphaMax <= 0 || b.B1Max <= 0 {
		return nil, fmt.Errorf("r2sl: invalid bounding box %+v", b)
	}
	ntau := opt.GridTau
	if ntau <= 0 {
		ntau = defaultGrid
	}
	nalpha := opt.GridAlpha
	if nalpha <= 0 {
		nalpha = defaultGrid
	}

	tauMin := b.TRFMin / b.T2sMax
	tauMax := b.TRFMax / b.T2sMin
	alphaMax := b.B1Max * b.AlphaMax

	if sl, ok := g.(lineshape.SuperLorentzian); ok {
		it, err := lineshape.Tabulate(sl, tauMax, 0)
		if err != nil {
			return nil, err
		}
		g = it
	}

	taus := make([]float64, ntau)
	floats.Span(taus, tauMin, tauMax)
	alphas := make([]float64, nalpha)
	floats.Span(alphas, alphaFloor, alphaMax)

	vals := make([]float64, ntau*nalpha)
	errs := make([]error, ntau*nalpha)

	// Grid cells are independent; each solve writes one disjoint
	// table entry.
	magnet.ParallelFor(ntau*nalpha, 8, func(start, end int) {
		for c := start; c < end; c++ {
			i, j := c%ntau, c/ntau
			rho, err := solveCell(g, taus[i], alphas[j], opt.MinSteps)
			if err != nil {
				errs[c] = fmt.Errorf("r2sl: cell (tau=%g, alpha=%g): %w", taus[i], alphas[j], err)
				continue
			}
			vals[j*ntau+i] = rho
		}
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	sp, err := interp2.New(tauMin, tauMax, ntau, alphaFloor, alphaMax, nalpha, vals)
	if err != nil {
		return nil, err
	}
	return &Table{sp: sp, bounds: b}, nil
}

// solveCell solves the reduced isolated-pool problem at one grid point
// (times normalized to T2s) and matches the linearized rate. tau is
// the pulse duration, alpha the effective flip angle; the amplitude is
// alpha/tau.
func solveCell(g lineshape.Greens, tau, alpha float64, minSteps int) (float64, error) {
	w1 := alpha / tau
	p := &magnet.Params{Omega1: w1, B1: 1, T2s: 1}
	ev := &hamiltonian.GBlochIsolated{P: p, G: g}

	steps := int(math.Ceil(math.Max(8*tau, 64*alpha)))
	if steps < 200 {
		steps = 200
	}
	if steps < minSteps {
		steps = minSteps
	}
	m0 := magnet.State{1}
	sol, err := integrators.SolveDDE(ev.Derive, m0, 0, tau, steps, nil)
	if err != nil {
		return 0, err
	}
	target := sol.Last()[0]

	f := func(rho float64) float64 { return rotationDecay(rho, w1, tau) - target }
	df := func(rho float64) float64 {
		d := 1e-6 * math.Max(1, rho)
		return (rotationDecay(rho+d, w1, tau) - rotationDecay(rho-d, w1, tau)) / (2 * d)
	}

	// The model value grows monotonically with rho from cos-like
	// rotation to 1; expand the bracket until it straddles the target.
	hi := math.Max(4*w1, 10/tau)
	for k := 0; k < 60 && f(hi) < 0; k++ {
		hi *= 2
	}
	rho, err := roots.Newton(f, df, 0, hi, 1e-12, 200)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", magnet.ErrNoConvergence, err)
	}
	return rho, nil
}

// rotationDecay is the closed-form terminal zs of the single
// compartment model ẋ = -ρx + ω1·z, ż = -ω1·x - ... with z(0) = 1:
// the damped-rotation propagator the table linearizes against.
func rotationDecay(rho, w1, t float64) float64 {
	half := rho / 2
	disc := w1*w1 - half*half
	switch {
	case disc > 1e-12*w1*w1:
		mu := math.Sqrt(disc)
		return math.Exp(-half*t) * (math.Cos(mu*t) + half/mu*math.Sin(mu*t))
	case disc < -1e-12*half*half:
		nu := math.Sqrt(-disc)
		// Expanded to avoid cosh overflow; nu < rho/2 keeps both
		// exponents negative.
		return 0.5*(1+half/nu)*math.Exp((nu-half)*t) +
			0.5*(1-half/nu)*math.Exp(-(nu+half)*t)
	default:
		return math.Exp(-half*t) * (1 + half*t)
	}
}
