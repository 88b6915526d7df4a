// Package hamiltonian implements the right-hand-side evaluators of the
// saturation models: free precession, the linear (Rrf) approximation,
// Sled's model, the generalized Bloch model with its memory integral,
// and the sensitivity corrections layered on top of each.
package hamiltonian

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/akarls/mtsim/internal/lineshape"
	"github.com/akarls/mtsim/internal/magnet"
)

func gl16(f func(float64) float64, a, b float64) float64 {
	return quad.Fixed(f, a, b, 16, nil, 0)
}

// memoryIntegral evaluates the history integral of the generalized
// Bloch model,
//
//	∫₀ᵗ K((t-x)/T2s)·ω1(x)·w(t,x)·zs(x) dx,
//
// in units of the dimensionless lag κ = (t-x)/T2s. K is the Green's
// function (or its T2s derivative when dT2s is set); w is the phase
// factor cos(φ(t)-φ(x)), or (t-x)·sin(φ(t)-φ(x)) when timeWeighted is
// set (the ω0 sensitivity kernel). comp selects the history component.
//
// The quadrature uses composite Gauss-Legendre panels that start
// narrow at κ = 0, where every Green's function carries most of its
// mass, and grow geometrically up to a width bounded by the fastest
// oscillation present in the integrand. The lag range is truncated at
// the Green's function's support.
func memoryIntegral(g lineshape.Greens, h magnet.History, comp int, p *magnet.Params, t float64, dT2s, timeWeighted bool) float64 {
	t2s := p.T2s
	tau := t / t2s
	if sup := g.Support(); tau > sup {
		tau = sup
	}
	if tau <= 0 {
		return 0
	}

	phaseT := p.Phase(t)
	f := func(k float64) float64 {
		var kv float64
		if dT2s {
			kv = g.DT2sAt(k)
		} else {
			kv = g.At(k)
		}
		lag := k * t2s
		x := t - lag
		dphi := phaseT - p.Phase(x)
		var w float64
		if timeWeighted {
			w = lag * math.Sin(dphi)
		} else if dphi != 0 {
			w = math.Cos(dphi)
		} else {
			w = 1
		}
		return kv * w * p.RF(x) * h.Query(x, comp)
	}

	// Panel width cap: resolve both the phase oscillation and the
	// Rabi rotation of the state, measured per unit κ.
	hint := math.Max(math.Abs(p.Omega0), math.Abs(p.B1*p.RF(t))) * t2s
	wmax := 16.0
	if hint > 0 {
		wmax = math.Min(wmax, math.Max(0.25, 1.5/hint))
	}

	total := 0.0
	lo := 0.0
	w := math.Min(0.5, wmax)
	for lo < tau {
		hi := math.Min(lo+w, tau)
		total += gl16(f, lo, hi)
		lo = hi
		if w < wmax {
			w = math.Min(2*w, wmax)
		}
	}
	return total * t2s
}
