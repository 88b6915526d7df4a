package hamiltonian

import (
	"math"

	"github.com/akarls/mtsim/internal/lineshape"
	"github.com/akarls/mtsim/internal/magnet"
)

// Sled is Sled's saturation model: the same coupled-pool equations as
// the generalized Bloch evaluator, but with the memory integral
// replaced by the trajectory-independent rate
//
//	Rrf(t) = B1²·ω1²·T2s·∫₀^{t/T2s} G(κ) dκ,
//
// which decouples the saturation from the state history and turns the
// system into a plain ODE.
type Sled struct {
	P *magnet.Params
	G lineshape.Shape
}

func (e *Sled) Derive(t float64, m, dm magnet.State, _ magnet.History) {
	w1 := e.P.RF(t)
	rrf := e.rate(t, w1)
	for b := 0; b < m.Blocks(); b++ {
		mb := m.Block(b)
		gblochBase(e.P, t, w1, false, mb, dm.Block(b), rrf*mb[magnet.Zs])
	}
}

func (e *Sled) rate(t, w1 float64) float64 {
	p := e.P
	tau := t / p.T2s
	if sup := e.G.Support(); tau > sup {
		tau = sup
	}
	b1w1 := p.B1 * w1
	if p.Omega1Fn == nil && p.Omega0 == 0 {
		return b1w1 * b1w1 * p.T2s * e.G.CumGreens(tau)
	}
	// Shaped or off-resonant pulse: no closed form for the running
	// integral; quadrature in κ as in the memory models.
	f := func(k float64) float64 {
		lag := k * p.T2s
		x := t - lag
		w := 1.0
		if dphi := p.Phase(t) - p.Phase(x); dphi != 0 {
			w = math.Cos(dphi)
		}
		return e.G.At(k) * p.RF(x) * w
	}
	total := 0.0
	lo, w := 0.0, 0.5
	for lo < tau {
		hi := math.Min(lo+w, tau)
		total += gl16(f, lo, hi)
		lo = hi
		w = math.Min(2*w, 16)
	}
	return p.B1 * p.B1 * w1 * total * p.T2s
}
