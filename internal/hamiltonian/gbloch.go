package hamiltonian

import (
	"math"

	"github.com/akarls/mtsim/internal/lineshape"
	"github.com/akarls/mtsim/internal/magnet"
)

// GBloch is the generalized Bloch evaluator for the coupled two-pool
// system. The semi-solid longitudinal component is driven by the
// memory integral of its own history against the Green's function,
// making the system an integro-differential (delay) equation.
//
// Three RF input modes are supported through Params: constant ω1/ω0,
// shaped amplitude ω1(t) with constant ω0, and fully swept ω1(t)/φ(t),
// in which case the transverse split follows φ instead of ω0.
type GBloch struct {
	P     *magnet.Params
	G     lineshape.Greens
	Grads []magnet.GradKind
	Pulse magnet.PulseKind

	// SaturationOnly drops the RF rotation terms from the free pool;
	// pulse-train simulators that apply the rotation instantaneously
	// at the pulse center set this for the saturation segments.
	SaturationOnly bool
}

func (e *GBloch) Derive(t float64, m, dm magnet.State, h magnet.History) {
	w1 := e.P.RF(t)
	b1 := e.P.B1
	for b := 0; b < m.Blocks(); b++ {
		mem := memoryIntegral(e.G, h, magnet.BlockSize*b+magnet.Zs, e.P, t, false, false)
		gblochBase(e.P, t, w1, e.SaturationOnly, m.Block(b), dm.Block(b), b1*b1*w1*mem)
	}
	for i, kind := range e.Grads {
		e.correct(kind, t, w1, m.Block(0), dm.Block(i+1), h)
	}
}

// gblochBase writes the coupled two-pool derivative of one block. sat
// is the block's saturation term, subtracted from żs: the memory
// integral (scaled by B1²ω1) for the generalized Bloch model, Rrf·zs
// for the linear models.
func gblochBase(p *magnet.Params, t, w1 float64, satOnly bool, mb, db magnet.State, sat float64) {
	b1w1 := 0.0
	if !satOnly {
		b1w1 = p.B1 * w1
	}
	oneM0s := 1 - p.M0s

	if p.PhaseFn != nil {
		// Swept pulse: the RF axis rotates with φ, off-resonance is
		// folded into the phase.
		phi := p.PhaseFn(t)
		c, s := math.Cos(phi), math.Sin(phi)
		db[magnet.Xf] = -p.R2f*mb[magnet.Xf] + b1w1*c*mb[magnet.Zf]
		db[magnet.Yf] = -p.R2f*mb[magnet.Yf] + b1w1*s*mb[magnet.Zf]
		db[magnet.Zf] = -b1w1*(c*mb[magnet.Xf]+s*mb[magnet.Yf]) -
			(p.R1f+p.Rx*p.M0s)*mb[magnet.Zf] + p.Rx*oneM0s*mb[magnet.Zs] +
			oneM0s*p.R1f*mb[magnet.Hom]
	} else {
		db[magnet.Xf] = -p.R2f*mb[magnet.Xf] - p.Omega0*mb[magnet.Yf] + b1w1*mb[magnet.Zf]
		db[magnet.Yf] = p.Omega0*mb[magnet.Xf] - p.R2f*mb[magnet.Yf]
		db[magnet.Zf] = -b1w1*mb[magnet.Xf] -
			(p.R1f+p.Rx*p.M0s)*mb[magnet.Zf] + p.Rx*oneM0s*mb[magnet.Zs] +
			oneM0s*p.R1f*mb[magnet.Hom]
	}

	db[magnet.Zs] = -sat +
		p.Rx*p.M0s*mb[magnet.Zf] - (p.R1s+p.Rx*oneM0s)*mb[magnet.Zs] +
		p.M0s*p.R1s*mb[magnet.Hom]
	db[magnet.Hom] = 0
}

func (e *GBloch) correct(kind magnet.GradKind, t, w1 float64, m, dg magnet.State, h magnet.History) {
	p := e.P
	if e.Pulse == magnet.PulseInversion && kind != magnet.GradT2s && kind != magnet.GradB1 {
		return
	}
	w1rot := w1
	if e.SaturationOnly {
		w1rot = 0
	}
	switch kind {
	case magnet.GradT2s:
		mem := memoryIntegral(e.G, h, magnet.Zs, p, t, true, false)
		dg[magnet.Zs] -= p.B1 * p.B1 * p.RF(t) * mem / p.T2s
	case magnet.GradB1:
		addRotationB1(p, w1rot, m, dg)
		mem := memoryIntegral(e.G, h, magnet.Zs, p, t, false, false)
		dg[magnet.Zs] -= 2 * p.B1 * p.RF(t) * mem
	case magnet.GradOmega0:
		addPrecessionOmega0(m, dg)
		if p.PhaseFn == nil && p.Omega0 != 0 {
			mem := memoryIntegral(e.G, h, magnet.Zs, p, t, false, true)
			dg[magnet.Zs] += p.B1 * p.B1 * p.RF(t) * mem
		}
	default:
		addRelaxationCorrection(kind, p, m, dg)
	}
}

// GBlochIsolated is the generalized Bloch evaluator for an isolated
// semi-solid pool: a single-component state [zs] with no free pool and
// no exchange. R1 of zero gives the reduced problem solved on the
// saturation-rate precomputation grid.
type GBlochIsolated struct {
	P  *magnet.Params
	G  lineshape.Greens
	R1 float64
}

func (e *GBlochIsolated) Derive(t float64, m, dm magnet.State, h magnet.History) {
	mem := memoryIntegral(e.G, h, 0, e.P, t, false, false)
	dm[0] = -e.P.B1*e.P.B1*e.P.RF(t)*mem + e.R1*(1-m[0])
}
