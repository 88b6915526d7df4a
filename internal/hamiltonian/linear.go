package hamiltonian

import "github.com/akarls/mtsim/internal/magnet"

// Linear is the coupled two-pool evaluator with the semi-solid
// saturation collapsed into a constant rate Rrf, valid for one pulse.
// Rrf of zero gives plain free precession. Graham's models and the
// R2sl linear approximation both reduce to this evaluator; they differ
// only in how Rrf and its parameter derivatives are obtained.
type Linear struct {
	P     *magnet.Params
	Grads []magnet.GradKind
	Pulse magnet.PulseKind

	Rrf      float64
	DRrfDT2s float64 // ∂Rrf/∂T2s for the T2s sensitivity
	DRrfDB1  float64 // ∂Rrf/∂B1 for the B1 sensitivity

	// SaturationOnly drops the RF rotation terms, as in GBloch.
	SaturationOnly bool
}

// NewFreePrecession returns a Linear evaluator with no RF term: the
// linear time-invariant relaxation-exchange system.
func NewFreePrecession(p *magnet.Params, grads []magnet.GradKind) *Linear {
	return &Linear{P: p, Grads: grads, SaturationOnly: true}
}

func (e *Linear) Derive(t float64, m, dm magnet.State, _ magnet.History) {
	w1 := e.P.RF(t)
	for b := 0; b < m.Blocks(); b++ {
		mb := m.Block(b)
		gblochBase(e.P, t, w1, e.SaturationOnly, mb, dm.Block(b), e.Rrf*mb[magnet.Zs])
	}
	for i, kind := range e.Grads {
		e.correct(kind, t, w1, m.Block(0), dm.Block(i+1))
	}
}

func (e *Linear) correct(kind magnet.GradKind, t, w1 float64, m, dg magnet.State) {
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
		// Free precession has no saturation, so DRrfDT2s is zero there
		// and the correction vanishes.
		dg[magnet.Zs] -= e.DRrfDT2s * m[magnet.Zs]
	case magnet.GradB1:
		addRotationB1(p, w1rot, m, dg)
		dg[magnet.Zs] -= e.DRrfDB1 * m[magnet.Zs]
	case magnet.GradOmega0:
		addPrecessionOmega0(m, dg)
	default:
		addRelaxationCorrection(kind, p, m, dg)
	}
}

// LinearRotation is the pulse evaluator of the R2sl linear
// approximation. The tabulated rate is the effective transverse
// relaxation of the semi-solid pool, so each block carries an explicit
// semi-solid transverse component that nutates under the RF:
//
//	ẋs = -R2sl·xs + B1·ω1·zs
//	żs = -B1·ω1·xs + relaxation/exchange
//
// The transverse entries are appended after the blocks, one per block,
// and start at zero at the pulse onset; the free-pool rotation stays
// instantaneous as in the other saturation evaluators.
type LinearRotation struct {
	P     *magnet.Params
	Grads []magnet.GradKind
	Pulse magnet.PulseKind

	R2sl      float64
	DR2slDT2s float64 // ∂R2sl/∂T2s for the T2s sensitivity
	DR2slDB1  float64 // ∂R2sl/∂B1 for the B1 sensitivity
}

// Augment returns a copy of m with the semi-solid transverse entries
// appended, all zero.
func (e *LinearRotation) Augment(m magnet.State) magnet.State {
	aug := make(magnet.State, len(m)+m.Blocks())
	copy(aug, m)
	return aug
}

func (e *LinearRotation) Derive(t float64, m, dm magnet.State, _ magnet.History) {
	nb := 1 + len(e.Grads)
	w1 := e.P.B1 * e.P.RF(t)
	xs, dxs := m[nb*magnet.BlockSize:], dm[nb*magnet.BlockSize:]
	for b := 0; b < nb; b++ {
		mb := m.Block(b)
		gblochBase(e.P, t, 0, true, mb, dm.Block(b), w1*xs[b])
		dxs[b] = -e.R2sl*xs[b] + w1*mb[magnet.Zs]
	}
	m0, xs0 := m.Block(0), xs[0]
	for i, kind := range e.Grads {
		if e.Pulse == magnet.PulseInversion && kind != magnet.GradT2s && kind != magnet.GradB1 {
			continue
		}
		dg := dm.Block(i + 1)
		switch kind {
		case magnet.GradT2s:
			dxs[i+1] -= e.DR2slDT2s * xs0
		case magnet.GradB1:
			dw1 := w1 / e.P.B1
			dg[magnet.Zs] -= dw1 * xs0
			dxs[i+1] += dw1*m0[magnet.Zs] - e.DR2slDB1*xs0
		case magnet.GradOmega0:
			addPrecessionOmega0(m0, dg)
		default:
			addRelaxationCorrection(kind, e.P, m0, dg)
		}
	}
}
