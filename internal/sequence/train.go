package sequence

import (
	"fmt"
	"math"

	"github.com/akarls/mtsim/internal/hamiltonian"
	"github.com/akarls/mtsim/internal/integrators"
	"github.com/akarls/mtsim/internal/magnet"
)

// saturator advances the state across the saturation segments of one
// pulse. begin is called once per pulse before its segments; advance
// integrates over [t0, t1] in pulse-local time, with t = 0 at the
// pulse start, so a memory model can chain the history of the two
// halves across the on-center rotation.
type saturator interface {
	begin(kind magnet.PulseKind, w1, trf float64)
	advance(st magnet.State, t0, t1 float64) (magnet.State, error)
}

// run drives the shared pulse-train skeleton: optional inversion prep,
// then per pulse half saturation, instantaneous rotation, half
// saturation, free precession to the echo, readout, and free
// precession to the next pulse.
func run(p *magnet.Params, grads []magnet.GradKind, tr *Train, opt Options, sat saturator) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	zf0, zs0 := p.Equilibrium()
	st := magnet.NewState(zf0, zs0, len(grads))
	// The equilibrium itself depends on m0s, so that sensitivity starts
	// from the derivative of the initial condition.
	for i, kind := range grads {
		if kind == magnet.GradM0s {
			blk := st.Block(i + 1)
			blk[magnet.Zf] = -1
			blk[magnet.Zs] = 1
		}
	}
	res := newResult(len(tr.Omega1), len(grads))
	freeEv := hamiltonian.NewFreePrecession(p, grads)

	free := func(d float64) error {
		if d <= 0 {
			return nil
		}
		sol, err := integrators.Solve(freeEv.Derive, st, 0, d, opt.freeSteps(d, p.Omega0))
		if err != nil {
			return err
		}
		st = sol.Last().Clone()
		return nil
	}

	for iter := 0; iter < tr.Niter; iter++ {
		if tr.InversionPrep {
			if err := invert(&st, p, grads, tr, sat); err != nil {
				return nil, err
			}
			gap := tr.TR - tr.InvDur/2 - tr.TRF[0]/2
			if gap < 0 {
				return nil, fmt.Errorf("%w: inversion overlaps first pulse", magnet.ErrEchoMismatch)
			}
			if err := free(gap); err != nil {
				return nil, simErr(-1, 0, err)
			}
		}
		for k := range tr.Omega1 {
			w1, trf := tr.Omega1[k], tr.TRF[k]
			tc := float64(k) * tr.TR

			sat.begin(magnet.PulseExcitation, w1, trf)
			next, err := sat.advance(st, 0, trf/2)
			if err != nil {
				return nil, simErr(k, tc, err)
			}
			st = next
			applyRotation(st, pulseTheta(p, w1, trf, k), p, grads)
			next, err = sat.advance(st, trf/2, trf)
			if err != nil {
				return nil, simErr(k, tc, err)
			}
			st = next

			d1, d2, err := echoGaps(tr, k)
			if err != nil {
				return nil, simErr(k, tc, err)
			}
			if err := free(d1); err != nil {
				return nil, simErr(k, tc, err)
			}
			if iter == tr.Niter-1 {
				res.record(k, st)
			}
			if err := free(d2); err != nil {
				return nil, simErr(k, tc, err)
			}
		}
	}
	return res, nil
}

// invert applies the inversion prep. With a positive duration the
// semi-solid pool is saturated across the pulse and the sensitivity
// corrections are restricted to the T2s and B1 kinds; with zero
// duration the inversion is a bare instantaneous rotation.
func invert(st *magnet.State, p *magnet.Params, grads []magnet.GradKind, tr *Train, sat saturator) error {
	theta := math.Pi * p.B1
	if tr.InvDur <= 0 {
		applyRotation(*st, theta, p, grads)
		return nil
	}
	w1 := math.Pi / tr.InvDur
	sat.begin(magnet.PulseInversion, w1, tr.InvDur)
	next, err := sat.advance(*st, 0, tr.InvDur/2)
	if err != nil {
		return simErr(-1, 0, err)
	}
	applyRotation(next, theta, p, grads)
	next, err = sat.advance(next, tr.InvDur/2, tr.InvDur)
	if err != nil {
		return simErr(-1, 0, err)
	}
	*st = next
	return nil
}
