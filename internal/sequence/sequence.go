// Package sequence simulates balanced pulse trains over the two-pool
// system. Each pulse is split into a saturation segment with an
// instantaneous on-center rotation of the free pool; between pulses the
// magnetization precesses freely, and the transverse signal is read out
// at the echo time TR/2 after each pulse center. Three simulators share
// the skeleton and differ only in the semi-solid saturation model.
package sequence

import (
	"fmt"
	"math"

	"github.com/akarls/mtsim/internal/magnet"
)

// Train describes a pulse train. Pulse k has amplitude Omega1[k] and
// duration TRF[k]; pulse centers are spaced TR apart and the RF phase
// alternates pulse to pulse. The train is repeated Niter times to
// approach its cyclic steady state; the signal of the last pass is
// returned.
type Train struct {
	Omega1 []float64 // rad/s, non-negative
	TRF    []float64 // s
	TR     float64   // s
	Niter  int

	// InversionPrep applies a π inversion (scaled by B1) of the free
	// pool at the start of every pass, one TR before the first pulse
	// center. InvDur gives the inversion pulse a finite duration, over
	// which the semi-solid pool is saturated; zero makes the inversion
	// instantaneous.
	InversionPrep bool
	InvDur        float64
}

func (tr *Train) Validate() error {
	if len(tr.Omega1) == 0 || len(tr.Omega1) != len(tr.TRF) {
		return fmt.Errorf("%w: train needs matching amplitude and duration lists", magnet.ErrParameterBounds)
	}
	if tr.TR <= 0 {
		return fmt.Errorf("%w: TR=%g", magnet.ErrParameterBounds, tr.TR)
	}
	if tr.Niter < 1 {
		return fmt.Errorf("%w: Niter=%d", magnet.ErrParameterBounds, tr.Niter)
	}
	if tr.InvDur < 0 {
		return fmt.Errorf("%w: InvDur=%g negative", magnet.ErrParameterBounds, tr.InvDur)
	}
	for k, trf := range tr.TRF {
		if trf <= 0 || trf >= tr.TR {
			return fmt.Errorf("%w: pulse %d: TRF=%g outside (0, TR)", magnet.ErrParameterBounds, k, trf)
		}
		if tr.Omega1[k] < 0 {
			return fmt.Errorf("%w: pulse %d: omega1=%g negative", magnet.ErrParameterBounds, k, tr.Omega1[k])
		}
	}
	return nil
}

// Options tune the integration step counts. Zero values select the
// defaults; oscillation floors are applied on top regardless.
type Options struct {
	SatSteps  int // steps per half-pulse saturation segment, default 64
	FreeSteps int // steps per free-precession segment, default 32
}

const (
	defaultSatSteps  = 64
	defaultFreeSteps = 32
)

func (o Options) satSteps() int {
	if o.SatSteps > 0 {
		return o.SatSteps
	}
	return defaultSatSteps
}

// freeSteps keeps the step short against the off-resonance period.
func (o Options) freeSteps(d, omega0 float64) int {
	n := o.FreeSteps
	if n <= 0 {
		n = defaultFreeSteps
	}
	if osc := int(math.Ceil(3 * math.Abs(omega0) * d)); osc > n {
		n = osc
	}
	return n
}

// Result holds the complex transverse signal at each echo of the last
// pass, and one sensitivity trace per requested gradient, in the order
// the gradients were requested.
type Result struct {
	Signal []complex128
	Grads  [][]complex128
}

func newResult(nPulses, nGrad int) *Result {
	r := &Result{Signal: make([]complex128, nPulses)}
	r.Grads = make([][]complex128, nGrad)
	for i := range r.Grads {
		r.Grads[i] = make([]complex128, nPulses)
	}
	return r
}

func (r *Result) record(k int, st magnet.State) {
	r.Signal[k] = complex(st[magnet.Xf], st[magnet.Yf])
	for i := range r.Grads {
		blk := st.Block(i + 1)
		r.Grads[i][k] = complex(blk[magnet.Xf], blk[magnet.Yf])
	}
}

// applyRotation rotates the free pool of every block by theta about the
// y axis and adds the flip-angle sensitivity to the B1 block. The
// semi-solid pool and the source channel pass through unchanged. theta
// already includes the B1 scaling, so the angle's B1 derivative is
// theta/B1.
func applyRotation(st magnet.State, theta float64, p *magnet.Params, grads []magnet.GradKind) {
	x0, z0 := st[magnet.Xf], st[magnet.Zf]
	s, c := math.Sin(theta), math.Cos(theta)
	for b := 0; b < st.Blocks(); b++ {
		blk := st.Block(b)
		x, z := blk[magnet.Xf], blk[magnet.Zf]
		blk[magnet.Xf] = c*x + s*z
		blk[magnet.Zf] = -s*x + c*z
	}
	for i, kind := range grads {
		if kind != magnet.GradB1 {
			continue
		}
		dth := theta / p.B1
		blk := st.Block(i + 1)
		blk[magnet.Xf] += dth * (-s*x0 + c*z0)
		blk[magnet.Zf] += dth * (-c*x0 - s*z0)
	}
}

// pulseTheta is the effective flip angle of pulse k, with the RF phase
// alternation folded into the sign.
func pulseTheta(p *magnet.Params, w1, trf float64, k int) float64 {
	theta := p.B1 * w1 * trf
	if k%2 == 1 {
		theta = -theta
	}
	return theta
}

// echoGaps returns the free-precession durations around the echo of
// pulse k: from the end of pulse k to the echo, and from the echo to
// the start of the next pulse. The echo sits TR/2 after the pulse
// center; a pulse long enough to swallow it is a timing error.
func echoGaps(tr *Train, k int) (float64, float64, error) {
	next := (k + 1) % len(tr.TRF)
	d1 := tr.TR/2 - tr.TRF[k]/2
	d2 := tr.TR/2 - tr.TRF[next]/2
	tol := 1e-10 * tr.TR
	if d1 < -tol || d2 < -tol {
		return 0, 0, fmt.Errorf("%w: pulse %d: echo at TR/2 overlaps a pulse", magnet.ErrEchoMismatch, k)
	}
	return math.Max(d1, 0), math.Max(d2, 0), nil
}

func simErr(pulse int, t float64, err error) error {
	return &magnet.SimulationError{Pulse: pulse, Time: t, Wrapped: err}
}
