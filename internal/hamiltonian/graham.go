package hamiltonian

import (
	"math"

	"github.com/akarls/mtsim/internal/lineshape"
	"github.com/akarls/mtsim/internal/magnet"
)

// Graham's saturation models replace the memory integral with a
// constant rate computed once per pulse, substituted into the Linear
// evaluator.

// GrahamRrfSpectral returns Graham's spectral saturation rate for a
// rectangular pulse of amplitude ω1 and duration trf:
// f_PSD(TRF/T2s)·B1²·ω1²·T2s.
func GrahamRrfSpectral(ls lineshape.Shape, w1, b1, trf, t2s float64) float64 {
	return ls.FPSD(trf/t2s) * b1 * b1 * w1 * w1 * t2s
}

// GrahamRrfSingleFrequency returns Graham's single-frequency rate
// π·B1²·ω1²·g(ω0), the continuous-wave limit of the spectral model.
func GrahamRrfSingleFrequency(ls lineshape.Shape, w1, b1, omega0, t2s float64) float64 {
	return math.Pi * b1 * b1 * w1 * w1 * ls.Value(omega0, t2s)
}

// GrahamDRrfDT2s returns ∂Rrf/∂T2s of the spectral rate. With
// τ = TRF/T2s it reduces to B1²·ω1²·(2·f_PSD(τ) - ∫₀^τ G), the
// closed-form spectral-density derivative that replaces the running
// T2s history integral of the generalized Bloch model.
func GrahamDRrfDT2s(ls lineshape.Shape, w1, b1, trf, t2s float64) float64 {
	tau := trf / t2s
	return b1 * b1 * w1 * w1 * (2*ls.FPSD(tau) - ls.CumGreens(tau))
}

// GrahamDRrfDB1 returns ∂Rrf/∂B1 of the spectral rate.
func GrahamDRrfDB1(ls lineshape.Shape, w1, b1, trf, t2s float64) float64 {
	return 2 * b1 * w1 * w1 * t2s * ls.FPSD(trf/t2s)
}

// NewGraham returns the Linear evaluator configured with Graham's
// spectral rate for one rectangular pulse.
func NewGraham(p *magnet.Params, ls lineshape.Shape, grads []magnet.GradKind, pulse magnet.PulseKind, w1, trf float64, satOnly bool) *Linear {
	return &Linear{
		P:              p,
		Grads:          grads,
		Pulse:          pulse,
		Rrf:            GrahamRrfSpectral(ls, w1, p.B1, trf, p.T2s),
		DRrfDT2s:       GrahamDRrfDT2s(ls, w1, p.B1, trf, p.T2s),
		DRrfDB1:        GrahamDRrfDB1(ls, w1, p.B1, trf, p.T2s),
		SaturationOnly: satOnly,
	}
}
