package r2sl

import (
	"github.com/akarls/mtsim/internal/interp2"
)

// Table is a fitted saturation-rate surface over reduced coordinates
// (TRF/T2s, B1·α). All queries are algebraic spline evaluations.
type Table struct {
	sp     *interp2.Spline
	bounds Bounds
}

// Bounds returns the box the table was built for.
func (t *Table) Bounds() Bounds { return t.bounds }

// R2sl returns the linearized semi-solid relaxation rate for a pulse
// of duration trf and flip angle alpha. Panics when the reduced
// coordinates fall outside the table.
func (t *Table) R2sl(trf, alpha, b1, t2s float64) float64 {
	return t.sp.At(trf/t2s, b1*alpha) / t2s
}

// Partials carries the rate together with its derivatives against the
// physical pulse parameters. First derivatives hold the remaining
// parameters fixed; DTRF in particular is taken at constant flip
// angle, with the amplitude ω1 = α/TRF varying accordingly. DOmega1
// instead holds TRF fixed and scales the flip angle.
type Partials struct {
	Value float64

	DTRF    float64
	DT2s    float64
	DB1     float64
	DAlpha  float64
	DOmega1 float64

	DB1DB1      float64
	DB1DOmega1  float64
	DT2sDT2s    float64
	DT2sDB1     float64
	DT2sDOmega1 float64
	DTRFDT2s    float64
	DTRFDB1     float64
}

// Partials evaluates the rate surface and propagates the spline
// derivatives through the reduced coordinates τ = TRF/T2s and
// a = B1·α, with the rate itself carrying an extra 1/T2s.
func (t *Table) Partials(trf, alpha, b1, t2s float64) Partials {
	tau := trf / t2s
	e := t.sp.Full(tau, b1*alpha)

	t2s2 := t2s * t2s
	t2s3 := t2s2 * t2s
	var p Partials
	p.Value = e.V / t2s

	p.DTRF = e.Dx / t2s2
	p.DT2s = -(tau*e.Dx + e.V) / t2s2
	p.DB1 = e.Dy * alpha / t2s
	p.DAlpha = e.Dy * b1 / t2s
	p.DOmega1 = e.Dy * b1 * trf / t2s

	p.DB1DB1 = e.Dyy * alpha * alpha / t2s
	p.DB1DOmega1 = (e.Dyy*b1*trf*alpha + e.Dy*trf) / t2s
	p.DT2sDT2s = (tau*tau*e.Dxx + 4*tau*e.Dx + 2*e.V) / t2s3
	p.DT2sDB1 = -alpha * (tau*e.Dxy + e.Dy) / t2s2
	p.DT2sDOmega1 = -b1 * trf * (tau*e.Dxy + e.Dy) / t2s2
	p.DTRFDT2s = -(tau*e.Dxx + 2*e.Dx) / t2s3
	p.DTRFDB1 = e.Dxy * alpha / t2s2

	return p
}
