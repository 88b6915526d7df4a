// Package lineshape implements the semi-solid pool lineshapes: their
// time-domain Green's functions G(κ) of the dimensionless lag
// κ = (t-τ)/T2s, the matching frequency-domain absorption lineshapes,
// and the pulse spectral-density factor f_PSD used by Graham's model.
package lineshape

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// Greens is a time-domain Green's function of the dimensionless lag κ.
type Greens interface {
	// At returns G(κ), non-negative.
	At(kappa float64) float64
	// DT2sAt returns T2s·∂G/∂T2s at κ, equal to -κ·G'(κ).
	DT2sAt(kappa float64) float64
	// Support returns the lag beyond which G is negligible and memory
	// integrals may be truncated. May be +Inf.
	Support() float64
}

// Shape is a lineshape with both its Green's function and the
// frequency-domain quantities needed by the Henkelman and Graham
// models.
type Shape interface {
	Greens
	// Value returns the absorption lineshape g(ω, T2s) in seconds, ω
	// in rad/s, normalized so that Rrf = π·ω1²·g reproduces the
	// continuous-wave saturation rate.
	Value(omega, t2s float64) float64
	// FPSD returns (1/τ)∫₀^τ (τ-κ)·G(κ) dκ for τ = TRF/T2s; Graham's
	// single-pulse saturation rate is f_PSD(τ)·B1²·ω1²·T2s.
	FPSD(tau float64) float64
	// CumGreens returns ∫₀^τ G(κ) dκ.
	CumGreens(tau float64) float64
}

const invSqrt3 = 0.5773502691896258

// Lorentzian lineshape: G(κ) = exp(-κ), equivalent to an exponential
// free-induction decay with rate 1/T2s.
type Lorentzian struct{}

func (Lorentzian) At(k float64) float64     { return math.Exp(-k) }
func (Lorentzian) DT2sAt(k float64) float64 { return k * math.Exp(-k) }
func (Lorentzian) Support() float64         { return 60 }

func (Lorentzian) Value(omega, t2s float64) float64 {
	x := t2s * omega
	return t2s / math.Pi / (1 + x*x)
}

func (Lorentzian) FPSD(tau float64) float64 {
	if tau < 1e-8 {
		return tau / 2
	}
	return 1 - (1-math.Exp(-tau))/tau
}

func (Lorentzian) CumGreens(tau float64) float64 { return 1 - math.Exp(-tau) }

// Gaussian lineshape: G(κ) = exp(-κ²/2).
type Gaussian struct{}

func (Gaussian) At(k float64) float64     { return math.Exp(-k * k / 2) }
func (Gaussian) DT2sAt(k float64) float64 { return k * k * math.Exp(-k*k/2) }
func (Gaussian) Support() float64         { return 12 }

func (Gaussian) Value(omega, t2s float64) float64 {
	x := t2s * omega
	return t2s / math.Sqrt(2*math.Pi) * math.Exp(-x*x/2)
}

func (Gaussian) FPSD(tau float64) float64 {
	if tau < 1e-8 {
		return tau / 2
	}
	return math.Sqrt(math.Pi/2)*math.Erf(tau/math.Sqrt2) - (1-math.Exp(-tau*tau/2))/tau
}

func (Gaussian) CumGreens(tau float64) float64 {
	return math.Sqrt(math.Pi/2) * math.Erf(tau/math.Sqrt2)
}

// SuperLorentzian lineshape. No closed form exists; the Green's
// function is G(κ) = ∫₀¹ exp(-κ²(3c²-1)²/8) dc, evaluated by
// Gauss-Legendre quadrature with panels graded toward c = 1/√3 where
// the integrand varies fastest for large κ.
type SuperLorentzian struct{}

func (SuperLorentzian) At(k float64) float64 {
	return SLAngleIntegral(k, func(ct float64) float64 {
		return math.Exp(-k * k * ct * ct / 8)
	})
}

func (SuperLorentzian) DT2sAt(k float64) float64 {
	return SLAngleIntegral(k, func(ct float64) float64 {
		a := k * k * ct * ct
		return math.Exp(-a/8) * a / 4
	})
}

// Support is unbounded: the super-Lorentzian Green's function decays
// only algebraically, so memory integrals run over the full history.
func (SuperLorentzian) Support() float64 { return math.Inf(1) }

func (SuperLorentzian) Value(omega, t2s float64) float64 {
	x := t2s * omega
	v := SLAngleIntegral(math.Abs(x)*10+1, func(ct float64) float64 {
		r := x / ct
		return math.Exp(-2*r*r) / math.Abs(ct)
	})
	return t2s * math.Sqrt(2/math.Pi) * v
}

func (SuperLorentzian) FPSD(tau float64) float64 {
	return SLAngleIntegral(tau, func(ct float64) float64 {
		e := tau * math.Abs(ct)
		if e < 1e-3 {
			return tau * (0.5 - e*e/96)
		}
		return math.Sqrt(2*math.Pi)*math.Erf(e/(2*math.Sqrt2))/math.Abs(ct) +
			4*(math.Exp(-e*e/8)-1)/(tau*ct*ct)
	})
}

func (SuperLorentzian) CumGreens(tau float64) float64 {
	return SLAngleIntegral(tau, func(ct float64) float64 {
		e := tau * math.Abs(ct)
		if e < 1e-3 {
			return tau * (1 - e*e/24)
		}
		return math.Sqrt(2*math.Pi) * math.Erf(e/(2*math.Sqrt2)) / math.Abs(ct)
	})
}

// SLAngleIntegral integrates f(3c²-1) over c ∈ [0,1], splitting the
// interval at the singular point c = 1/√3 and grading panel widths
// toward it. scale sets how sharply f varies near 3c²-1 = 0.
func SLAngleIntegral(scale float64, f func(ct float64) float64) float64 {
	g := func(c float64) float64 { return f(3*c*c - 1) }
	w := 1.0
	if scale > 1 {
		w = 1 / scale
	}
	return gradedPanels(g, 0, invSqrt3, w, false) + gradedPanels(g, invSqrt3, 1, w, true)
}

// gradedPanels integrates f over [a,b] with 16-node Gauss-Legendre
// panels whose widths grow geometrically away from the grading end
// (a when fromLeft, else b).
func gradedPanels(f func(float64) float64, a, b, w0 float64, fromLeft bool) float64 {
	if b <= a {
		return 0
	}
	if w0 >= b-a {
		return quad.Fixed(f, a, b, 16, nil, 0)
	}
	sum := 0.0
	w := w0
	if fromLeft {
		lo := a
		for lo < b {
			hi := math.Min(lo+w, b)
			sum += quad.Fixed(f, lo, hi, 16, nil, 0)
			lo = hi
			w *= 2
		}
	} else {
		hi := b
		for hi > a {
			lo := math.Max(hi-w, a)
			sum += quad.Fixed(f, lo, hi, 16, nil, 0)
			hi = lo
			w *= 2
		}
	}
	return sum
}
