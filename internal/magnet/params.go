package magnet

import "fmt"

// Params holds the physical parameters of the two-pool system. Rates
// are in 1/s, angular frequencies in rad/s, times in s.
type Params struct {
	Omega1 float64 // RF amplitude (Rabi frequency)
	B1     float64 // RF scaling (transmit field inhomogeneity)
	Omega0 float64 // off-resonance frequency
	M0s    float64 // semi-solid pool fraction, 0..1
	R1f    float64 // free-pool longitudinal relaxation rate
	R2f    float64 // free-pool transverse relaxation rate
	Rx     float64 // exchange rate between the pools
	R1s    float64 // semi-solid longitudinal relaxation rate
	T2s    float64 // semi-solid transverse relaxation time

	// Omega1Fn, when non-nil, gives a shaped pulse amplitude ω1(t)
	// overriding Omega1. PhaseFn, when non-nil, gives the pulse phase
	// φ(t) for frequency- or phase-swept pulses; the transverse split
	// then follows φ instead of ω0·t.
	Omega1Fn func(t float64) float64
	PhaseFn  func(t float64) float64
}

// RF returns the RF amplitude at time t.
func (p *Params) RF(t float64) float64 {
	if p.Omega1Fn != nil {
		return p.Omega1Fn(t)
	}
	return p.Omega1
}

// Phase returns the accumulated RF phase at time t.
func (p *Params) Phase(t float64) float64 {
	if p.PhaseFn != nil {
		return p.PhaseFn(t)
	}
	return p.Omega0 * t
}

func (p *Params) Validate() error {
	if p.M0s < 0 || p.M0s > 1 {
		return fmt.Errorf("%w: m0s=%g outside [0,1]", ErrParameterBounds, p.M0s)
	}
	if p.R1f <= 0 || p.R2f <= 0 || p.R1s <= 0 {
		return fmt.Errorf("%w: relaxation rates must be positive", ErrParameterBounds)
	}
	if p.Rx < 0 {
		return fmt.Errorf("%w: Rx=%g negative", ErrParameterBounds, p.Rx)
	}
	if p.T2s <= 0 {
		return fmt.Errorf("%w: T2s=%g must be positive", ErrParameterBounds, p.T2s)
	}
	return nil
}

// Equilibrium returns the thermal-equilibrium longitudinal components
// (zf0, zs0).
func (p *Params) Equilibrium() (float64, float64) {
	return 1 - p.M0s, p.M0s
}
