package magnet

// GradKind tags which partial derivative a sensitivity block carries.
// The order of the gradient list passed to a simulation determines the
// block layout: block i+1 carries the derivative for list entry i.
type GradKind int

const (
	GradM0s GradKind = iota
	GradR1f
	GradR1s
	GradR1a // apparent R1, shared R1f = R1s
	GradR2f
	GradRx
	GradT2s
	GradOmega0
	GradB1
)

var gradNames = [...]string{"m0s", "R1f", "R1s", "R1a", "R2f", "Rx", "T2s", "omega0", "B1"}

func (k GradKind) String() string {
	if int(k) < len(gradNames) {
		return gradNames[k]
	}
	return "unknown"
}

// PulseKind distinguishes excitation from inversion pulses. During an
// inversion pulse the sensitivity corrections are applied only for the
// T2s and B1 kinds; the pulse is otherwise treated as instantaneous,
// leaving the remaining sensitivities untouched.
type PulseKind int

const (
	PulseExcitation PulseKind = iota
	PulseInversion
)

// Perturb returns a copy of p with the parameter selected by k shifted
// by eps. Used by finite-difference checks of the analytic gradients.
func (k GradKind) Perturb(p Params, eps float64) Params {
	switch k {
	case GradM0s:
		p.M0s += eps
	case GradR1f:
		p.R1f += eps
	case GradR1s:
		p.R1s += eps
	case GradR1a:
		p.R1f += eps
		p.R1s += eps
	case GradR2f:
		p.R2f += eps
	case GradRx:
		p.Rx += eps
	case GradT2s:
		p.T2s += eps
	case GradOmega0:
		p.Omega0 += eps
	case GradB1:
		p.B1 += eps
	}
	return p
}
