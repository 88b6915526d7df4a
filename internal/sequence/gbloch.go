package sequence

import (
	"math"

	"github.com/akarls/mtsim/internal/hamiltonian"
	"github.com/akarls/mtsim/internal/integrators"
	"github.com/akarls/mtsim/internal/lineshape"
	"github.com/akarls/mtsim/internal/magnet"
)

// SimulateGBloch runs the pulse train under the generalized Bloch
// model. A super-Lorentzian Green's function selects the specialized
// evaluator that carries the angular integral inside the memory kernel;
// all other lineshapes use the generic memory evaluator.
func SimulateGBloch(p magnet.Params, g lineshape.Greens, grads []magnet.GradKind, tr Train, opt Options) (*Result, error) {
	s := &gblochSaturator{p: &p, g: g, grads: grads, opt: opt}
	return run(&p, grads, &tr, opt, s)
}

type gblochSaturator struct {
	p     *magnet.Params
	g     lineshape.Greens
	grads []magnet.GradKind
	opt   Options

	f     integrators.Func
	prior *integrators.Solution
	w1    float64
}

func (s *gblochSaturator) begin(kind magnet.PulseKind, w1, trf float64) {
	pp := *s.p
	pp.Omega1 = w1
	s.w1 = w1
	if _, ok := s.g.(lineshape.SuperLorentzian); ok {
		s.f = (&hamiltonian.GBlochSuperLorentzian{P: &pp, Grads: s.grads, Pulse: kind, SaturationOnly: true}).Derive
	} else {
		s.f = (&hamiltonian.GBloch{P: &pp, G: s.g, Grads: s.grads, Pulse: kind, SaturationOnly: true}).Derive
	}
	s.prior = nil
}

func (s *gblochSaturator) advance(st magnet.State, t0, t1 float64) (magnet.State, error) {
	sol, err := integrators.SolveDDE(s.f, st, t0, t1, s.steps(t1-t0), s.prior)
	if err != nil {
		return nil, err
	}
	s.prior = sol
	return sol.Last().Clone(), nil
}

// steps keeps the step short against the Rabi rotation of the
// semi-solid state under the memory kernel.
func (s *gblochSaturator) steps(d float64) int {
	n := s.opt.satSteps()
	if osc := int(math.Ceil(3 * s.p.B1 * s.w1 * d)); osc > n {
		n = osc
	}
	return n
}
